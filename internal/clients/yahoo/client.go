// Package yahoo provides a client for the Yahoo Finance quoteSummary API
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/giftscan/internal/common"
	"github.com/bobmcallan/giftscan/internal/interfaces"
	"github.com/bobmcallan/giftscan/internal/models"
)

const (
	DefaultBaseURL      = "https://query1.finance.yahoo.com"
	DefaultMarketSuffix = ".NS"
	DefaultTimeout      = 30 * time.Second
	DefaultRateLimit    = 5 // requests per second
)

// quoteModules are the quoteSummary modules carrying the fields the
// discount pipeline reads.
const quoteModules = "price,summaryDetail,financialData,defaultKeyStatistics"

// Client implements the QuoteClient interface
type Client struct {
	baseURL      string
	marketSuffix string
	httpClient   *http.Client
	logger       *common.Logger
	limiter      *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithMarketSuffix sets the exchange suffix appended to every symbol
func WithMarketSuffix(suffix string) ClientOption {
	return func(c *Client) {
		c.marketSuffix = suffix
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Yahoo Finance client.
// No API key is required — this is a public endpoint.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:      DefaultBaseURL,
		marketSuffix: DefaultMarketSuffix,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Yahoo API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// rawValue unwraps Yahoo's {"raw": 12.34, "fmt": "12.34"} field encoding.
// Empty objects and missing fields decode to zero.
type rawValue struct {
	Raw float64 `json:"raw"`
}

// quoteSummaryResponse is the subset of the quoteSummary payload we read.
type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			Price struct {
				RegularMarketPrice rawValue `json:"regularMarketPrice"`
			} `json:"price"`
			SummaryDetail struct {
				FiftyTwoWeekHigh rawValue `json:"fiftyTwoWeekHigh"`
				TrailingPE       rawValue `json:"trailingPE"`
			} `json:"summaryDetail"`
			FinancialData struct {
				CurrentPrice rawValue `json:"currentPrice"`
			} `json:"financialData"`
			DefaultKeyStatistics struct {
				PriceToBook rawValue `json:"priceToBook"`
			} `json:"defaultKeyStatistics"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// GetSnapshot retrieves a fundamentals snapshot for a bare ticker symbol.
// The configured market suffix is appended before calling out (e.g. "INFY"
// becomes "INFY.NS").
func (c *Client) GetSnapshot(ctx context.Context, symbol string) (*models.Snapshot, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	ticker := symbol + c.marketSuffix

	params := url.Values{}
	params.Set("modules", quoteModules)

	path := fmt.Sprintf("/v10/finance/quoteSummary/%s", url.PathEscape(ticker))
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("ticker", ticker).Msg("Yahoo quoteSummary request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.logger.Warn().Err(err).Str("ticker", ticker).Dur("elapsed", elapsed).Msg("Yahoo quoteSummary request failed")
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Warn().Str("ticker", ticker).Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("Yahoo quoteSummary non-OK response")
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	var apiResp quoteSummaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if apiResp.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("Yahoo quoteSummary error for %s: %s", ticker, apiResp.QuoteSummary.Error.Description)
	}
	if len(apiResp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("Yahoo quoteSummary returned no result for %s", ticker)
	}

	r := apiResp.QuoteSummary.Result[0]

	c.logger.Info().
		Str("ticker", ticker).
		Float64("price", r.FinancialData.CurrentPrice.Raw).
		Dur("elapsed", elapsed).
		Msg("Yahoo quoteSummary call")

	return &models.Snapshot{
		Symbol:             symbol,
		Price:              r.FinancialData.CurrentPrice.Raw,
		RegularMarketPrice: r.Price.RegularMarketPrice.Raw,
		High52W:            r.SummaryDetail.FiftyTwoWeekHigh.Raw,
		PE:                 r.SummaryDetail.TrailingPE.Raw,
		PB:                 r.DefaultKeyStatistics.PriceToBook.Raw,
		FetchedAt:          time.Now(),
	}, nil
}

// Ensure Client implements QuoteClient
var _ interfaces.QuoteClient = (*Client)(nil)
