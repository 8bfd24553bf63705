package analyzer

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/bobmcallan/giftscan/internal/common"
	"github.com/bobmcallan/giftscan/internal/interfaces"
	"github.com/bobmcallan/giftscan/internal/models"
)

// Delivery modes.
const (
	DeliveryFile     = "file"
	DeliveryMessages = "messages"
)

const fileNamePrefix = "GiftFromDiscountedStocks_"

// Options configures one analyzer instance. An analyzer is constructed per
// run with the run's chat destination and filter.
type Options struct {
	ChatID         string
	OnlyDiscounted bool
	Delivery       string // DeliveryFile or DeliveryMessages
	BatchSize      int    // rows per message in messages mode
	Now            func() time.Time
}

// Analyzer orchestrates the fetch → score → classify → deliver pipeline.
// All collaborators are injected; there is no global state.
type Analyzer struct {
	fetcher  interfaces.QuoteClient
	calc     interfaces.DiscountCalculator
	eval     interfaces.DiscountEvaluator
	notifier interfaces.Notifier
	logger   *common.Logger
	opts     Options
}

// New creates an analyzer wired to the given collaborators.
func New(
	fetcher interfaces.QuoteClient,
	calc interfaces.DiscountCalculator,
	eval interfaces.DiscountEvaluator,
	notifier interfaces.Notifier,
	logger *common.Logger,
	opts Options,
) *Analyzer {
	if opts.Delivery == "" {
		opts.Delivery = DeliveryFile
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 10
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Analyzer{
		fetcher:  fetcher,
		calc:     calc,
		eval:     eval,
		notifier: notifier,
		logger:   logger,
		opts:     opts,
	}
}

// Analyze runs the pipeline over the symbol list in input order and delivers
// the report. Fetch failures drop the symbol silently; delivery failures are
// logged and swallowed.
func (a *Analyzer) Analyze(ctx context.Context, symbols []*models.SymbolRecord) error {
	rows := a.buildRows(ctx, symbols)

	if a.opts.OnlyDiscounted {
		filtered := rows[:0]
		for _, row := range rows {
			if row.Status == models.StatusDiscounted {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}

	a.logger.Info().
		Int("symbols", len(symbols)).
		Int("rows", len(rows)).
		Bool("only_discounted", a.opts.OnlyDiscounted).
		Str("delivery", a.opts.Delivery).
		Msg("Analysis complete, delivering report")

	switch a.opts.Delivery {
	case DeliveryMessages:
		a.deliverMessages(ctx, rows)
	default:
		a.deliverFile(ctx, rows)
	}

	return nil
}

// buildRows fetches and scores each symbol, preserving input order.
func (a *Analyzer) buildRows(ctx context.Context, symbols []*models.SymbolRecord) []models.ReportRow {
	rows := make([]models.ReportRow, 0, len(symbols))

	for _, rec := range symbols {
		snap, err := a.fetcher.GetSnapshot(ctx, rec.Symbol)
		if err != nil {
			// No retry and no error row — the symbol is dropped from the report.
			a.logger.Warn().Err(err).Str("symbol", rec.Symbol).Msg("Snapshot fetch failed, skipping symbol")
			continue
		}
		if snap.IsEmpty() {
			a.logger.Debug().Str("symbol", rec.Symbol).Msg("Empty snapshot, skipping symbol")
			continue
		}

		discountPct := a.calc.Discount(snap)
		status := a.eval.Status(snap, discountPct)

		rows = append(rows, models.ReportRow{
			Symbol:      rec.Symbol,
			CompanyName: rec.CompanyName,
			Price:       snap.CurrentPrice(),
			PE:          formatRatio(snap.PE),
			PB:          formatRatio(snap.PB),
			DiscountPct: fmt.Sprintf("%.2f%%", discountPct),
			Status:      status,
		})
	}

	return rows
}

// deliverMessages sends the rows as JSON text messages in order, at most
// BatchSize rows per message.
func (a *Analyzer) deliverMessages(ctx context.Context, rows []models.ReportRow) {
	limit := a.opts.BatchSize
	for i := 0; i < len(rows); i += limit {
		end := i + limit
		if end > len(rows) {
			end = len(rows)
		}

		payload, err := json.MarshalIndent(rows[i:end], "", "  ")
		if err != nil {
			a.logger.Error().Err(err).Msg("Failed to marshal report batch")
			continue
		}

		if err := a.notifier.SendMessage(ctx, a.opts.ChatID, string(payload)); err != nil {
			a.logger.Warn().Err(err).Int("batch_start", i).Msg("Report message delivery failed")
		}
	}
}

// deliverFile sends the full row list as one CSV attachment. Zero rows still
// produce a valid header-only CSV.
func (a *Analyzer) deliverFile(ctx context.Context, rows []models.ReportRow) {
	contents, err := renderCSV(rows)
	if err != nil {
		a.logger.Error().Err(err).Msg("Failed to render report CSV")
		return
	}

	filename := fileNamePrefix + a.opts.Now().UTC().Format("20060102-150405") + ".csv"

	if err := a.notifier.SendDocument(ctx, a.opts.ChatID, filename, contents); err != nil {
		a.logger.Warn().Err(err).Str("filename", filename).Msg("Report file delivery failed")
		return
	}

	a.logger.Info().Str("filename", filename).Int("rows", len(rows)).Msg("Report file delivered")
}

// renderCSV serializes rows with the fixed report header.
func renderCSV(rows []models.ReportRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(models.ReportRowHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.Symbol,
			row.CompanyName,
			strconv.FormatFloat(row.Price, 'f', -1, 64),
			row.PE,
			row.PB,
			row.DiscountPct,
			row.Status,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// formatRatio renders a valuation ratio to two decimals, or "N/A" when the
// provider omitted it.
func formatRatio(v float64) string {
	if v == 0 {
		return "N/A"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

var _ interfaces.StockAnalyzer = (*Analyzer)(nil)
