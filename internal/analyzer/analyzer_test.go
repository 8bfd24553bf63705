package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/giftscan/internal/common"
	"github.com/bobmcallan/giftscan/internal/models"
)

// mockQuoteClient serves canned snapshots keyed by symbol.
type mockQuoteClient struct {
	snapshots map[string]*models.Snapshot
	errs      map[string]error
	calls     []string
}

func (m *mockQuoteClient) GetSnapshot(_ context.Context, symbol string) (*models.Snapshot, error) {
	m.calls = append(m.calls, symbol)
	if err, ok := m.errs[symbol]; ok {
		return nil, err
	}
	if snap, ok := m.snapshots[symbol]; ok {
		return snap, nil
	}
	return &models.Snapshot{Symbol: symbol}, nil
}

// mockNotifier records every message and document sent.
type mockNotifier struct {
	messages  []string
	chatIDs   []string
	documents map[string][]byte
	sendErr   error
}

func (m *mockNotifier) SendMessage(_ context.Context, chatID, text string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.chatIDs = append(m.chatIDs, chatID)
	m.messages = append(m.messages, text)
	return nil
}

func (m *mockNotifier) SendDocument(_ context.Context, chatID, filename string, contents []byte) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.chatIDs = append(m.chatIDs, chatID)
	if m.documents == nil {
		m.documents = make(map[string][]byte)
	}
	m.documents[filename] = contents
	return nil
}

func symbolList(symbols ...string) []*models.SymbolRecord {
	records := make([]*models.SymbolRecord, 0, len(symbols))
	for _, s := range symbols {
		records = append(records, &models.SymbolRecord{Symbol: s, CompanyName: s + " Ltd"})
	}
	return records
}

func newTestAnalyzer(fetcher *mockQuoteClient, notifier *mockNotifier, opts Options) *Analyzer {
	return New(fetcher, NewStandardCalculator(), NewFundamentalMarketEvaluator(), notifier, common.NewSilentLogger(), opts)
}

func TestAnalyze_SkipsFailedAndEmptyFetches(t *testing.T) {
	fetcher := &mockQuoteClient{
		snapshots: map[string]*models.Snapshot{
			"AAA": {}, // empty snapshot, dropped
			"BBB": {Price: 90, High52W: 100, PE: 15, PB: 1.5},
		},
		errs: map[string]error{"CCC": errors.New("timeout")},
	}
	notifier := &mockNotifier{}
	a := newTestAnalyzer(fetcher, notifier, Options{ChatID: "42", Delivery: DeliveryMessages})

	err := a.Analyze(context.Background(), symbolList("AAA", "BBB", "CCC"))
	require.NoError(t, err)

	require.Len(t, notifier.messages, 1)

	var rows []models.ReportRow
	require.NoError(t, json.Unmarshal([]byte(notifier.messages[0]), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "BBB", rows[0].Symbol)
	assert.Equal(t, "BBB Ltd", rows[0].CompanyName)
	assert.Equal(t, "10.00%", rows[0].DiscountPct)
	assert.Equal(t, models.StatusDiscounted, rows[0].Status)
	assert.Equal(t, "15.00", rows[0].PE)
	assert.Equal(t, "1.50", rows[0].PB)
}

func TestAnalyze_MissingRatiosRenderNA(t *testing.T) {
	fetcher := &mockQuoteClient{
		snapshots: map[string]*models.Snapshot{
			"AAA": {Price: 100, High52W: 100},
		},
	}
	notifier := &mockNotifier{}
	a := newTestAnalyzer(fetcher, notifier, Options{ChatID: "42", Delivery: DeliveryMessages, OnlyDiscounted: false})

	require.NoError(t, a.Analyze(context.Background(), symbolList("AAA")))
	require.Len(t, notifier.messages, 1)

	var rows []models.ReportRow
	require.NoError(t, json.Unmarshal([]byte(notifier.messages[0]), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "N/A", rows[0].PE)
	assert.Equal(t, "N/A", rows[0].PB)
	assert.Equal(t, "0.00%", rows[0].DiscountPct)
	assert.Equal(t, models.StatusFairOrHigh, rows[0].Status)
}

func TestAnalyze_OnlyDiscountedFilter(t *testing.T) {
	fetcher := &mockQuoteClient{
		snapshots: map[string]*models.Snapshot{
			"CHEAP": {Price: 50, High52W: 100},
			"DEAR":  {Price: 100, High52W: 100, PE: 40, PB: 8},
		},
	}
	notifier := &mockNotifier{}
	a := newTestAnalyzer(fetcher, notifier, Options{ChatID: "42", Delivery: DeliveryMessages, OnlyDiscounted: true})

	require.NoError(t, a.Analyze(context.Background(), symbolList("CHEAP", "DEAR")))
	require.Len(t, notifier.messages, 1)

	var rows []models.ReportRow
	require.NoError(t, json.Unmarshal([]byte(notifier.messages[0]), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "CHEAP", rows[0].Symbol)
}

func TestAnalyze_MessageBatching(t *testing.T) {
	fetcher := &mockQuoteClient{snapshots: map[string]*models.Snapshot{}}
	symbols := make([]string, 0, 23)
	for i := 0; i < 23; i++ {
		sym := fmt.Sprintf("S%02d", i)
		symbols = append(symbols, sym)
		fetcher.snapshots[sym] = &models.Snapshot{Price: 100, High52W: 100}
	}

	notifier := &mockNotifier{}
	a := newTestAnalyzer(fetcher, notifier, Options{ChatID: "42", Delivery: DeliveryMessages, BatchSize: 10})

	require.NoError(t, a.Analyze(context.Background(), symbolList(symbols...)))
	require.Len(t, notifier.messages, 3)

	sizes := []int{}
	all := []string{}
	for _, msg := range notifier.messages {
		var rows []models.ReportRow
		require.NoError(t, json.Unmarshal([]byte(msg), &rows))
		sizes = append(sizes, len(rows))
		for _, row := range rows {
			all = append(all, row.Symbol)
		}
	}
	assert.Equal(t, []int{10, 10, 3}, sizes)
	assert.Equal(t, symbols, all, "rows must stay in input order across batches")
}

func TestAnalyze_FileDelivery(t *testing.T) {
	fetcher := &mockQuoteClient{
		snapshots: map[string]*models.Snapshot{
			"AAA": {Price: 75.5, High52W: 100, PE: 12, PB: 1.2},
		},
	}
	notifier := &mockNotifier{}
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	a := newTestAnalyzer(fetcher, notifier, Options{
		ChatID:   "42",
		Delivery: DeliveryFile,
		Now:      func() time.Time { return now },
	})

	require.NoError(t, a.Analyze(context.Background(), symbolList("AAA")))
	require.Len(t, notifier.documents, 1)

	contents, ok := notifier.documents["GiftFromDiscountedStocks_20260314-092653.csv"]
	require.True(t, ok, "filename must embed the UTC timestamp")

	lines := strings.Split(strings.TrimSpace(string(contents)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "symbol,company_name,price,pe,pb,discount_pct,status", lines[0])
	assert.Equal(t, "AAA,AAA Ltd,75.5,12.00,1.20,24.50%,DISCOUNTED", lines[1])
}

func TestAnalyze_FileDeliveryZeroRows(t *testing.T) {
	fetcher := &mockQuoteClient{
		errs: map[string]error{"AAA": errors.New("down")},
	}
	notifier := &mockNotifier{}
	a := newTestAnalyzer(fetcher, notifier, Options{ChatID: "42", Delivery: DeliveryFile})

	require.NoError(t, a.Analyze(context.Background(), symbolList("AAA")))
	require.Len(t, notifier.documents, 1)

	for _, contents := range notifier.documents {
		assert.Equal(t, "symbol,company_name,price,pe,pb,discount_pct,status\n", string(contents))
	}
}

func TestAnalyze_DeliveryFailureSwallowed(t *testing.T) {
	fetcher := &mockQuoteClient{
		snapshots: map[string]*models.Snapshot{"AAA": {Price: 10, High52W: 20}},
	}
	notifier := &mockNotifier{sendErr: errors.New("telegram down")}
	a := newTestAnalyzer(fetcher, notifier, Options{ChatID: "42", Delivery: DeliveryFile})

	assert.NoError(t, a.Analyze(context.Background(), symbolList("AAA")))
}

func TestAnalyze_FetchOrderMatchesInput(t *testing.T) {
	fetcher := &mockQuoteClient{snapshots: map[string]*models.Snapshot{}}
	notifier := &mockNotifier{}
	a := newTestAnalyzer(fetcher, notifier, Options{ChatID: "42", Delivery: DeliveryMessages})

	require.NoError(t, a.Analyze(context.Background(), symbolList("Z", "A", "M")))
	assert.Equal(t, []string{"Z", "A", "M"}, fetcher.calls)
}

func TestFormatRatio(t *testing.T) {
	assert.Equal(t, "N/A", formatRatio(0))
	assert.Equal(t, "12.35", formatRatio(12.345))
	assert.Equal(t, "1.50", formatRatio(1.5))
}
