package interfaces

import (
	"context"

	"github.com/bobmcallan/giftscan/internal/models"
)

// DiscountCalculator maps a snapshot to a percent-off-52-week-high value.
type DiscountCalculator interface {
	Discount(snap *models.Snapshot) float64
}

// DiscountEvaluator maps a snapshot and discount percent to a status.
type DiscountEvaluator interface {
	Status(snap *models.Snapshot, discountPct float64) string
}

// StockAnalyzer runs the fetch → score → classify → deliver pipeline over a
// symbol list and hands the result to a Notifier.
type StockAnalyzer interface {
	Analyze(ctx context.Context, symbols []*models.SymbolRecord) error
}

// RunScheduler accepts report runs for fire-and-forget background execution.
// Schedule returns as soon as the run is enqueued; completion is never
// reported back.
type RunScheduler interface {
	Schedule(run *models.Run) error
}
