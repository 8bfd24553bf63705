package analyzer

import (
	"github.com/bobmcallan/giftscan/internal/interfaces"
	"github.com/bobmcallan/giftscan/internal/models"
)

// FundamentalMarketEvaluator classifies a stock as discounted when its
// valuation ratios are cheap or its price sits well below the 52-week high.
type FundamentalMarketEvaluator struct{}

// NewFundamentalMarketEvaluator creates the default evaluator.
func NewFundamentalMarketEvaluator() *FundamentalMarketEvaluator {
	return &FundamentalMarketEvaluator{}
}

// Status returns DISCOUNTED when (trailing P/E < 20 AND price-to-book < 2) OR
// discountPct > 20, otherwise FAIR/HIGH. A missing P/E or P/B makes the
// fundamental clause false rather than unknown.
func (e *FundamentalMarketEvaluator) Status(snap *models.Snapshot, discountPct float64) string {
	fundamentalDiscount := snap.PE != 0 && snap.PE < 20 && snap.PB != 0 && snap.PB < 2
	marketDiscount := discountPct > 20

	if fundamentalDiscount || marketDiscount {
		return models.StatusDiscounted
	}
	return models.StatusFairOrHigh
}

var _ interfaces.DiscountEvaluator = (*FundamentalMarketEvaluator)(nil)
