// Package analyzer implements the discount report pipeline:
// fetch → score → classify → format → deliver.
package analyzer

import (
	"github.com/bobmcallan/giftscan/internal/interfaces"
	"github.com/bobmcallan/giftscan/internal/models"
)

// StandardCalculator scores a snapshot by its distance from the 52-week high.
type StandardCalculator struct{}

// NewStandardCalculator creates the default discount calculator.
func NewStandardCalculator() *StandardCalculator {
	return &StandardCalculator{}
}

// Discount returns (high52 - price) / high52 * 100, using the regular market
// price when the current price is absent. Returns 0 when either value is
// missing. No clamping or rounding — presentation rounds.
func (c *StandardCalculator) Discount(snap *models.Snapshot) float64 {
	price := snap.CurrentPrice()
	high := snap.High52W
	if price == 0 || high == 0 {
		return 0
	}
	return (high - price) / high * 100
}

var _ interfaces.DiscountCalculator = (*StandardCalculator)(nil)
