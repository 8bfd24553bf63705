// Package models defines data structures for GiftScan
package models

import (
	"time"
)

// SymbolRecord is the canonical reference row for one tradable instrument.
// Identity key is Symbol. Records are upserted by the ingestion job and are
// read-only to the report pipeline.
type SymbolRecord struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"company_name"`
	Industry    string `json:"industry"`
	ISIN        string `json:"isin"`
}

// Snapshot holds point-in-time fundamentals for one symbol. Zero means the
// provider did not return the field; the pipeline treats zero and absent the
// same way.
type Snapshot struct {
	Symbol             string    `json:"symbol"`
	Price              float64   `json:"price"`                // current/last price
	RegularMarketPrice float64   `json:"regular_market_price"` // fallback when Price is absent
	High52W            float64   `json:"high_52w"`             // 52-week high
	PE                 float64   `json:"pe"`                   // trailing P/E
	PB                 float64   `json:"pb"`                   // price-to-book
	FetchedAt          time.Time `json:"fetched_at"`
}

// CurrentPrice returns the current price, falling back to the regular market
// price when the provider omitted it.
func (s *Snapshot) CurrentPrice() float64 {
	if s.Price != 0 {
		return s.Price
	}
	return s.RegularMarketPrice
}

// IsEmpty reports whether the snapshot carries no usable data (failed fetch
// or a symbol the provider knows nothing about).
func (s *Snapshot) IsEmpty() bool {
	if s == nil {
		return true
	}
	return s.Price == 0 && s.RegularMarketPrice == 0 && s.High52W == 0 && s.PE == 0 && s.PB == 0
}

// Report row status values.
const (
	StatusDiscounted = "DISCOUNTED"
	StatusFairOrHigh = "FAIR/HIGH"
)

// ReportRow is one formatted output line combining a SymbolRecord and the
// computed score/status. PE and PB hold the value rounded to two decimals or
// "N/A"; DiscountPct is formatted with two decimals and a trailing "%".
// The JSON keys match the report layout the Telegram consumers already parse.
type ReportRow struct {
	Symbol      string  `json:"Symbol"`
	CompanyName string  `json:"CompanyName"`
	Price       float64 `json:"Price"`
	PE          string  `json:"PE"`
	PB          string  `json:"PB"`
	DiscountPct string  `json:"Discount % (52w High)"`
	Status      string  `json:"Status"`
}

// ReportRowHeader is the CSV column order for file-mode delivery.
var ReportRowHeader = []string{"symbol", "company_name", "price", "pe", "pb", "discount_pct", "status"}
