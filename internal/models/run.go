package models

import "time"

// Run scopes.
const (
	RunScopeAll      = "all"
	RunScopeIndustry = "industry"
)

// Run describes one scheduled report run. Runs live only in memory: once
// enqueued they cannot be cancelled and their completion is not observable by
// the caller.
type Run struct {
	ID             string    `json:"id"`
	Scope          string    `json:"scope"`
	Industry       string    `json:"industry,omitempty"`
	ChatID         string    `json:"chat_id"`
	OnlyDiscounted bool      `json:"only_discounted"`
	CreatedAt      time.Time `json:"created_at"`

	// Symbols is the candidate list resolved at trigger time, so that a
	// failing symbol store surfaces on the triggering request rather than
	// inside an unobservable background run.
	Symbols []*SymbolRecord `json:"-"`
}
