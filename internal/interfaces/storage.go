package interfaces

import (
	"context"

	"github.com/bobmcallan/giftscan/internal/models"
)

// SymbolStore supplies and maintains the canonical symbol universe.
type SymbolStore interface {
	// Upsert inserts records that are not already present, keyed by symbol.
	// Existing records are left untouched (conflict-do-nothing).
	Upsert(ctx context.Context, records []*models.SymbolRecord) error

	// List returns every symbol record, ordered by symbol.
	List(ctx context.Context) ([]*models.SymbolRecord, error)

	// ListByIndustry returns records whose industry matches exactly.
	ListByIndustry(ctx context.Context, industry string) ([]*models.SymbolRecord, error)

	// Close releases the underlying connection, if any.
	Close() error
}

// SnapshotFile overwrites the flat CSV snapshot with a full symbol set.
type SnapshotFile interface {
	Write(ctx context.Context, records []*models.SymbolRecord) error
}
