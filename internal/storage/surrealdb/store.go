// Package surrealdb implements the symbol store on SurrealDB.
package surrealdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/bobmcallan/giftscan/internal/common"
	"github.com/bobmcallan/giftscan/internal/interfaces"
	"github.com/bobmcallan/giftscan/internal/models"
)

// Store implements interfaces.SymbolStore using the stocks table.
type Store struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewStore connects to SurrealDB and ensures the stocks table exists.
// The connection is owned by the caller's composition root and closed via
// Close — there is no process-wide singleton.
func NewStore(logger *common.Logger, config common.SurrealConfig) (*Store, error) {
	ctx := context.Background()

	db, err := surrealdb.New(config.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": config.Username,
		"pass": config.Password,
	}); err != nil {
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, config.Namespace, config.Database); err != nil {
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	// SurrealDB v3 errors on querying non-existent tables.
	if _, err := surrealdb.Query[any](ctx, db, "DEFINE TABLE IF NOT EXISTS stocks SCHEMALESS", nil); err != nil {
		return nil, fmt.Errorf("failed to define stocks table: %w", err)
	}

	logger.Info().
		Str("address", config.Address).
		Str("namespace", config.Namespace).
		Str("database", config.Database).
		Msg("SurrealDB symbol store initialized")

	return &Store{db: db, logger: logger}, nil
}

// symbolToID converts a symbol like "BAJAJ-AUTO" or "M&M" to a safe SurrealDB
// record ID.
var symbolIDReplacer = strings.NewReplacer(".", "_", "-", "_", "&", "_")

func symbolToID(symbol string) string {
	return symbolIDReplacer.Replace(symbol)
}

// Upsert inserts records keyed by symbol, skipping symbols already present.
// INSERT IGNORE gives conflict-do-nothing semantics in one statement.
func (s *Store) Upsert(ctx context.Context, records []*models.SymbolRecord) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([]map[string]any, len(records))
	for i, rec := range records {
		rows[i] = map[string]any{
			"id":           surrealmodels.NewRecordID("stocks", symbolToID(rec.Symbol)),
			"symbol":       rec.Symbol,
			"company_name": rec.CompanyName,
			"industry":     rec.Industry,
			"isin":         rec.ISIN,
		}
	}

	sql := "INSERT IGNORE INTO stocks $records"
	vars := map[string]any{"records": rows}

	if _, err := surrealdb.Query[any](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to upsert symbol records: %w", err)
	}

	s.logger.Debug().Int("records", len(records)).Msg("Symbol records upserted")
	return nil
}

// List returns every symbol record, ordered by symbol.
func (s *Store) List(ctx context.Context) ([]*models.SymbolRecord, error) {
	sql := "SELECT symbol, company_name, industry, isin FROM stocks ORDER BY symbol ASC"
	results, err := surrealdb.Query[[]models.SymbolRecord](ctx, s.db, sql, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list symbols: %w", err)
	}

	var records []*models.SymbolRecord
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			records = append(records, &(*results)[0].Result[i])
		}
	}
	return records, nil
}

// ListByIndustry returns records whose industry matches exactly.
func (s *Store) ListByIndustry(ctx context.Context, industry string) ([]*models.SymbolRecord, error) {
	sql := "SELECT symbol, company_name, industry, isin FROM stocks WHERE industry = $industry ORDER BY symbol ASC"
	vars := map[string]any{"industry": industry}

	results, err := surrealdb.Query[[]models.SymbolRecord](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list symbols by industry: %w", err)
	}

	var records []*models.SymbolRecord
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			records = append(records, &(*results)[0].Result[i])
		}
	}
	return records, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	s.db.Close(context.Background())
	return nil
}

// Compile-time check
var _ interfaces.SymbolStore = (*Store)(nil)
