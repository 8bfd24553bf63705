// Package filestore implements the symbol store on a flat CSV snapshot file.
package filestore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bobmcallan/giftscan/internal/common"
	"github.com/bobmcallan/giftscan/internal/interfaces"
	"github.com/bobmcallan/giftscan/internal/models"
)

// snapshotHeader is the fixed column order of the snapshot file.
var snapshotHeader = []string{"symbol", "company_name", "industry", "isin"}

// Store implements interfaces.SymbolStore and interfaces.SnapshotFile on a
// single CSV file. There is no file locking: concurrent writers race, which
// matches the snapshot's role as a best-effort fallback source.
type Store struct {
	path   string
	logger *common.Logger
}

// NewStore creates a file-backed symbol store at the given path.
func NewStore(logger *common.Logger, path string) *Store {
	return &Store{path: path, logger: logger}
}

// Path returns the snapshot file location.
func (s *Store) Path() string {
	return s.path
}

// readAll parses the snapshot file into records, preserving file order.
func (s *Store) readAll() ([]*models.SymbolRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot file: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	// First row is the header.
	records := make([]*models.SymbolRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) < 4 {
			continue
		}
		records = append(records, &models.SymbolRecord{
			Symbol:      row[0],
			CompanyName: row[1],
			Industry:    row[2],
			ISIN:        row[3],
		})
	}
	return records, nil
}

// List returns every record in the snapshot, in file order.
func (s *Store) List(ctx context.Context) ([]*models.SymbolRecord, error) {
	return s.readAll()
}

// ListByIndustry returns records whose industry matches exactly.
func (s *Store) ListByIndustry(ctx context.Context, industry string) ([]*models.SymbolRecord, error) {
	all, err := s.readAll()
	if err != nil {
		return nil, err
	}

	var records []*models.SymbolRecord
	for _, rec := range all {
		if rec.Industry == industry {
			records = append(records, rec)
		}
	}
	return records, nil
}

// Upsert merges records into the snapshot, keeping existing rows untouched
// and appending symbols not yet present.
func (s *Store) Upsert(ctx context.Context, records []*models.SymbolRecord) error {
	existing, err := s.readAll()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	seen := make(map[string]bool, len(existing))
	for _, rec := range existing {
		seen[rec.Symbol] = true
	}

	merged := existing
	for _, rec := range records {
		if seen[rec.Symbol] {
			continue
		}
		seen[rec.Symbol] = true
		merged = append(merged, rec)
	}

	return s.Write(ctx, merged)
}

// Write overwrites the snapshot with the given record set. The write goes to
// a temp file in the same directory, then renames over the target.
func (s *Store) Write(ctx context.Context, records []*models.SymbolRecord) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	writer := csv.NewWriter(tmp)
	if err := writer.Write(snapshotHeader); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot header: %w", err)
	}
	for _, rec := range records {
		row := []string{rec.Symbol, rec.CompanyName, rec.Industry, rec.ISIN}
		if err := writer.Write(row); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to write snapshot row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp snapshot: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace snapshot file: %w", err)
	}

	s.logger.Debug().Str("path", s.path).Int("records", len(records)).Msg("Snapshot file written")
	return nil
}

// Close is a no-op for the file backend.
func (s *Store) Close() error {
	return nil
}

// Compile-time checks
var (
	_ interfaces.SymbolStore  = (*Store)(nil)
	_ interfaces.SnapshotFile = (*Store)(nil)
)
