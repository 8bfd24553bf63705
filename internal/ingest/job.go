package ingest

import (
	"context"
	"fmt"

	"github.com/bobmcallan/giftscan/internal/common"
	"github.com/bobmcallan/giftscan/internal/interfaces"
	"github.com/bobmcallan/giftscan/internal/models"
)

// Dedupe removes rows that are equal on every field. Which duplicate survives
// is unspecified; the result keeps first-seen order.
func Dedupe(records []*models.SymbolRecord) []*models.SymbolRecord {
	seen := make(map[models.SymbolRecord]bool, len(records))
	result := make([]*models.SymbolRecord, 0, len(records))
	for _, rec := range records {
		if seen[*rec] {
			continue
		}
		seen[*rec] = true
		result = append(result, rec)
	}
	return result
}

// Job wires the ingestion pipeline: source → dedupe → store + snapshot.
type Job struct {
	source   *CSVSource
	store    interfaces.SymbolStore
	snapshot interfaces.SnapshotFile
	logger   *common.Logger
}

// NewJob creates the ingestion job. The store may double as the snapshot when
// it implements both; a nil snapshot skips the overwrite step entirely.
func NewJob(source *CSVSource, store interfaces.SymbolStore, snapshot interfaces.SnapshotFile, logger *common.Logger) *Job {
	return &Job{
		source:   source,
		store:    store,
		snapshot: snapshot,
		logger:   logger,
	}
}

// Run executes one ingestion pass: load all exports, deduplicate, upsert into
// the store (insert-if-absent by symbol), then overwrite the snapshot file
// with the deduplicated set.
func (j *Job) Run(ctx context.Context) error {
	raw, err := j.source.Load()
	if err != nil {
		return fmt.Errorf("load exports: %w", err)
	}

	deduped := Dedupe(raw)
	j.logger.Info().
		Int("raw", len(raw)).
		Int("deduped", len(deduped)).
		Msg("Symbol exports deduplicated")

	if err := j.store.Upsert(ctx, deduped); err != nil {
		return fmt.Errorf("upsert symbols: %w", err)
	}

	if j.snapshot != nil {
		if err := j.snapshot.Write(ctx, deduped); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
	}

	j.logger.Info().Int("records", len(deduped)).Msg("Symbol ingestion complete")
	return nil
}
