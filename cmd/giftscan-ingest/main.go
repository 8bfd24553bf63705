// giftscan-ingest is a one-shot job that loads broker CSV exports into the
// symbol store and rewrites the flat snapshot file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/bobmcallan/giftscan/internal/common"
	"github.com/bobmcallan/giftscan/internal/ingest"
	"github.com/bobmcallan/giftscan/internal/interfaces"
	"github.com/bobmcallan/giftscan/internal/storage"
	"github.com/bobmcallan/giftscan/internal/storage/filestore"
)

func main() {
	configPath := flag.String("config", "", "path to giftscan.toml (defaults to GIFTSCAN_CONFIG)")
	exportsDir := flag.String("exports", "", "directory of CSV exports (overrides ingest.exports_dir)")
	flag.Parse()

	path := *configPath
	if path == "" {
		path = os.Getenv("GIFTSCAN_CONFIG")
	}

	config, err := common.LoadConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := common.NewLogger(config.Logging.Level)

	dir := *exportsDir
	if dir == "" {
		dir = config.Ingest.ExportsDir
	}
	if dir == "" {
		logger.Fatal().Msg("No exports directory configured (set ingest.exports_dir or pass -exports)")
	}

	store, err := storage.NewSymbolStore(logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize symbol store")
	}
	defer store.Close()

	// The snapshot file is always overwritten with the deduplicated set. With
	// the file backend the store is the snapshot; other backends get a
	// dedicated writer.
	snapshot, ok := store.(interfaces.SnapshotFile)
	if !ok {
		snapshot = filestore.NewStore(logger, config.Storage.Snapshot.Path)
	}

	source := ingest.NewCSVSource(logger, dir)
	job := ingest.NewJob(source, store, snapshot, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := job.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Ingestion failed")
	}

	logger.Info().Msg("Ingestion complete")
}
