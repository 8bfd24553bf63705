// Package storage selects the symbol store backend from configuration.
package storage

import (
	"fmt"

	"github.com/bobmcallan/giftscan/internal/common"
	"github.com/bobmcallan/giftscan/internal/interfaces"
	"github.com/bobmcallan/giftscan/internal/storage/filestore"
	"github.com/bobmcallan/giftscan/internal/storage/surrealdb"
)

// NewSymbolStore constructs the configured symbol store backend.
func NewSymbolStore(logger *common.Logger, config *common.Config) (interfaces.SymbolStore, error) {
	switch config.Storage.Backend {
	case "surrealdb":
		return surrealdb.NewStore(logger, config.Storage.Surreal)
	case "file":
		return filestore.NewStore(logger, config.Storage.Snapshot.Path), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", config.Storage.Backend)
	}
}
