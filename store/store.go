// Package store provides the sentence stores: an in-memory map with an
// optional gob snapshot, and a SQLite database.
package store

import (
	"fmt"
	"path/filepath"

	"github.com/gcbaptista/go-natex/config"
	"github.com/gcbaptista/go-natex/services"
)

// Open returns the store selected by backend, keeping its files in dataDir.
func Open(backend, dataDir string) (services.SentenceStore, error) {
	switch backend {
	case config.StoreMemory, "":
		if dataDir == "" {
			return NewMemoryStore(), nil
		}
		return OpenMemoryStore(filepath.Join(dataDir, "sentences.gob"))
	case config.StoreSQLite:
		return OpenSQLiteStore(filepath.Join(dataDir, "sentences.db"))
	}
	return nil, fmt.Errorf("unknown store backend '%s'", backend)
}
