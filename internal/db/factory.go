package db

import (
	"fmt"
	"strings"
)

// DefaultHistoryPath sits next to the default baseline.
const DefaultHistoryPath = ".zap/history.db"

// StoreConfig holds configuration for the storage backend
type StoreConfig struct {
	Type             string // "sqlite"
	ConnectionString string // File path for SQLite
}

// NewStore creates a new Store instance based on the provided configuration
func NewStore(config StoreConfig) (Store, error) {
	switch strings.ToLower(config.Type) {
	case "sqlite", "sqlite3", "":
		if config.ConnectionString == "" {
			config.ConnectionString = DefaultHistoryPath
		}
		return NewSQLiteStore(config.ConnectionString)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", config.Type)
	}
}
