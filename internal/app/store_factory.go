package app

import (
	"fmt"
	"strings"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/gradebook/internal/store"
	"github.com/shrimpsizemoose/gradebook/internal/store/filestore"
	"github.com/shrimpsizemoose/gradebook/internal/store/memory"
	"github.com/shrimpsizemoose/gradebook/internal/store/postgres"
	"github.com/shrimpsizemoose/gradebook/internal/store/sqlite"
	"github.com/shrimpsizemoose/gradebook/internal/validation"
)

// DatabaseTypeFromDSN picks a backend by DSN scheme. Anything without a known scheme is a sqlite file.
func DatabaseTypeFromDSN(dsn string) store.DatabaseType {
	switch {
	case strings.HasPrefix(dsn, "postgres"):
		return store.DBTypePostgres
	case strings.HasPrefix(dsn, "file://"):
		return store.DBTypeFile
	case strings.HasPrefix(dsn, "memory://"):
		return store.DBTypeMemory
	default:
		return store.DBTypeSQLite
	}
}

func NewStore(dsn string, engine *validation.Engine) (*store.Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database dsn is empty")
	}

	dbType := DatabaseTypeFromDSN(dsn)
	logger.Debug.Printf("Opening %s store", dbType)

	switch dbType {
	case store.DBTypePostgres:
		return postgres.Open(dsn, engine)
	case store.DBTypeSQLite:
		return sqlite.Open(dsn, engine)
	case store.DBTypeFile:
		return filestore.Open(strings.TrimPrefix(dsn, "file://"), engine)
	case store.DBTypeMemory:
		return memory.NewStore(engine), nil
	default:
		return nil, fmt.Errorf("unable to determine database type from DSN: %s", dsn)
	}
}
