package app

import (
	"strings"

	"github.com/shrimpsizemoose/narvaro/internal/store"
	"github.com/shrimpsizemoose/narvaro/internal/store/postgres"
	"github.com/shrimpsizemoose/narvaro/internal/store/sqlite"
)

func NewStore(dsn, migrationsDir string) (store.RecordStore, error) {
	if strings.HasPrefix(dsn, "postgres") {
		return postgres.NewPostgresStore(dsn, migrationsDir)
	}
	return sqlite.NewSQLiteStore(dsn, migrationsDir)
}
