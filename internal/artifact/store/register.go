package store

import (
	"database/sql"

	"github.com/sebastianm/inventar/internal/artifact"
)

func init() {
	artifact.RegisterStoreFactory(func(db *sql.DB) artifact.Store {
		return NewSQLiteStore(db)
	})
}
