package store

import (
	"database/sql"

	"github.com/sebastianm/inventar/internal/lookup"
)

func init() {
	lookup.RegisterStoreFactory(func(db *sql.DB) lookup.Store {
		return NewSQLiteStore(db)
	})
}
