package store

import (
	"database/sql"

	"github.com/sebastianm/inventar/internal/stats"
)

func init() {
	stats.RegisterStoreFactory(func(db *sql.DB) stats.Store {
		return NewSQLiteStore(db)
	})
}
