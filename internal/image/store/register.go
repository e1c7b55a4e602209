package store

import (
	"database/sql"

	"github.com/sebastianm/inventar/internal/image"
)

func init() {
	image.RegisterStoreFactory(func(db *sql.DB) image.Store {
		return NewSQLiteStore(db)
	})
}
