package store

import (
	"database/sql"

	"github.com/sebastianm/inventar/internal/user"
)

func init() {
	user.RegisterStoreFactory(func(db *sql.DB) user.Store {
		return NewSQLiteStore(db)
	})
}
