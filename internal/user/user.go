package user

import (
	"database/sql"
	"log/slog"
)

// storeFactory is registered by the store subpackage via RegisterStoreFactory.
var storeFactory func(db *sql.DB) Store

// RegisterStoreFactory is called by the store subpackage to provide a Store
// constructor, avoiding an import cycle.
func RegisterStoreFactory(f func(db *sql.DB) Store) {
	storeFactory = f
}

// StartDeps holds the dependencies needed by the user feature.
type StartDeps struct {
	Log *slog.Logger
	DB  *sql.DB
	// HashCost is the bcrypt cost for new password hashes. Zero selects
	// bcrypt.DefaultCost.
	HashCost int
}

// Start builds the UserService over the registered store.
func Start(d StartDeps) *UserService {
	return NewUserService(storeFactory(d.DB), d.HashCost, d.Log)
}
