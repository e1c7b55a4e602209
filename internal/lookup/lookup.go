package lookup

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

// StartDeps holds the dependencies needed by the lookup feature.
type StartDeps struct {
	Log *slog.Logger
	DB  *sql.DB
}

// Start builds the LookupService over the registered store.
func Start(d StartDeps) *LookupService {
	return NewLookupService(storeFactory(d.DB), d.Log)
}
