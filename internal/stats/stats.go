package stats

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

// StartDeps holds the dependencies needed by the stats feature.
type StartDeps struct {
	Log *slog.Logger
	DB  *sql.DB
	// MaintenanceKeywords overrides DefaultMaintenanceKeywords when set.
	MaintenanceKeywords []string
}

// Start builds the StatsService over the registered store.
func Start(d StartDeps) *StatsService {
	return NewStatsService(storeFactory(d.DB), d.MaintenanceKeywords, d.Log)
}
