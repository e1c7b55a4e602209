package image

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

// StartDeps holds the dependencies needed by the image feature.
type StartDeps struct {
	Log *slog.Logger
	DB  *sql.DB
	// Dir is the folder image files are copied into.
	Dir string
}

// Start builds the ImageService over the registered store.
func Start(d StartDeps) *ImageService {
	return NewImageService(storeFactory(d.DB), d.Dir, d.Log)
}
