package app

import (
	"github.com/sebastianm/inventar/internal/artifact"
	_ "github.com/sebastianm/inventar/internal/artifact/store" // registers store factory
	"github.com/sebastianm/inventar/internal/image"
	_ "github.com/sebastianm/inventar/internal/image/store" // registers store factory
	"github.com/sebastianm/inventar/internal/lookup"
	_ "github.com/sebastianm/inventar/internal/lookup/store" // registers store factory
	"github.com/sebastianm/inventar/internal/sequence"
	"github.com/sebastianm/inventar/internal/stats"
	_ "github.com/sebastianm/inventar/internal/stats/store" // registers store factory
	"github.com/sebastianm/inventar/internal/user"
	_ "github.com/sebastianm/inventar/internal/user/store" // registers store factory
)

func (a *App) startFeatures() {
	a.Codes = sequence.NewGenerator(a.DB, sequence.ArtifactCode)

	a.Lookups = lookup.Start(lookup.StartDeps{
		Log: a.Log.With("feature", "lookup"),
		DB:  a.DB,
	})

	// Images come before artifacts, which attach and remove files through
	// them.
	a.Images = image.Start(image.StartDeps{
		Log: a.Log.With("feature", "image"),
		DB:  a.DB,
		Dir: a.Cfg.ImagesDir,
	})

	a.Artifacts = artifact.Start(artifact.StartDeps{
		Log:    a.Log.With("feature", "artifact"),
		DB:     a.DB,
		Images: a.Images,
	})

	a.Users = user.Start(user.StartDeps{
		Log:      a.Log.With("feature", "user"),
		DB:       a.DB,
		HashCost: a.Cfg.PasswordHashCost,
	})

	a.Stats = stats.Start(stats.StartDeps{
		Log:                 a.Log.With("feature", "stats"),
		DB:                  a.DB,
		MaintenanceKeywords: a.Cfg.MaintenanceKeywords,
	})
}
