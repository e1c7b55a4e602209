package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sebastianm/inventar/internal/artifact"
	"github.com/sebastianm/inventar/internal/config"
	"github.com/sebastianm/inventar/internal/database"
	"github.com/sebastianm/inventar/internal/image"
	"github.com/sebastianm/inventar/internal/lookup"
	"github.com/sebastianm/inventar/internal/sequence"
	"github.com/sebastianm/inventar/internal/stats"
	"github.com/sebastianm/inventar/internal/user"
)

// Opts holds optional CLI overrides for the configuration file.
type Opts struct {
	ConfigPath   string
	DatabasePath string
	ImagesDir    string
	LogLevel     string
	// LogOutput receives log lines. Defaults to os.Stderr.
	LogOutput io.Writer
}

// App is an opened inventory: the database and every feature service.
type App struct {
	Log *slog.Logger
	Cfg *config.Config
	DB  *sql.DB

	Codes     *sequence.Generator
	Lookups   *lookup.LookupService
	Images    *image.ImageService
	Artifacts *artifact.ArtifactService
	Users     *user.UserService
	Stats     *stats.StatsService
}

// Open loads the configuration, opens the database and starts the
// features. The bootstrap admin is created if it does not exist yet.
func Open(ctx context.Context, opts Opts) (*App, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	level, err := cfg.Level()
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	out := opts.LogOutput
	if out == nil {
		out = os.Stderr
	}
	log := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})).With("component", "inventar")

	db, err := database.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	log.Debug("database opened", "path", cfg.DatabasePath, "images_dir", cfg.ImagesDir)

	a := &App{Log: log, Cfg: cfg, DB: db}
	a.startFeatures()

	created, err := a.Users.EnsureBootstrapAdmin(ctx, cfg.BootstrapAdminPassword)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("bootstrapping admin: %w", err)
	}
	if created {
		log.Info("bootstrap admin created", "username", user.BootstrapAdmin)
	}
	return a, nil
}

func loadConfig(opts Opts) (*config.Config, error) {
	path := opts.ConfigPath
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if opts.DatabasePath != "" {
		cfg.DatabasePath = opts.DatabasePath
	}
	if opts.ImagesDir != "" {
		cfg.ImagesDir = opts.ImagesDir
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if err := cfg.ResolvePaths(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Close closes the database.
func (a *App) Close() error {
	return a.DB.Close()
}
