package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/crypto/bcrypt"
)

// EnvPath names the environment variable holding the config file path.
const EnvPath = "INVENTAR_CONFIG"

// DefaultPath is used when EnvPath is unset.
const DefaultPath = "inventar.json"

// DefaultBootstrapAdminPassword is the initial password of the admin
// account created on first start.
const DefaultBootstrapAdminPassword = "admin05"

// ImagesDirName is the folder next to the database that holds image files
// when ImagesDir is not set.
const ImagesDirName = "artifact_images"

// Config is the configuration of the inventory.
type Config struct {
	// DatabasePath is the SQLite file. Defaults to ~/.inventar/heritage.db.
	DatabasePath string `json:"databasePath"`

	// ImagesDir receives copies of attached images. Defaults to
	// artifact_images next to the database.
	ImagesDir string `json:"imagesDir"`

	// BootstrapAdminPassword is used to create the admin account when it
	// does not exist yet.
	BootstrapAdminPassword string `json:"bootstrapAdminPassword"`

	// PasswordHashCost is the bcrypt cost. Zero selects bcrypt's default.
	PasswordHashCost int `json:"passwordHashCost"`

	// MaintenanceKeywords mark preservation states that need attention on
	// the dashboard.
	MaintenanceKeywords []string `json:"maintenanceKeywords"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"logLevel"`
}

// Path returns the config file location from INVENTAR_CONFIG, defaulting
// to "inventar.json".
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

// Parse reads the config file named by Path.
func Parse() (*Config, error) {
	return Load(Path())
}

// Load reads a JSON config file and returns the parsed Config. A missing
// file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{
		BootstrapAdminPassword: DefaultBootstrapAdminPassword,
		LogLevel:               "info",
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.PasswordHashCost != 0 && (c.PasswordHashCost < bcrypt.MinCost || c.PasswordHashCost > bcrypt.MaxCost) {
		return fmt.Errorf("passwordHashCost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel. An empty level means info.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("logLevel: %w", err)
	}
	return l, nil
}

// ResolvePaths fills in DatabasePath and ImagesDir when they are empty.
func (c *Config) ResolvePaths() error {
	if c.DatabasePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("determining home directory: %w", err)
		}
		c.DatabasePath = filepath.Join(home, ".inventar", "heritage.db")
	}
	if c.ImagesDir == "" {
		c.ImagesDir = filepath.Join(filepath.Dir(c.DatabasePath), ImagesDirName)
	}
	return nil
}
