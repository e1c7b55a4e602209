package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sebastianm/inventar/internal/app"
	"github.com/sebastianm/inventar/internal/user"
	"github.com/spf13/cobra"
)

// rootOpts are the global flags shared by every subcommand.
type rootOpts struct {
	configPath string
	dbPath     string
	imagesDir  string
	logLevel   string

	// Set by the user command for privileged operations.
	as       string
	password string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	o := &rootOpts{}
	rootCmd := &cobra.Command{
		Use:           "inventar",
		Short:         "Inventory of heritage artifacts, lookups, images and users",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&o.configPath, "config", "", "Config file (default $INVENTAR_CONFIG or inventar.json)")
	pf.StringVar(&o.dbPath, "db", "", "SQLite database file")
	pf.StringVar(&o.imagesDir, "images-dir", "", "Folder that receives image copies")
	pf.StringVar(&o.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(
		artifactCmd(o),
		imageCmd(o),
		lookupCmd(o),
		userCmd(o),
		statsCmd(o),
		exportCmd(o),
		seedCmd(o),
		codeCmd(o),
	)
	return rootCmd
}

// withApp opens the inventory for the duration of fn.
func (o *rootOpts) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := app.Open(ctx, app.Opts{
		ConfigPath:   o.configPath,
		DatabasePath: o.dbPath,
		ImagesDir:    o.imagesDir,
		LogLevel:     o.logLevel,
		LogOutput:    cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

// credentials returns the --password value, falling back to
// INVENTAR_PASSWORD.
func (o *rootOpts) credentials() string {
	if o.password != "" {
		return o.password
	}
	return os.Getenv("INVENTAR_PASSWORD")
}

// session logs in as the --as user.
func (o *rootOpts) session(ctx context.Context, a *app.App) (user.Session, error) {
	if o.as == "" {
		return user.Session{}, fmt.Errorf("--as is required")
	}
	return a.Users.Login(ctx, o.as, o.credentials())
}

// printWarnings reports non-fatal problems such as images that could not
// be copied or removed.
func printWarnings(cmd *cobra.Command, warnings []error) {
	for _, w := range warnings {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
	}
}
