package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sebastianm/inventar/internal/app"
	"github.com/sebastianm/inventar/internal/artifact"
	"github.com/sebastianm/inventar/internal/export"
	"github.com/spf13/cobra"
)

func exportCmd(o *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.xlsx>",
		Short: "Write every artifact to a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withApp(cmd, func(ctx context.Context, a *app.App) error {
				views, err := a.Artifacts.ListArtifactViews(ctx)
				if err != nil {
					return err
				}
				if err := writeExport(args[0], views); err != nil {
					return err
				}
				a.Log.Info("export written", "path", args[0], "artifacts", len(views))
				fmt.Fprintf(cmd.OutOrStdout(), "exported %d artifacts to %s\n", len(views), args[0])
				return nil
			})
		},
	}
}

func writeExport(path string, views []artifact.View) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()
	return export.WriteArtifacts(f, views)
}
