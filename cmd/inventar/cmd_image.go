package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/sebastianm/inventar/internal/app"
	"github.com/spf13/cobra"
)

func imageCmd(o *rootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image",
		Short: "Manage images attached to artifacts",
	}
	cmd.AddCommand(imageAttachCmd(o), imageListCmd(o), imageDeleteCmd(o))
	return cmd
}

func imageAttachCmd(o *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "attach <artifact-id> <file>...",
		Short: "Copy files into the images folder and attach them",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("artifact-id", args[0])
			if err != nil {
				return err
			}
			return o.withApp(cmd, func(ctx context.Context, a *app.App) error {
				art, err := a.Artifacts.GetArtifactForEdit(ctx, id)
				if err != nil {
					return err
				}
				attached, warnings, err := a.Images.Attach(ctx, art.ID, art.InventoryNumber, args[1:])
				printWarnings(cmd, warnings)
				if err != nil {
					return err
				}
				for _, img := range attached {
					fmt.Fprintf(cmd.OutOrStdout(), "attached image %d as %s\n", img.ID, img.Filename)
				}
				return nil
			})
		},
	}
}

func imageListCmd(o *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "list <artifact-id>",
		Short: "List the images of an artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("artifact-id", args[0])
			if err != nil {
				return err
			}
			return o.withApp(cmd, func(ctx context.Context, a *app.App) error {
				imgs, err := a.Images.List(ctx, id)
				if err != nil {
					return err
				}
				t := newTable(cmd.OutOrStdout(), "ID", "File", "Size", "Uploaded")
				for _, img := range imgs {
					size := "missing"
					if info, err := os.Stat(a.Images.Path(img)); err == nil {
						size = humanize.IBytes(uint64(info.Size()))
					}
					t.Append([]string{itoa(img.ID), img.Filename, size, img.UploadedAt.Local().Format("2006-01-02 15:04")})
				}
				t.Render()
				return nil
			})
		},
	}
}

func imageDeleteCmd(o *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <image-id>",
		Short: "Detach an image and remove its file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("image-id", args[0])
			if err != nil {
				return err
			}
			return o.withApp(cmd, func(ctx context.Context, a *app.App) error {
				warnings, err := a.Images.Delete(ctx, id)
				if err != nil {
					return err
				}
				printWarnings(cmd, warnings)
				fmt.Fprintf(cmd.OutOrStdout(), "deleted image %d\n", id)
				return nil
			})
		},
	}
}
