package main

import (
	"context"
	"fmt"

	"github.com/sebastianm/inventar/internal/app"
	"github.com/sebastianm/inventar/internal/lookup"
	"github.com/spf13/cobra"
)

const tableHelp = "Tables: artifact_types (type), materials (material), historical_periods (period), " +
	"preservation_states (state), restoration_methods (method), storage_locations (location)."

func lookupCmd(o *rootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Manage lookup tables referenced by artifacts",
		Long:  tableHelp,
	}
	cmd.AddCommand(lookupListCmd(o), lookupAddCmd(o), lookupRenameCmd(o), lookupDeleteCmd(o))
	return cmd
}

func lookupListCmd(o *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "list <table>",
		Short: "List the entries of a lookup table",
		Long:  tableHelp,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := lookup.ParseTable(args[0])
			if err != nil {
				return err
			}
			return o.withApp(cmd, func(ctx context.Context, a *app.App) error {
				items, err := a.Lookups.List(ctx, t)
				if err != nil {
					return err
				}
				tw := newTable(cmd.OutOrStdout(), "ID", "Name")
				for _, it := range items {
					tw.Append([]string{itoa(it.ID), it.Name})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func lookupAddCmd(o *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "add <table> <name>",
		Short: "Add an entry to a lookup table",
		Long:  tableHelp,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := lookup.ParseTable(args[0])
			if err != nil {
				return err
			}
			return o.withApp(cmd, func(ctx context.Context, a *app.App) error {
				it, err := a.Lookups.Add(ctx, t, args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %s %d %q\n", t, it.ID, it.Name)
				return nil
			})
		},
	}
}

func lookupRenameCmd(o *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <table> <id> <name>",
		Short: "Rename a lookup entry",
		Long:  tableHelp,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := lookup.ParseTable(args[0])
			if err != nil {
				return err
			}
			id, err := parseID("id", args[1])
			if err != nil {
				return err
			}
			return o.withApp(cmd, func(ctx context.Context, a *app.App) error {
				it, err := a.Lookups.Rename(ctx, t, id, args[2])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "renamed %s %d to %q\n", t, it.ID, it.Name)
				return nil
			})
		},
	}
}

func lookupDeleteCmd(o *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <table> <id>",
		Short: "Delete a lookup entry that no artifact references",
		Long:  tableHelp,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := lookup.ParseTable(args[0])
			if err != nil {
				return err
			}
			id, err := parseID("id", args[1])
			if err != nil {
				return err
			}
			return o.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Lookups.Delete(ctx, t, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s %d\n", t, id)
				return nil
			})
		},
	}
}
