package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/sebastianm/inventar/internal/app"
	"github.com/sebastianm/inventar/internal/stats"
	"github.com/spf13/cobra"
)

func statsCmd(o *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the collection dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withApp(cmd, func(ctx context.Context, a *app.App) error {
				d, err := a.Stats.Dashboard(ctx)
				if err != nil {
					return err
				}
				printDashboard(cmd, d)
				return nil
			})
		},
	}
}

func printDashboard(cmd *cobra.Command, d stats.Dashboard) {
	out := cmd.OutOrStdout()
	count := func(n int) string { return humanize.Comma(int64(n)) }

	t := newTable(out, "Total", "Count")
	t.AppendBulk([][]string{
		{"Artifacts", count(d.Artifacts)},
		{"Images", count(d.Images)},
		{"Users", count(d.Users)},
		{"Storage locations", count(d.StorageLocations)},
		{"Periods", count(d.Periods)},
		{"Materials", count(d.Materials)},
		{"Maintenance alerts", count(d.MaintenanceAlerts)},
	})
	t.Render()

	for _, group := range []struct {
		title   string
		buckets []stats.Bucket
	}{
		{"Type", d.ByType},
		{"Preservation state", d.ByPreservationState},
	} {
		fmt.Fprintln(out)
		t := newTable(out, group.title, "Count")
		for _, b := range group.buckets {
			t.Append([]string{b.Name, count(b.Count)})
		}
		t.Render()
	}

	fmt.Fprintln(out)
	t = newTable(out, "Recent", "Code", "Name")
	for i, r := range d.Recent {
		t.Append([]string{humanize.Ordinal(i + 1), r.Code, r.Name})
	}
	t.Render()
}
