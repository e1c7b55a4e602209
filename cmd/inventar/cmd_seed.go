package main

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/sebastianm/inventar/internal/app"
	"github.com/sebastianm/inventar/internal/demodata"
	"github.com/spf13/cobra"
)

func seedCmd(o *rootOpts) *cobra.Command {
	var (
		count int
		seed  uint64
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill an empty inventory with sample lookups and artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withApp(cmd, func(ctx context.Context, a *app.App) error {
				var rng *rand.Rand
				if cmd.Flags().Changed("seed") {
					rng = rand.New(rand.NewPCG(seed, seed))
				}
				rep, err := demodata.Seed(ctx, demodata.Deps{
					Log:       a.Log,
					Lookups:   a.Lookups,
					Artifacts: a.Artifacts,
				}, count, rng)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %d artifacts (%s to %s), %d new lookup entries\n",
					rep.Artifacts, rep.FirstCode, rep.LastCode, rep.LookupsAdded)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&count, "count", demodata.DefaultCount, "Number of artifacts to create")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed for reproducible data")
	return cmd
}
