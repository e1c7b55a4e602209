package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sebastianm/inventar/internal/app"
	"github.com/sebastianm/inventar/internal/apperr"
	"github.com/sebastianm/inventar/internal/sequence"
	"github.com/spf13/cobra"
)

func codeCmd(o *rootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "code",
		Short: "Inspect or draw from the artifact code sequence",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "next",
			Short: "Consume and print the next artifact code",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return o.withApp(cmd, func(ctx context.Context, a *app.App) error {
					code, err := a.Codes.NextCode(ctx)
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), code)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "current",
			Short: "Print the last code handed out",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return o.withApp(cmd, func(ctx context.Context, a *app.App) error {
					n, err := a.Codes.Current(ctx)
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), sequence.FormatCode(n))
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "reset <value>",
			Short: "Move the sequence forward so the next code is value+1",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return apperr.Invalid("value", fmt.Sprintf("%q is not a number", args[0]))
				}
				return o.withApp(cmd, func(ctx context.Context, a *app.App) error {
					if err := a.Codes.Reset(ctx, v); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "next code is %s\n", sequence.FormatCode(v+1))
					return nil
				})
			},
		},
	)
	return cmd
}
