package main

import (
	"context"
	"fmt"
	"time"

	"github.com/oceanguard/govclient/pkg/governance"
	"github.com/spf13/cobra"
)

func watchCommand() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow balances and proposals until interrupted",
		Args:  cobra.NoArgs,
		RunE: withAppUnbounded(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			s, err := governance.ParseStatus(status)
			if err != nil {
				return err
			}

			if err := a.start(ctx); err != nil {
				return err
			}
			a.vm.SetStatus(s)

			w := cmd.OutOrStdout()
			for {
				select {
				case <-a.vm.Updates():
				case <-ctx.Done():
					return nil
				}

				snap := a.vm.Snapshot()
				if !settled(snap) {
					continue
				}

				if globalFlags.json {
					if err := printJSON(w, snap); err != nil {
						return err
					}
					continue
				}

				fmt.Fprintf(w, "%s\n", mutedStyle.Sprint(time.Now().Format(time.TimeOnly)))
				renderStatus(w, snap)
				fmt.Fprintln(w)
				fmt.Fprintf(w, "%s\n", titleStyle.Sprintf("%s proposals", snap.Status))
				renderProposals(w, snap.ProposalsByStatus.Value)
				fmt.Fprintln(w)
			}
		}),
	}

	cmd.Flags().StringVar(&status, "status", governance.StatusActive.String(), "status of the listed proposals")

	return cmd
}
