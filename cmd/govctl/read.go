package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/oceanguard/govclient/pkg/governance"
	"github.com/oceanguard/govclient/pkg/viewmodel"
	"github.com/spf13/cobra"
)

func parseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid proposal id %q", s)
	}
	return id, nil
}

// settled reports whether no polled value is waiting on its first result.
func settled(s viewmodel.Snapshot) bool {
	return !s.TokenBalance.Loading &&
		!s.StakedBalance.Loading &&
		!s.VotingPower.Loading &&
		!s.TotalStaked.Loading &&
		!s.ActiveProposals.Loading &&
		!s.ProposalsByStatus.Loading
}

// settle waits for the first round of polled reads. On ctx expiry it returns
// whatever has arrived.
func settle(ctx context.Context, vm *viewmodel.ViewModel) viewmodel.Snapshot {
	for {
		s := vm.Snapshot()
		if settled(s) {
			return s
		}

		select {
		case <-vm.Updates():
		case <-ctx.Done():
			return vm.Snapshot()
		}
	}
}

type statusOutput struct {
	viewmodel.Snapshot
	Delegate      string `json:"delegate,omitempty"`
	ProposalCount uint64 `json:"proposalCount"`
}

func statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the account, its balances and voting power",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			if err := a.start(ctx); err != nil {
				return err
			}

			out := statusOutput{Snapshot: settle(ctx, a.vm)}

			count, err := a.vm.Reads.ProposalCount(ctx)
			if err != nil {
				return err
			}
			out.ProposalCount = count

			if addr := a.vm.Account.Address(); addr != nil {
				delegate, err := a.vm.Reads.UserDelegate(ctx, *addr)
				if err != nil {
					return err
				}
				if delegate != nil {
					out.Delegate = delegate.Hex()
				}
			}

			w := cmd.OutOrStdout()
			if globalFlags.json {
				return printJSON(w, out)
			}

			renderStatus(w, out.Snapshot)
			fmt.Fprintf(w, "%s %d\n", labelStyle.Sprintf("%-8s", "Count:"), out.ProposalCount)
			if out.Delegate != "" {
				fmt.Fprintf(w, "%s %s\n", labelStyle.Sprintf("%-8s", "Delegate:"), addressStyle.Sprint(out.Delegate))
			}

			return nil
		}),
	}
}

func proposalsCommand() *cobra.Command {
	var status, category string

	cmd := &cobra.Command{
		Use:   "proposals",
		Short: "List proposals, the active ones unless filtered",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			if status != "" && category != "" {
				return fmt.Errorf("--status and --category are exclusive")
			}

			var (
				list []*governance.Proposal
				err  error
			)

			switch {
			case status != "":
				s, perr := governance.ParseStatus(status)
				if perr != nil {
					return perr
				}
				list, err = a.vm.Reads.ProposalsByStatus(ctx, s)
			case category != "":
				c, perr := governance.ParseCategory(category)
				if perr != nil {
					return perr
				}
				list, err = a.vm.Reads.ProposalsByCategory(ctx, c)
			default:
				list, err = a.vm.Reads.ActiveProposals(ctx)
			}
			if err != nil {
				return err
			}

			if globalFlags.json {
				return printJSON(cmd.OutOrStdout(), list)
			}

			renderProposals(cmd.OutOrStdout(), list)
			return nil
		}),
	}

	cmd.Flags().StringVar(&status, "status", "", "Active, Passed, Failed or Canceled")
	cmd.Flags().StringVar(&category, "category", "", "Infrastructure, Tokenomics, Partnership, Protocol, Research or Other")

	return cmd
}

func proposalCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "proposal <id>",
		Short: "Show one proposal",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			p, err := a.vm.Proposal(ctx, id)
			if err != nil {
				return err
			}

			if globalFlags.json {
				return printJSON(cmd.OutOrStdout(), p)
			}

			if err := a.start(ctx); err != nil {
				return err
			}

			renderProposal(cmd.OutOrStdout(), p, a.vm.Account.Address())
			return nil
		}),
	}
}

func voteInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "vote-info <id>",
		Short: "Show how the connected account voted on a proposal",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			if err := a.start(ctx); err != nil {
				return err
			}

			info, err := a.vm.VoteInfo(ctx, id)
			if err != nil {
				return err
			}

			if globalFlags.json {
				return printJSON(cmd.OutOrStdout(), info)
			}

			renderVoteInfo(cmd.OutOrStdout(), id, info)
			return nil
		}),
	}
}
