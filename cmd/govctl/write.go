package main

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	com "github.com/oceanguard/govclient/internal/common"
	"github.com/oceanguard/govclient/pkg/commands"
	"github.com/oceanguard/govclient/pkg/governance"
	"github.com/spf13/cobra"
)

// report prints the final state of c. The command error is returned as is
// so the exit code reflects it.
func report(cmd *cobra.Command, c *commands.Command, err error) error {
	w := cmd.OutOrStdout()
	if globalFlags.json {
		if jerr := printJSON(w, c.State()); jerr != nil {
			return jerr
		}
		return err
	}

	renderCommand(w, c.Name(), c.State())
	return err
}

func voteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "vote <id> <for|against|abstain>",
		Short: "Cast a vote on a proposal",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			vote, err := governance.ParseVoteType(args[1])
			if err != nil {
				return err
			}

			if err := a.requireSigner(ctx); err != nil {
				return err
			}

			return report(cmd, a.vm.Commands.Vote, a.vm.CastVote(ctx, id, vote))
		}),
	}
}

func stakeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stake <amount>",
		Short: "Approve and stake tokens",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			if err := a.requireSigner(ctx); err != nil {
				return err
			}

			done := make(chan struct{})
			defer close(done)

			if !globalFlags.json {
				go followPhases(cmd, a.vm.Updates(), a.vm.Commands.Stake, done)
			}

			return report(cmd, a.vm.Commands.Stake, a.vm.StakeTokens(ctx, args[0]))
		}),
	}
}

// followPhases prints each phase of a running stake as it begins.
func followPhases(cmd *cobra.Command, updates <-chan struct{}, c *commands.Command, done <-chan struct{}) {
	last := commands.PhaseIdle
	for {
		select {
		case <-updates:
			s := c.State()
			if s.IsLoading && s.Phase != last {
				last = s.Phase
				fmt.Fprintf(cmd.ErrOrStderr(), "%s...\n", s.Phase)
			}
		case <-done:
			return
		}
	}
}

func unstakeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unstake <amount>",
		Short: "Unstake tokens",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			if err := a.requireSigner(ctx); err != nil {
				return err
			}

			return report(cmd, a.vm.Commands.Unstake, a.vm.UnstakeTokens(ctx, args[0]))
		}),
	}
}

func proposeCommand() *cobra.Command {
	var title, description, category, target, data string

	cmd := &cobra.Command{
		Use:   "propose",
		Short: "Create a proposal",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			c, err := governance.ParseCategory(category)
			if err != nil {
				return err
			}

			req := commands.ProposalRequest{
				Title:       title,
				Description: description,
				Category:    c,
			}

			if data != "" {
				req.ExecutionData, err = hexutil.Decode(data)
				if err != nil {
					return fmt.Errorf("--data: %w", err)
				}
			}

			if target != "" {
				addr, err := com.ParseAddress(target)
				if err != nil {
					return fmt.Errorf("--target: %w", err)
				}
				req.Target = addr
			}

			if err := a.requireSigner(ctx); err != nil {
				return err
			}

			return report(cmd, a.vm.Commands.Propose, a.vm.CreateProposal(ctx, req))
		}),
	}

	cmd.Flags().StringVar(&title, "title", "", "proposal title")
	cmd.Flags().StringVar(&description, "description", "", "proposal description")
	cmd.Flags().StringVar(&category, "category", governance.CategoryOther.String(), "proposal category")
	cmd.Flags().StringVar(&target, "target", "", "contract to execute on, none by default")
	cmd.Flags().StringVar(&data, "data", "", "hex calldata for the target")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("description")

	return cmd
}
