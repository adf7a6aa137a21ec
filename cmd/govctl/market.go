package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	com "github.com/oceanguard/govclient/internal/common"
	"github.com/oceanguard/govclient/pkg/market"
	"github.com/oceanguard/govclient/pkg/viewmodel"
	"github.com/spf13/cobra"
)

var errNoMarket = errors.New("market commands are not available")

func marketOf(a *app) (*viewmodel.Market, error) {
	if a.vm.Market == nil {
		return nil, errNoMarket
	}
	return a.vm.Market, nil
}

func parseUint(what, s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, s)
	}
	return v, nil
}

func marketCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "market",
		Short: "Conservation projects and carbon credits",
	}

	cmd.AddCommand(
		ratesCommand(),
		projectsCommand(),
		projectCommand(),
		creditsCommand(),
		quoteCommand(),
		validatorCommand(),
		createProjectCommand(),
		validateProjectCommand(),
		issueTokensCommand(),
		createCreditCommand(),
		listCreditCommand(),
		buyCreditCommand(),
	)

	return cmd
}

func ratesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rates",
		Short: "Show the token issuance rate per project type",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			m, err := marketOf(a)
			if err != nil {
				return err
			}

			rates, err := m.Reads.ConversionRates(ctx)
			if err != nil {
				return err
			}

			if globalFlags.json {
				return printJSON(cmd.OutOrStdout(), rates)
			}

			renderRates(cmd.OutOrStdout(), rates)
			return nil
		}),
	}
}

func projectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "projects [creator]",
		Short: "List the projects of an address, the connected account by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			m, err := marketOf(a)
			if err != nil {
				return err
			}

			var creator string
			if len(args) == 1 {
				creator = args[0]
			} else {
				if err := a.start(ctx); err != nil {
					return err
				}
				addr := a.vm.Account.Address()
				if addr == nil {
					return fmt.Errorf("no connected account, pass a creator address")
				}
				creator = addr.Hex()
			}

			addr, err := com.ParseAddress(creator)
			if err != nil {
				return err
			}

			list, err := m.Reads.UserProjects(ctx, addr)
			if err != nil {
				return err
			}

			if globalFlags.json {
				return printJSON(cmd.OutOrStdout(), list)
			}

			renderProjects(cmd.OutOrStdout(), list)
			return nil
		}),
	}
}

func projectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "project <id>",
		Short: "Show one project",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			m, err := marketOf(a)
			if err != nil {
				return err
			}

			id, err := parseUint("project id", args[0])
			if err != nil {
				return err
			}

			p, err := m.Reads.Project(ctx, id)
			if err != nil {
				return err
			}

			if globalFlags.json {
				return printJSON(cmd.OutOrStdout(), p)
			}

			renderProject(cmd.OutOrStdout(), p)
			return nil
		}),
	}
}

func creditsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "credits",
		Short: "List carbon credits for sale",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			m, err := marketOf(a)
			if err != nil {
				return err
			}

			list, err := m.Reads.AvailableCredits(ctx)
			if err != nil {
				return err
			}

			if globalFlags.json {
				return printJSON(cmd.OutOrStdout(), list)
			}

			renderCredits(cmd.OutOrStdout(), list)
			return nil
		}),
	}
}

func quoteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "quote <type> <impact>",
		Short: "Quote the tokens a project would be issued",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			m, err := marketOf(a)
			if err != nil {
				return err
			}

			pt, err := market.ParseProjectType(args[0])
			if err != nil {
				return err
			}

			impact, err := parseUint("impact metric", args[1])
			if err != nil {
				return err
			}

			amount, err := m.Reads.TokenAmount(ctx, pt, impact)
			if err != nil {
				return err
			}

			if globalFlags.json {
				return printJSON(cmd.OutOrStdout(), map[string]string{"tokenAmount": amount})
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d %s earns %s tokens\n", impact, pt.ImpactUnit(), amount)
			return nil
		}),
	}
}

func validatorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validator",
		Short: "Check whether the connected account is a project validator",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			m, err := marketOf(a)
			if err != nil {
				return err
			}

			if err := a.start(ctx); err != nil {
				return err
			}

			ok, err := m.IsValidator(ctx)
			if err != nil {
				return err
			}

			if globalFlags.json {
				return printJSON(cmd.OutOrStdout(), map[string]bool{"isValidator": ok})
			}

			fmt.Fprintf(cmd.OutOrStdout(), "validator: %t\n", ok)
			return nil
		}),
	}
}

func createProjectCommand() *cobra.Command {
	var name, description, projectType string
	var impact uint64

	cmd := &cobra.Command{
		Use:   "create-project",
		Short: "Register a conservation project",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			m, err := marketOf(a)
			if err != nil {
				return err
			}

			pt, err := market.ParseProjectType(projectType)
			if err != nil {
				return err
			}

			if err := a.requireSigner(ctx); err != nil {
				return err
			}

			req := market.ProjectRequest{
				Name:         name,
				Description:  description,
				Type:         pt,
				ImpactMetric: impact,
			}
			return report(cmd, m.Commands.Create, m.CreateProject(ctx, req))
		}),
	}

	cmd.Flags().StringVar(&name, "name", "", "project name")
	cmd.Flags().StringVar(&description, "description", "", "project description")
	cmd.Flags().StringVar(&projectType, "type", market.PlasticRemoval.String(), "PlasticRemoval, ReefRestoration or CarbonSequestration")
	cmd.Flags().Uint64Var(&impact, "impact", 0, "impact metric in the type's unit")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("impact")

	return cmd
}

// idWriteCommand builds a write command taking one numeric id.
func idWriteCommand(use, short, what string, run func(ctx context.Context, cmd *cobra.Command, m *viewmodel.Market, id uint64) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			m, err := marketOf(a)
			if err != nil {
				return err
			}

			id, err := parseUint(what, args[0])
			if err != nil {
				return err
			}

			if err := a.requireSigner(ctx); err != nil {
				return err
			}

			return run(ctx, cmd, m, id)
		}),
	}
}

func validateProjectCommand() *cobra.Command {
	return idWriteCommand("validate-project <id>", "Validate a project", "project id",
		func(ctx context.Context, cmd *cobra.Command, m *viewmodel.Market, id uint64) error {
			return report(cmd, m.Commands.Validate, m.ValidateProject(ctx, id))
		})
}

func issueTokensCommand() *cobra.Command {
	return idWriteCommand("issue-tokens <id>", "Issue the reward of a validated project", "project id",
		func(ctx context.Context, cmd *cobra.Command, m *viewmodel.Market, id uint64) error {
			return report(cmd, m.Commands.Issue, m.IssueTokens(ctx, id))
		})
}

func buyCreditCommand() *cobra.Command {
	return idWriteCommand("buy-credit <id>", "Buy a listed carbon credit at its price", "credit id",
		func(ctx context.Context, cmd *cobra.Command, m *viewmodel.Market, id uint64) error {
			return report(cmd, m.Commands.Buy, m.BuyCarbonCredit(ctx, id))
		})
}

func createCreditCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create-credit <project-id> <tons>",
		Short: "Mint carbon credits from a sequestration project",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			m, err := marketOf(a)
			if err != nil {
				return err
			}

			id, err := parseUint("project id", args[0])
			if err != nil {
				return err
			}
			amount, err := parseUint("amount", args[1])
			if err != nil {
				return err
			}

			if err := a.requireSigner(ctx); err != nil {
				return err
			}

			return report(cmd, m.Commands.Mint, m.CreateCarbonCredit(ctx, id, amount))
		}),
	}
}

func listCreditCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list-credit <id> <price-eth>",
		Short: "Offer a carbon credit for sale",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			m, err := marketOf(a)
			if err != nil {
				return err
			}

			id, err := parseUint("credit id", args[0])
			if err != nil {
				return err
			}

			if err := a.requireSigner(ctx); err != nil {
				return err
			}

			return report(cmd, m.Commands.List, m.ListCarbonCredit(ctx, id, args[1]))
		}),
	}
}
