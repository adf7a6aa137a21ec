package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

const programName = "govctl"

var globalFlags = struct {
	env     string
	json    bool
	proxy   string
	timeout string
}{}

func main() {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Read and vote on OceanGuard governance proposals",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&globalFlags.env, "env", "", "path to .env file")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.json, "json", false, "print json instead of tables")
	rootCmd.PersistentFlags().StringVar(&globalFlags.proxy, "proxy", "", "proposal proxy url, overrides PROXY_URL")
	rootCmd.PersistentFlags().StringVar(&globalFlags.timeout, "timeout", "2m", "give up after this long, 0 waits forever")

	rootCmd.AddGroup(
		&cobra.Group{ID: "read", Title: "Read Commands"},
		&cobra.Group{ID: "write", Title: "Write Commands"},
		&cobra.Group{ID: "market", Title: "Market Commands"},
	)

	for _, c := range []*cobra.Command{statusCommand(), proposalsCommand(), proposalCommand(), voteInfoCommand(), watchCommand()} {
		c.GroupID = "read"
		rootCmd.AddCommand(c)
	}

	for _, c := range []*cobra.Command{voteCommand(), stakeCommand(), unstakeCommand(), proposeCommand()} {
		c.GroupID = "write"
		rootCmd.AddCommand(c)
	}

	mc := marketCommand()
	mc.GroupID = "market"
	rootCmd.AddCommand(mc)

	rootCmd.AddCommand(keyCommand(), versionCommand())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
