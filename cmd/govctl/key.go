package main

import (
	"fmt"

	com "github.com/oceanguard/govclient/internal/common"
	"github.com/oceanguard/govclient/internal/storage"
	"github.com/oceanguard/govclient/internal/version"
	"github.com/spf13/cobra"
)

func keyCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "key",
		Short: "Generate a signing key and append it to the key file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				file = storage.DefaultKeyFile()
			}

			pk, address, err := com.GenerateHexPrivateKey()
			if err != nil {
				return err
			}

			if err := storage.AppendLine(file, pk); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "address: %s\n", addressStyle.Sprint(address.Hex()))
			fmt.Fprintf(cmd.OutOrStdout(), "key file: %s\n", file)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "key file, ~/.oceanguard/keys by default")

	return cmd
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", programName, version.Version)
		},
	}
}
