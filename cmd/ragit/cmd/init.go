package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ragit-kb/ragit/internal/repokb"
	"github.com/ragit-kb/ragit/pkg/version"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a new repository in the current directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := repokb.Init(repoRoot, version.Version); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "initialized ragit repository at %s\n", repoRoot)
			return nil
		},
	}
}
