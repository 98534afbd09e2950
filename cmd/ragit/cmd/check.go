package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ragit-kb/ragit/internal/repokb"
)

func newCheckCmd() *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Audit the repository's header and chunk-store invariants",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repokb.Open(repoRoot)
			if err != nil {
				return err
			}

			issues, err := r.Check(recursive)
			if err != nil {
				return err
			}
			for _, issue := range issues {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", issue.Path, issue.Message)
			}
			if len(issues) > 0 {
				return fmt.Errorf("found %d issue(s)", len(issues))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "no issues found")
			return nil
		},
	}

	cmd.Flags().BoolVar(&recursive, "recursive", false, "re-derive file uids from on-disk chunks and verify image references")
	return cmd
}
