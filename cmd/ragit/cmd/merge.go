package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ragit-kb/ragit/internal/repokb"
)

func newMergeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge <path>",
		Short: "Union another repository's chunks, images, and metadata into this one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repokb.Open(repoRoot)
			if err != nil {
				return err
			}
			lock := r.Lock()
			if err := lock.Lock(); err != nil {
				return err
			}
			defer lock.Unlock()

			report, err := r.Merge(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "merged %d chunks, %d images\n", report.ChunksCopied, report.ImagesCopied)
			for _, c := range report.Conflicts {
				fmt.Fprintf(cmd.OutOrStdout(), "conflict (incoming wins): %s\n", c)
			}
			return nil
		},
	}
}
