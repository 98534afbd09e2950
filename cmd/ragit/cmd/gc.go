package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ragit-kb/ragit/internal/repokb"
)

func newGcCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gc",
		Short: "Delete chunks and images no longer referenced by any tracked file",
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

			report, err := r.Gc()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d chunks, %d images\n", report.ChunksRemoved, report.ImagesRemoved)
			return nil
		},
	}
}
