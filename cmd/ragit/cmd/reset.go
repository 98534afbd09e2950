package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ragit-kb/ragit/internal/repokb"
)

func newResetCmd() *cobra.Command {
	var hard, soft bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear in-flight build state (--soft) or wipe the whole index (--hard)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if hard == soft {
				return fmt.Errorf("reset requires exactly one of --hard or --soft")
			}

			r, err := repokb.Open(repoRoot)
			if err != nil {
				return err
			}
			lock := r.Lock()
			if err := lock.Lock(); err != nil {
				return err
			}
			defer lock.Unlock()

			if hard {
				return r.ResetHard()
			}
			return r.ResetSoft()
		},
	}

	cmd.Flags().BoolVar(&hard, "hard", false, "wipe every chunk, image, archive, and ii shard")
	cmd.Flags().BoolVar(&soft, "soft", false, "clear curr_processing_file and re-stage it")
	return cmd
}
