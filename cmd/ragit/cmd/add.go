package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ragit-kb/ragit/internal/chunkpipe"
	"github.com/ragit-kb/ragit/internal/repokb"
)

func newAddCmd() *cobra.Command {
	var force, ignore, reject bool

	cmd := &cobra.Command{
		Use:   "add <path>...",
		Short: "Stage files for the next build",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := chunkpipe.AddIgnore
			switch {
			case force:
				mode = chunkpipe.AddForce
			case reject:
				mode = chunkpipe.AddReject
			case ignore:
				mode = chunkpipe.AddIgnore
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

			outcomes, err := r.AddPaths(args, mode)
			for _, o := range outcomes {
				if o.Err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", o.Path, o.Err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", o.Path, o.Result)
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "re-stage an already-processed file, discarding its old chunks")
	cmd.Flags().BoolVar(&ignore, "ignore", false, "skip an already-processed file (default)")
	cmd.Flags().BoolVar(&reject, "reject", false, "fail if any path is already processed")
	return cmd
}
