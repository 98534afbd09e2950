package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ragit-kb/ragit/internal/repokb"
)

func newRemoveCmd() *cobra.Command {
	var auto bool

	cmd := &cobra.Command{
		Use:   "remove [path]",
		Short: "Untrack a file and garbage-collect its chunks",
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

			if auto {
				removed, err := r.RemoveAuto()
				if err != nil {
					return err
				}
				for _, p := range removed {
					fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", p)
				}
				return nil
			}
			if len(args) != 1 {
				return fmt.Errorf("remove requires exactly one path, or --auto")
			}
			return r.Remove(args[0])
		},
	}

	cmd.Flags().BoolVar(&auto, "auto", false, "remove every processed file that no longer exists on disk")
	return cmd
}
