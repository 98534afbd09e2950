package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ragit-kb/ragit/internal/repokb"
	"github.com/ragit-kb/ragit/internal/watch"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Auto-stage files as they change on disk until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repokb.Open(repoRoot)
			if err != nil {
				return err
			}

			w, err := watch.New(r, watch.Options{}, rc.Logger)
			if err != nil {
				return err
			}
			defer w.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "watching %s, press Ctrl-C to stop\n", r.Root)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			stop := make(chan struct{})
			go func() {
				<-sigCh
				close(stop)
			}()

			return w.Run(stop)
		},
	}
}
