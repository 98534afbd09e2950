package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ragit-kb/ragit/internal/archive"
)

// newPushCmd drives the begin-push/archive/finalize-push session
// protocol of spec §4.G end to end against a local destination path,
// in place of the HTTP transport the core spec deliberately treats as
// an external collaborator (spec §1 Non-goals). The session staging,
// archive-id bookkeeping, and the target repository's single-writer
// lock are all exercised exactly as a real server would; only the
// wire is different.
func newPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push <dest-repo>",
		Short: "Push this repository's chunks and images into another repository via the archive protocol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest := args[0]

			staging, err := os.MkdirTemp("", "ragit-push-*")
			if err != nil {
				return err
			}
			defer os.RemoveAll(staging)

			mgr := archive.NewManager(staging, archive.DefaultExpiry)
			sess, err := mgr.BeginPush(dest)
			if err != nil {
				return err
			}

			var bundle bytes.Buffer
			if err := archive.WriteBundle(&bundle, repoRoot); err != nil {
				return err
			}
			if err := mgr.Archive(sess.ID, "00", bundle.Bytes()); err != nil {
				return err
			}

			state, report, err := mgr.FinalizePush(sess.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "push %s: merged %d chunks, %d images\n", state, report.ChunksCopied, report.ImagesCopied)
			for _, c := range report.Conflicts {
				fmt.Fprintf(cmd.OutOrStdout(), "conflict (incoming wins): %s\n", c)
			}
			return nil
		},
	}
}
