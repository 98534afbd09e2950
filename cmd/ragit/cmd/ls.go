package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ragit-kb/ragit/internal/repokb"
)

func newLsCmd() *cobra.Command {
	var files, chunks, models, images bool

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List the repository's files, chunks, images, or model catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repokb.Open(repoRoot)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			switch {
			case chunks:
				all, err := r.AllChunks()
				if err != nil {
					return err
				}
				for _, c := range all {
					fmt.Fprintf(out, "%s\t%s\n", c.Uid, c.Source.Path())
				}
			case models:
				names, err := r.ListModels()
				if err != nil {
					return err
				}
				for _, n := range names {
					fmt.Fprintln(out, n)
				}
			case images:
				uids, err := r.ListImages()
				if err != nil {
					return err
				}
				for _, u := range uids {
					fmt.Fprintln(out, u)
				}
			case files:
				fallthrough
			default:
				for _, p := range r.ListFiles() {
					fmt.Fprintln(out, p)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&files, "files", false, "list tracked files (default)")
	cmd.Flags().BoolVar(&chunks, "chunks", false, "list chunk uids")
	cmd.Flags().BoolVar(&models, "models", false, "list the model catalog")
	cmd.Flags().BoolVar(&images, "images", false, "list image uids")
	return cmd
}
