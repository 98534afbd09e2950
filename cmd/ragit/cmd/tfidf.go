package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ragit-kb/ragit/internal/repokb"
	"github.com/ragit-kb/ragit/internal/tfidf"
	"github.com/ragit-kb/ragit/internal/tokenize"
)

func parseKeywords(args []string) tfidf.Keywords {
	return tfidf.Keywords{Raw: strings.Join(args, " ")}
}

func newTfidfCmd() *cobra.Command {
	var show bool

	cmd := &cobra.Command{
		Use:   "tfidf <keyword>...",
		Short: "Score chunks against a set of keywords without running the LLM pipeline",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repokb.Open(repoRoot)
			if err != nil {
				return err
			}

			tok := tokenize.New()
			results, err := tfidf.Scan(r, parseKeywords(args), tok)
			if err != nil {
				return err
			}

			for _, res := range results {
				if show {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%.4f\n", res.Uid, res.Score)
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.Uid)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&show, "show", false, "print scores alongside each chunk uid")
	return cmd
}
