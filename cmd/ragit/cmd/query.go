package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ragit-kb/ragit/internal/query"
	"github.com/ragit-kb/ragit/internal/repokb"
)

func newQueryCmd() *cobra.Command {
	var interactive bool
	var model string

	cmd := &cobra.Command{
		Use:   "query [question]",
		Short: "Ask a question against the knowledge base",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repokb.Open(repoRoot)
			if err != nil {
				return err
			}

			cfg, err := query.LoadConfig(r.Store)
			if err != nil {
				return err
			}
			if model != "" {
				cfg.Model = model
			}
			if cfg.Model == "" {
				cfg.Model = ambient.DefaultModel
			}

			provider, err := resolveProvider(r.Store, cfg.Model)
			if err != nil {
				return err
			}
			provider, closeUsage, err := trackUsage(r.Store, cfg.Model, provider)
			if err != nil {
				return err
			}
			defer closeUsage()
			engine := query.NewEngine(r.Store, r, provider, cfg, nil)

			if interactive {
				return runInteractiveQuery(cmd, engine)
			}

			if len(args) == 0 {
				return fmt.Errorf("query requires a question, or -i for interactive mode")
			}
			q := strings.Join(args, " ")
			turn, err := engine.Run(cmd.Context(), q, nil)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), turn.Response.Response)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "run a multi-turn conversation reading questions from stdin")
	cmd.Flags().StringVar(&model, "model", "", "override the query config's model")
	return cmd
}

// runInteractiveQuery reads one question per line from stdin, threading
// History across turns so later questions can refer back to earlier
// answers (spec §4.F "Multi-turn").
func runInteractiveQuery(cmd *cobra.Command, engine *query.Engine) error {
	scanner := bufio.NewScanner(cmd.InOrStdin())
	out := cmd.OutOrStdout()
	var hist query.History

	fmt.Fprintln(out, "ragit interactive query, one question per line, Ctrl-D to exit")
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		q := strings.TrimSpace(scanner.Text())
		if q == "" {
			continue
		}

		turn, err := engine.Run(cmd.Context(), q, hist)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
			continue
		}
		fmt.Fprintln(out, turn.Response.Response)
		hist = append(hist, turn)
	}
}
