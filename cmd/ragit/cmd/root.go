// Package cmd provides the CLI commands for the ragit binary (spec §6).
package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ragit-kb/ragit/internal/appconfig"
	"github.com/ragit-kb/ragit/internal/ragitctx"
	"github.com/ragit-kb/ragit/internal/rlog"
	"github.com/ragit-kb/ragit/pkg/version"
)

var (
	repoRoot string
	rc       = ragitctx.Background("")
	logClose func()
	ambient  appconfig.Config
)

// Execute runs the root ragit command.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the ragit root command and wires every spec §6
// subcommand under it.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ragit",
		Short:   "A git-like knowledge base for AI agents",
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if repoRoot == "" {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				repoRoot = wd
			}
			abs, err := filepath.Abs(repoRoot)
			if err != nil {
				return err
			}
			repoRoot = abs

			ambient, err = appconfig.Load(repoRoot)
			if err != nil {
				return err
			}

			cfg := rlog.DefaultConfig(filepath.Join(repoRoot, ".ragit", "logs", "ragit.log"))
			cfg.WriteToStderr = false
			if ambient.LogLevel != "" {
				cfg.Level = ambient.LogLevel
			}
			l, closer, err := rlog.Setup(cfg)
			if err != nil {
				// Logging is best-effort; a repo that doesn't exist yet
				// (ragit init) has nowhere to write a log file.
				rc = ragitctx.New(repoRoot, rlog.Discard())
				return nil
			}
			rc = ragitctx.New(repoRoot, l)
			logClose = closer
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if logClose != nil {
				logClose()
			}
			return nil
		},
	}
	cmd.SetVersionTemplate("ragit version {{.Version}}\n")
	cmd.PersistentFlags().StringVar(&repoRoot, "repo", "", "repository root (default: current directory)")

	cmd.AddCommand(
		newInitCmd(),
		newAddCmd(),
		newRemoveCmd(),
		newBuildCmd(),
		newMergeCmd(),
		newConfigCmd(),
		newQueryCmd(),
		newTfidfCmd(),
		newLsCmd(),
		newGcCmd(),
		newResetCmd(),
		newCheckCmd(),
		newMetaCmd(),
		newWatchCmd(),
		newUsageCmd(),
		newPushCmd(),
	)
	return cmd
}
