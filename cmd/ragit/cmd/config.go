package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ragit-kb/ragit/internal/meta"
	"github.com/ragit-kb/ragit/internal/repokb"
)

func newConfigCmd() *cobra.Command {
	var set, get bool
	var getAll bool

	cmd := &cobra.Command{
		Use:   "config <block> [key] [value]",
		Short: "Read or write a named config block (build, query, api)",
		Args:  cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repokb.Open(repoRoot)
			if err != nil {
				return err
			}
			name := args[0]

			if getAll {
				block, err := meta.LoadBlock(r.Store, name)
				if err != nil {
					return err
				}
				for _, k := range block.Keys() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", k, block[k])
				}
				return nil
			}

			if get {
				if len(args) < 2 {
					return fmt.Errorf("config --get requires a key")
				}
				block, err := meta.LoadBlock(r.Store, name)
				if err != nil {
					return err
				}
				v, ok := block.Get(args[1])
				if !ok {
					return fmt.Errorf("key %q not set in block %q (known keys: %s)", args[1], name, strings.Join(meta.KnownKeys(name), ", "))
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			}

			if set || len(args) == 3 {
				if len(args) != 3 {
					return fmt.Errorf("config --set requires a key and a value")
				}
				lock := r.Lock()
				if err := lock.Lock(); err != nil {
					return err
				}
				defer lock.Unlock()

				block, err := meta.LoadBlock(r.Store, name)
				if err != nil {
					return err
				}
				if err := block.Set(name, args[1], args[2]); err != nil {
					return err
				}
				return block.Save(r.Store, name)
			}

			return fmt.Errorf("specify --set, --get, or --get-all")
		},
	}

	cmd.Flags().BoolVar(&set, "set", false, "set key to value")
	cmd.Flags().BoolVar(&get, "get", false, "print one key's value")
	cmd.Flags().BoolVar(&getAll, "get-all", false, "print every key in the block")
	return cmd
}
