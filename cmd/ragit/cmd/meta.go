package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ragit-kb/ragit/internal/meta"
	"github.com/ragit-kb/ragit/internal/repokb"
)

func newMetaCmd() *cobra.Command {
	var set, get, getAll, remove, removeAll bool

	cmd := &cobra.Command{
		Use:   "meta [key] [value]",
		Short: "Read or write the repository's free-form metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repokb.Open(repoRoot)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			store, err := meta.Load(r.Store)
			if err != nil {
				return err
			}

			switch {
			case getAll:
				for _, k := range store.Keys() {
					fmt.Fprintf(out, "%s=%s\n", k, store[k])
				}
				return nil
			case get:
				if len(args) != 1 {
					return fmt.Errorf("meta --get requires a key")
				}
				v, ok := store.Get(args[0])
				if !ok {
					return fmt.Errorf("key %q not set", args[0])
				}
				fmt.Fprintln(out, v)
				return nil
			case removeAll:
				lock := r.Lock()
				if err := lock.Lock(); err != nil {
					return err
				}
				defer lock.Unlock()
				for _, k := range store.Keys() {
					store.Remove(k)
				}
				return store.Save(r.Store)
			case remove:
				if len(args) != 1 {
					return fmt.Errorf("meta --remove requires a key")
				}
				lock := r.Lock()
				if err := lock.Lock(); err != nil {
					return err
				}
				defer lock.Unlock()
				store.Remove(args[0])
				return store.Save(r.Store)
			case set || len(args) == 2:
				if len(args) != 2 {
					return fmt.Errorf("meta --set requires a key and a value")
				}
				lock := r.Lock()
				if err := lock.Lock(); err != nil {
					return err
				}
				defer lock.Unlock()
				store.Set(args[0], args[1])
				return store.Save(r.Store)
			default:
				return fmt.Errorf("specify --set, --get, --get-all, --remove, or --remove-all")
			}
		},
	}

	cmd.Flags().BoolVar(&set, "set", false, "set key to value")
	cmd.Flags().BoolVar(&get, "get", false, "print one key's value")
	cmd.Flags().BoolVar(&getAll, "get-all", false, "print every key")
	cmd.Flags().BoolVar(&remove, "remove", false, "delete one key")
	cmd.Flags().BoolVar(&removeAll, "remove-all", false, "delete every key")
	return cmd
}
