package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ragit-kb/ragit/internal/llm"
	"github.com/ragit-kb/ragit/internal/meta"
	"github.com/ragit-kb/ragit/internal/objstore"
	"github.com/ragit-kb/ragit/internal/usage"
)

// localUser is the usage store's user_id for single-machine CLI use;
// ragit has no notion of authenticated users (spec §1 places auth out
// of scope), so every local invocation shares one bucket.
const localUser = "local"

func usageDBPath(root string) string {
	return filepath.Join(objstore.New(root).IndexPath(), "usage.db")
}

// recordingProvider wraps a Provider so every successful call is
// persisted to the usage tracker, priced from the model's catalog
// entry. Decorating the provider this way keeps internal/query and
// internal/chunkpipe ignorant of usage tracking entirely, the same
// separation the teacher keeps between its embedder and its own
// cost-tracking middleware.
type recordingProvider struct {
	llm.Provider
	store  *usage.Store
	weight meta.Model
}

func wrapWithUsageTracking(p llm.Provider, store *usage.Store, model meta.Model) llm.Provider {
	if store == nil {
		return p
	}
	return &recordingProvider{Provider: p, store: store, weight: model}
}

// trackUsage opens the repository's usage store and wraps provider so
// build and query commands record token cost without knowing about
// internal/usage themselves. The returned closer must be deferred by
// the caller to release the sqlite handle.
func trackUsage(store *objstore.Store, modelName string, provider llm.Provider) (llm.Provider, func(), error) {
	catalog, err := meta.LoadCatalog(store)
	if err != nil {
		return nil, nil, err
	}
	model, _ := catalog.ByName(modelName)

	db, err := usage.Open(usageDBPath(store.Root))
	if err != nil {
		return nil, nil, err
	}
	return wrapWithUsageTracking(provider, db, model), func() { _ = db.Close() }, nil
}

func (p *recordingProvider) Send(ctx context.Context, req llm.Request) (llm.Response, error) {
	resp, err := p.Provider.Send(ctx, req)
	if err != nil {
		return resp, err
	}
	inWeight := int64(p.weight.DollarsPer1BInputTokens)
	outWeight := int64(p.weight.DollarsPer1BOutputTokens)
	_ = p.store.Record(localUser, int64(resp.Usage.InputTokens), int64(resp.Usage.OutputTokens), inWeight, outWeight)
	return resp, nil
}

func newUsageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Show LLM token cost recorded by build and query, grouped by day",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := usage.Open(usageDBPath(repoRoot))
			if err != nil {
				return err
			}
			defer store.Close()

			byDate, err := store.ByDate(localUser)
			if err != nil {
				return err
			}
			dates := make([]string, 0, len(byDate))
			for d := range byDate {
				dates = append(dates, d)
			}
			sort.Strings(dates)
			for _, d := range dates {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t$%s\n", d, byDate[d])
			}
			return nil
		},
	}
}
