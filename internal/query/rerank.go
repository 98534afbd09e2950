package query

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ragit-kb/ragit/internal/chunkmodel"
	"github.com/ragit-kb/ragit/internal/llm"
	"github.com/ragit-kb/ragit/internal/pdl"
	"github.com/ragit-kb/ragit/internal/ragiterr"
	"github.com/ragit-kb/ragit/internal/schema"
)

var rerankSchema = schema.Object(
	schema.Field{Key: "relevant", Schema: schema.Array(schema.Int())},
)

// rerank asks the LLM to pick the cfg.K2 most relevant candidates out of
// the TF-IDF top-K1 set, batching each candidate's title and summary
// rather than its full data (spec §4.F step 3). On schema exhaustion it
// falls back to the TF-IDF order's first K2 entries rather than failing
// the whole turn.
func rerank(ctx context.Context, provider llm.Provider, cfg Config, q string, candidates []chunkmodel.Chunk) ([]chunkmodel.Chunk, error) {
	if provider == nil || len(candidates) <= cfg.K2 {
		return truncate(candidates, cfg.K2), nil
	}

	prompt := rerankPrompt(q, candidates)
	messages := []pdl.Message{pdl.SimpleMessage(pdl.RoleUser, prompt)}

	for attempt := 0; attempt < cfg.MaxRetry; attempt++ {
		resp, err := provider.Send(ctx, llm.Request{Model: cfg.Model, Messages: messages})
		if err != nil {
			continue
		}

		value, valErr := rerankSchema.Validate(resp.Text)
		if valErr == nil {
			return selectByIndex(candidates, value, cfg.K2), nil
		}

		for retry := 0; retry < cfg.SchemaMaxTry; retry++ {
			messages = append(messages,
				pdl.SimpleMessage(pdl.RoleAssistant, resp.Text),
				pdl.SimpleMessage(pdl.RoleUser, "Your response did not match the required schema: "+valErr.Error()+". Reply again with corrected JSON only."),
			)
			resp, err = provider.Send(ctx, llm.Request{Model: cfg.Model, Messages: messages})
			if err != nil {
				break
			}
			value, valErr = rerankSchema.Validate(resp.Text)
			if valErr == nil {
				return selectByIndex(candidates, value, cfg.K2), nil
			}
		}
	}
	return truncate(candidates, cfg.K2), ragiterr.RetriesExhausted(cfg.MaxRetry, nil)
}

func rerankPrompt(q string, candidates []chunkmodel.Chunk) string {
	var b strings.Builder
	b.WriteString("Query: ")
	b.WriteString(q)
	b.WriteString("\n\nRank the following candidates by relevance to the query. ")
	b.WriteString("Respond with JSON {\"relevant\": [index, ...]} listing the indices of the most relevant candidates, most relevant first.\n\n")
	for i, c := range candidates {
		fmt.Fprintf(&b, "[%d] %s: %s\n", i, c.Title, c.Summary)
	}
	return b.String()
}

func selectByIndex(candidates []chunkmodel.Chunk, value interface{}, k2 int) []chunkmodel.Chunk {
	obj, ok := value.(map[string]interface{})
	if !ok {
		return truncate(candidates, k2)
	}
	raw, ok := obj["relevant"].([]interface{})
	if !ok {
		return truncate(candidates, k2)
	}

	var out []chunkmodel.Chunk
	seen := make(map[int]struct{}, len(raw))
	for _, item := range raw {
		if len(out) >= k2 {
			break
		}
		idx, ok := toIndex(item)
		if !ok || idx < 0 || idx >= len(candidates) {
			continue
		}
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		out = append(out, candidates[idx])
	}
	if len(out) == 0 {
		return truncate(candidates, k2)
	}
	return out
}

func toIndex(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	default:
		return 0, false
	}
}

func truncate(chunks []chunkmodel.Chunk, k int) []chunkmodel.Chunk {
	if k <= 0 || k >= len(chunks) {
		return chunks
	}
	return chunks[:k]
}
