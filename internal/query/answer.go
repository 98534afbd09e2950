package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/ragit-kb/ragit/internal/chunkmodel"
	"github.com/ragit-kb/ragit/internal/llm"
	"github.com/ragit-kb/ragit/internal/pdl"
	"github.com/ragit-kb/ragit/internal/ragiterr"
)

// generateAnswer asks the LLM to answer q given the selected chunks' data
// and the conversation so far (spec §4.F step 4). Unlike keyword
// extraction and rerank, a failure here is fatal to the turn: there is no
// sensible fallback answer to synthesize without a model.
func generateAnswer(ctx context.Context, provider llm.Provider, cfg Config, q string, hist History, chunks []chunkmodel.Chunk) (string, error) {
	if provider == nil {
		return "", ragiterr.RetriesExhausted(0, fmt.Errorf("no provider configured"))
	}

	messages := historyMessages(hist)
	messages = append(messages, pdl.SimpleMessage(pdl.RoleUser, answerPrompt(q, chunks)))

	var lastErr error
	for attempt := 0; attempt < cfg.MaxRetry; attempt++ {
		resp, err := provider.Send(ctx, llm.Request{Model: cfg.Model, Messages: messages})
		if err != nil {
			lastErr = err
			continue
		}
		return resp.Text, nil
	}
	return "", ragiterr.RetriesExhausted(cfg.MaxRetry, lastErr)
}

func answerPrompt(q string, chunks []chunkmodel.Chunk) string {
	var b strings.Builder
	b.WriteString("Answer the question using only the context below. If the context doesn't contain the answer, say so.\n\n")
	for _, c := range chunks {
		fmt.Fprintf(&b, "--- %s ---\n%s\n\n", c.Source.Render(), c.Data)
	}
	b.WriteString("Question: ")
	b.WriteString(q)
	return b.String()
}
