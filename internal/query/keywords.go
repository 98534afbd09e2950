package query

import (
	"context"
	"strings"

	"github.com/ragit-kb/ragit/internal/llm"
	"github.com/ragit-kb/ragit/internal/pdl"
	"github.com/ragit-kb/ragit/internal/schema"
	"github.com/ragit-kb/ragit/internal/tfidf"
)

var keywordsSchema = schema.Object(
	schema.Field{Key: "keywords", Schema: schema.Array(schema.Str())},
)

// extractKeywords expands the raw query into a Keywords object via an
// optional LLM call (spec §4.F step 1). A nil provider or any failure to
// produce a valid response falls back to the raw query alone, never
// aborting the pipeline.
func extractKeywords(ctx context.Context, provider llm.Provider, cfg Config, q string, hist History) tfidf.Keywords {
	if provider == nil {
		return tfidf.Keywords{Raw: q}
	}

	prompt := "Given this search query, suggest up to 8 additional keywords or synonyms that would help find relevant documents. " +
		"Respond with JSON {\"keywords\": [string, ...]}.\n\nQuery: " + q
	messages := historyMessages(hist)
	messages = append(messages, pdl.SimpleMessage(pdl.RoleUser, prompt))

	for attempt := 0; attempt < cfg.MaxRetry; attempt++ {
		resp, err := provider.Send(ctx, llm.Request{Model: cfg.Model, Messages: messages})
		if err != nil {
			continue
		}

		value, valErr := keywordsSchema.Validate(resp.Text)
		if valErr == nil {
			return tfidf.Keywords{Raw: q, Extra: extractStrings(value)}
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
			value, valErr = keywordsSchema.Validate(resp.Text)
			if valErr == nil {
				return tfidf.Keywords{Raw: q, Extra: extractStrings(value)}
			}
		}
	}
	return tfidf.Keywords{Raw: q}
}

func extractStrings(v interface{}) []string {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	raw, ok := obj["keywords"].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

func historyMessages(hist History) []pdl.Message {
	messages := make([]pdl.Message, 0, len(hist)*2)
	for _, turn := range hist {
		messages = append(messages, pdl.SimpleMessage(pdl.RoleUser, turn.Query))
		messages = append(messages, pdl.SimpleMessage(pdl.RoleAssistant, turn.Response.Response))
	}
	return messages
}
