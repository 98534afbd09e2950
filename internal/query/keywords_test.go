package query

import (
	"context"
	"testing"

	"github.com/ragit-kb/ragit/internal/llm"
	"github.com/stretchr/testify/require"
)

func TestExtractKeywords_NilProviderReturnsRawOnly(t *testing.T) {
	kw := extractKeywords(context.Background(), nil, Config{}.withDefaults(), "fox", nil)
	require.Equal(t, "fox", kw.Raw)
	require.Empty(t, kw.Extra)
}

func TestExtractKeywords_ParsesValidSchemaResponse(t *testing.T) {
	provider := llm.NewTestProvider("test", llm.Response{Text: `{"keywords": ["vixen", "canid"]}`})
	kw := extractKeywords(context.Background(), provider, Config{MaxRetry: 1, SchemaMaxTry: 1}, "fox", nil)
	require.Equal(t, "fox", kw.Raw)
	require.Equal(t, []string{"vixen", "canid"}, kw.Extra)
}

func TestExtractKeywords_SchemaCorrectionRecovers(t *testing.T) {
	provider := llm.NewTestProvider("test",
		llm.Response{Text: `not json`},
		llm.Response{Text: `{"keywords": ["vixen"]}`},
	)
	kw := extractKeywords(context.Background(), provider, Config{MaxRetry: 1, SchemaMaxTry: 2}, "fox", nil)
	require.Equal(t, []string{"vixen"}, kw.Extra)
}

func TestExtractKeywords_ExhaustsGracefully(t *testing.T) {
	provider := llm.NewTestProvider("test", llm.Response{Text: `garbage forever`})
	kw := extractKeywords(context.Background(), provider, Config{MaxRetry: 1, SchemaMaxTry: 1}, "fox", nil)
	require.Equal(t, "fox", kw.Raw)
	require.Empty(t, kw.Extra)
}
