package query

import (
	"context"
	"testing"

	"github.com/ragit-kb/ragit/internal/llm"
	"github.com/stretchr/testify/require"
)

func TestRun_ScanModeRetrievesAndAnswers(t *testing.T) {
	chunks := fixedChunks{
		mkChunk("a.txt", "the quick brown fox", "fox facts", "about a fox"),
		mkChunk("b.txt", "an unrelated document about cooking", "cooking", "recipes"),
	}
	provider := llm.NewTestProvider("test", llm.Response{Text: "The fox is quick."})
	engine := NewEngine(nil, chunks, provider, Config{K1: 2, K2: 2}, nil)

	turn, err := engine.Run(context.Background(), "fox", nil)
	require.NoError(t, err)
	require.Equal(t, "fox", turn.Query)
	require.Equal(t, "The fox is quick.", turn.Response.Response)
	require.NotEmpty(t, turn.Response.RetrievedChunks)
}

func TestRun_NoProviderFallsBackToRawKeywordsButFailsAnswer(t *testing.T) {
	chunks := fixedChunks{mkChunk("a.txt", "the quick brown fox", "fox", "fox summary")}
	engine := NewEngine(nil, chunks, nil, Config{K1: 2, K2: 2}, nil)

	_, err := engine.Run(context.Background(), "fox", nil)
	require.Error(t, err) // no provider: answer generation has no fallback
}

func TestRun_RespectsCancelledContext(t *testing.T) {
	chunks := fixedChunks{mkChunk("a.txt", "fox", "fox", "fox")}
	provider := llm.NewTestProvider("test", llm.Response{Text: "ok"})
	engine := NewEngine(nil, chunks, provider, Config{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := engine.Run(ctx, "fox", nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRun_RerankFallsBackWhenFewerCandidatesThanK2(t *testing.T) {
	chunks := fixedChunks{mkChunk("a.txt", "fox", "fox", "fox")}
	provider := llm.NewTestProvider("test", llm.Response{Text: "answer"})
	engine := NewEngine(nil, chunks, provider, Config{K1: 10, K2: 10}, nil)

	turn, err := engine.Run(context.Background(), "fox", nil)
	require.NoError(t, err)
	require.Len(t, turn.Response.RetrievedChunks, 1)
}
