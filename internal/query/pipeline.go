package query

import (
	"context"

	"github.com/ragit-kb/ragit/internal/chunkmodel"
	"github.com/ragit-kb/ragit/internal/llm"
	"github.com/ragit-kb/ragit/internal/objstore"
	"github.com/ragit-kb/ragit/internal/tfidf"
	"github.com/ragit-kb/ragit/internal/tokenize"
	"github.com/ragit-kb/ragit/internal/uidkit"
)

// Engine runs query turns against one repository's chunks. It holds no
// conversation state itself; callers thread History between calls to Run.
type Engine struct {
	Store     *objstore.Store
	Chunks    tfidf.ChunkProvider
	Tokenizer *tokenize.Tokenizer
	Provider  llm.Provider
	Config    Config
}

// NewEngine builds an Engine with a default tokenizer if tok is nil.
func NewEngine(store *objstore.Store, chunks tfidf.ChunkProvider, provider llm.Provider, cfg Config, tok *tokenize.Tokenizer) *Engine {
	if tok == nil {
		tok = tokenize.New()
	}
	return &Engine{Store: store, Chunks: chunks, Tokenizer: tok, Provider: provider, Config: cfg.withDefaults()}
}

// Run executes one full turn of the pipeline (spec §4.F): keyword
// extraction, TF-IDF retrieval, LLM re-rank, then answer generation.
// Cancellation is cooperative — if ctx is cancelled mid-flight, Run
// returns ctx.Err() and nothing is written back to the repository, since
// query is read-only over the object store.
func (e *Engine) Run(ctx context.Context, q string, hist History) (QueryTurn, error) {
	if err := ctx.Err(); err != nil {
		return QueryTurn{}, err
	}

	byUid, err := e.chunksByUid()
	if err != nil {
		return QueryTurn{}, err
	}

	kw := extractKeywords(ctx, e.Provider, e.Config, q, hist)

	results, err := e.retrieve(kw)
	if err != nil {
		return QueryTurn{}, err
	}
	top := resolve(results, byUid, e.Config.K1)

	if err := ctx.Err(); err != nil {
		return QueryTurn{}, err
	}

	picked, rerankErr := rerank(ctx, e.Provider, e.Config, q, top)
	if rerankErr != nil {
		picked = truncate(top, e.Config.K2)
	}

	if err := ctx.Err(); err != nil {
		return QueryTurn{}, err
	}

	answer, err := generateAnswer(ctx, e.Provider, e.Config, q, hist, picked)
	if err != nil {
		return QueryTurn{}, err
	}

	return QueryTurn{
		Query:    q,
		Response: TurnResponse{Response: answer, RetrievedChunks: picked},
	}, nil
}

// retrieve scores every chunk against kw, using the inverted index when
// configured and present, falling back to a full scan otherwise (spec
// §4.E "Scan mode" / "Inverted-index mode").
func (e *Engine) retrieve(kw tfidf.Keywords) ([]tfidf.Result, error) {
	if e.Config.UseInvertedIndex {
		idx, err := tfidf.BuildII(e.Store, e.Chunks, e.Tokenizer)
		if err != nil {
			return nil, err
		}
		return idx.Query(kw, e.Tokenizer), nil
	}
	return tfidf.Scan(e.Chunks, kw, e.Tokenizer)
}

func (e *Engine) chunksByUid() (map[uidkit.Uid]chunkmodel.Chunk, error) {
	chunks, err := e.Chunks.AllChunks()
	if err != nil {
		return nil, err
	}
	byUid := make(map[uidkit.Uid]chunkmodel.Chunk, len(chunks))
	for _, c := range chunks {
		byUid[c.Uid] = c
	}
	return byUid, nil
}

// resolve maps scored results back to full chunks, in score order,
// keeping at most k1.
func resolve(results []tfidf.Result, byUid map[uidkit.Uid]chunkmodel.Chunk, k1 int) []chunkmodel.Chunk {
	out := make([]chunkmodel.Chunk, 0, len(results))
	for _, r := range results {
		if len(out) >= k1 && k1 > 0 {
			break
		}
		c, ok := byUid[r.Uid]
		if !ok {
			continue
		}
		out = append(out, c)
	}
	return out
}
