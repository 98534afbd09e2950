package query

import "github.com/ragit-kb/ragit/internal/chunkmodel"

// TurnResponse is what one pipeline run produces: the generated answer
// plus the chunks that fed it, kept for display and for later turns'
// prompt context (spec §4.F "Multi-turn").
type TurnResponse struct {
	Response        string
	RetrievedChunks []chunkmodel.Chunk
}

// QueryTurn is one exchange in a conversation.
type QueryTurn struct {
	Query    string
	Response TurnResponse
}

// History is the ordered list of prior turns. Retrieved chunks from past
// turns are not re-used by Run automatically; History only supplies
// conversational context to keyword extraction and answer generation.
type History []QueryTurn
