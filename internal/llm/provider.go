// Package llm defines the provider boundary the query and build
// pipelines talk through: every external model API (spec §1 places the
// model API itself out of scope as an external collaborator) is reached
// exclusively via the Provider interface, never called directly from
// query or ingestion code.
package llm

import (
	"context"

	"github.com/ragit-kb/ragit/internal/pdl"
)

// Request is one call to a model: the full turn history plus generation
// parameters. It carries no output schema: callers validate the response
// themselves with internal/schema — Provider only transports bytes.
type Request struct {
	Model       string
	Messages    []pdl.Message
	MaxTokens   int
	Temperature float64
}

// Usage reports token accounting for a single call, the unit the usage
// tracker (spec §9) aggregates by day.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Response is a provider's answer to a Request.
type Response struct {
	Text  string
	Usage Usage
	Model string
}

// Provider is anything that can answer a Request. OpenAiLike and
// Anthropic implementations wrap a concrete HTTP API; Test is an
// in-memory stand-in for tests and dry runs.
type Provider interface {
	Send(ctx context.Context, req Request) (Response, error)
	Name() string
	Available(ctx context.Context) bool
}
