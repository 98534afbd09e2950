package llm

import "context"

// TestProvider is an in-memory Provider for tests and dry runs: each
// call to Send returns the next entry of Responses, or repeats the last
// one once the list is exhausted. It never makes a network call.
type TestProvider struct {
	NamedAs   string
	Responses []Response
	Err       error

	calls []Request
	next  int
}

var _ Provider = (*TestProvider)(nil)

func NewTestProvider(name string, responses ...Response) *TestProvider {
	return &TestProvider{NamedAs: name, Responses: responses}
}

func (p *TestProvider) Name() string { return p.NamedAs }

func (p *TestProvider) Available(ctx context.Context) bool { return p.Err == nil }

func (p *TestProvider) Send(ctx context.Context, req Request) (Response, error) {
	p.calls = append(p.calls, req)
	if p.Err != nil {
		return Response{}, p.Err
	}
	if len(p.Responses) == 0 {
		return Response{}, nil
	}
	idx := p.next
	if idx >= len(p.Responses) {
		idx = len(p.Responses) - 1
	} else {
		p.next++
	}
	return p.Responses[idx], nil
}

// Calls returns every Request passed to Send, in order, for assertions.
func (p *TestProvider) Calls() []Request { return p.calls }
