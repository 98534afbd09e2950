package llm

import (
	"context"
	"errors"
	"net"
	"net/url"

	"github.com/ragit-kb/ragit/internal/ragiterr"
)

// Resilient wraps a Provider with the retry/backoff policy and circuit
// breaker spec §4.F asks for around model calls, rather than leaving
// each concrete provider to reimplement its own retry loop.
type Resilient struct {
	inner   Provider
	retry   ragiterr.RetryConfig
	breaker *ragiterr.CircuitBreaker
}

var _ Provider = (*Resilient)(nil)

// NewResilient builds a Resilient around inner using cfg's retry policy
// and a fresh circuit breaker named after inner.
func NewResilient(inner Provider, cfg ragiterr.RetryConfig) *Resilient {
	return &Resilient{
		inner:   inner,
		retry:   cfg,
		breaker: ragiterr.NewCircuitBreaker(inner.Name()),
	}
}

func (r *Resilient) Name() string { return r.inner.Name() }

func (r *Resilient) Available(ctx context.Context) bool { return r.inner.Available(ctx) }

// Send retries transient failures (network errors, request timeouts)
// through the breaker; a validation or context-cancellation error is
// never retried.
func (r *Resilient) Send(ctx context.Context, req Request) (Response, error) {
	var resp Response
	err := ragiterr.Retry(ctx, r.retry, isRetryable, func() error {
		return r.breaker.Execute(func() error {
			var sendErr error
			resp, sendErr = r.inner.Send(ctx, req)
			return sendErr
		})
	})
	return resp, err
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ragiterr.ErrCircuitOpen) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
