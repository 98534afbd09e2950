package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ragit-kb/ragit/internal/pdl"
	"github.com/ragit-kb/ragit/internal/ragiterr"
)

func TestTestProvider_ReturnsQueuedResponses(t *testing.T) {
	p := NewTestProvider("fake", Response{Text: "first"}, Response{Text: "second"})

	r1, err := p.Send(context.Background(), Request{Messages: []pdl.Message{pdl.SimpleMessage(pdl.RoleUser, "hi")}})
	if err != nil || r1.Text != "first" {
		t.Fatalf("got %+v, %v", r1, err)
	}

	r2, _ := p.Send(context.Background(), Request{})
	if r2.Text != "second" {
		t.Fatalf("got %+v", r2)
	}

	r3, _ := p.Send(context.Background(), Request{})
	if r3.Text != "second" {
		t.Fatalf("expected last response to repeat, got %+v", r3)
	}

	if len(p.Calls()) != 3 {
		t.Fatalf("expected 3 recorded calls, got %d", len(p.Calls()))
	}
}

func TestResilient_RetriesOnNetworkLikeError(t *testing.T) {
	attempts := 0
	fake := &failNTimesProvider{failures: 2, ok: Response{Text: "done"}, onCall: func() { attempts++ }}

	r := NewResilient(fake, ragiterr.RetryConfig{MaxRetry: 3, SleepBetweenRetries: time.Millisecond, MaxSleep: time.Millisecond})

	resp, err := r.Send(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "done" {
		t.Fatalf("got %+v", resp)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestResilient_DoesNotRetryNonRetryableError(t *testing.T) {
	attempts := 0
	fake := &failNTimesProvider{failures: 100, err: errors.New("bad schema"), onCall: func() { attempts++ }}

	r := NewResilient(fake, ragiterr.RetryConfig{MaxRetry: 3, SleepBetweenRetries: time.Millisecond, MaxSleep: time.Millisecond})

	_, err := r.Send(context.Background(), Request{})
	if err == nil {
		t.Fatalf("expected error")
	}
	if attempts != 1 {
		t.Fatalf("expected a single attempt for a non-retryable error, got %d", attempts)
	}
}

type failNTimesProvider struct {
	failures int
	calls    int
	ok       Response
	err      error
	onCall   func()
}

func (f *failNTimesProvider) Name() string { return "fail-n-times" }

func (f *failNTimesProvider) Available(ctx context.Context) bool { return true }

func (f *failNTimesProvider) Send(ctx context.Context, req Request) (Response, error) {
	if f.onCall != nil {
		f.onCall()
	}
	f.calls++
	if f.calls <= f.failures {
		if f.err != nil {
			return Response{}, f.err
		}
		return Response{}, errConnRefused{}
	}
	return f.ok, nil
}

// errConnRefused mimics the shape net.Error classification looks for
// without depending on an actual socket failure in the test.
type errConnRefused struct{}

func (errConnRefused) Error() string   { return "connection refused" }
func (errConnRefused) Timeout() bool   { return false }
func (errConnRefused) Temporary() bool { return true }
