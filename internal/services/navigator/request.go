package navigator

import (
	"context"
	"sync"
)

// Outcome is the terminal state of a Request.
type Outcome int

const (
	// OutcomePending means the request has not completed.
	OutcomePending Outcome = iota
	// OutcomeApplied means the response replaced the view.
	OutcomeApplied
	// OutcomeDiscarded means a later request superseded this one.
	OutcomeDiscarded
	// OutcomeFailed means the fallback was shown.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeDiscarded:
		return "discarded"
	case OutcomeFailed:
		return "failed"
	default:
		return "pending"
	}
}

// BootID is the id of the initial embedded delivery. It is always current.
const BootID uint64 = 0

// Request is one sequenced page fetch.
type Request struct {
	ID    uint64
	Route string
	// Path is the address path reported to analytics.
	Path string

	once    sync.Once
	done    chan struct{}
	outcome Outcome
	err     error
}

func newRequest(id uint64, route, path string) *Request {
	return &Request{ID: id, Route: route, Path: path, done: make(chan struct{})}
}

// Done is closed once the request reaches a terminal outcome.
func (r *Request) Done() <-chan struct{} {
	return r.done
}

// Outcome returns the terminal outcome, or OutcomePending.
func (r *Request) Outcome() Outcome {
	select {
	case <-r.done:
		return r.outcome
	default:
		return OutcomePending
	}
}

// Err returns the fetch failure behind a Failed or failed-then-Discarded
// request.
func (r *Request) Err() error {
	select {
	case <-r.done:
		return r.err
	default:
		return nil
	}
}

// Wait blocks until the request completes or ctx ends.
func (r *Request) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-r.done:
		return r.outcome, r.err
	case <-ctx.Done():
		return OutcomePending, ctx.Err()
	}
}

func (r *Request) finish(outcome Outcome, err error) {
	r.once.Do(func() {
		r.outcome = outcome
		r.err = err
		close(r.done)
	})
}
