package core

import (
	"context"
	"errors"
)

// ErrDone signals the natural end of a producer's event sequence.
var ErrDone = errors.New("sequence done")

// Producer yields one job's lazy, finite event sequence.
//
// The sequence is not restartable: after Next returns ErrDone it returns
// ErrDone forever. Next may suspend for an externally-determined duration
// and must honor ctx: cancelling ctx makes an in-flight Next settle
// promptly. A producer that hits an unrecoverable service fault yields
// exactly one JobErrorEvent and ends its sequence on the following Next;
// it never retries internally.
//
// Callers must not issue overlapping Next calls on the same producer.
type Producer interface {
	// ID returns the producer's job id, stable for the run's lifetime.
	ID() int

	// Next blocks until the sequence yields its next event, ends
	// (ErrDone), or ctx is cancelled.
	Next(ctx context.Context) (Event, error)

	// Close releases resources held by the external collaborator.
	// It is safe to call more than once.
	Close() error
}

// Source opens producers against an external research service. The
// service client is injected here rather than read from process-wide
// state, so runs are testable with fakes.
type Source interface {
	Open(ctx context.Context, query string, job int) (Producer, error)
}
