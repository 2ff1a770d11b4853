package research

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/creastat/research/core"
)

// Mux merges the event sequences of N producers into a single stream
// ordered by arrival, terminated by exactly one CompleteEvent.
//
// The correctness-critical invariant: each live producer has exactly one
// outstanding Next call at any instant. A producer's replacement request
// is issued only after its previous event has been emitted downstream,
// so two requests to the same producer can never overlap and events can
// never be dropped or duplicated within a producer.
type Mux struct {
	logger zerolog.Logger
}

// NewMux creates a multiplexer
func NewMux(logger zerolog.Logger) *Mux {
	return &Mux{logger: logger}
}

// arrival is one settled Next call: the resolved event or the error that
// ended the producer's sequence.
type arrival struct {
	job   int
	event core.Event
	err   error
}

// Merge starts one merged run over the given producers and returns its
// output stream. The stream is unbuffered: the multiplexer pulls from
// producers exactly as fast as the caller consumes, so downstream
// backpressure propagates to the producers. The channel is closed after
// CompleteEvent, or without it if ctx is cancelled first.
func (m *Mux) Merge(ctx context.Context, producers []core.Producer) <-chan core.Event {
	output := make(chan core.Event)
	go m.run(ctx, producers, output)
	return output
}

func (m *Mux) run(ctx context.Context, producers []core.Producer, output chan<- core.Event) {
	defer close(output)

	// pending maps each live job id to its producer. A producer in this
	// map always has exactly one outstanding Next call; it is removed
	// the moment that call settles with an error and never reinserted.
	pending := make(map[int]core.Producer, len(producers))
	arrivals := make(chan arrival)

	for _, p := range producers {
		pending[p.ID()] = p
		m.request(ctx, p, arrivals)
	}

	defer func() {
		for _, p := range pending {
			if err := p.Close(); err != nil {
				m.logger.Warn().Int("job", p.ID()).Err(err).Msg("producer close failed")
			}
		}
	}()

	for len(pending) > 0 {
		var arr arrival
		select {
		case <-ctx.Done():
			return
		case arr = <-arrivals:
		}

		p := pending[arr.job]
		if arr.err != nil {
			// Sequence exhausted or failed terminally. No replacement
			// request; the working set shrinks monotonically.
			delete(pending, arr.job)
			if err := p.Close(); err != nil {
				m.logger.Warn().Int("job", arr.job).Err(err).Msg("producer close failed")
			}
			if !errors.Is(arr.err, core.ErrDone) && !errors.Is(arr.err, context.Canceled) {
				m.logger.Warn().Int("job", arr.job).Err(arr.err).Msg("producer ended abnormally")
			}
			continue
		}

		select {
		case <-ctx.Done():
			return
		case output <- arr.event:
		}

		// Only after the event is emitted does the producer get a new
		// outstanding request. Issuing it any earlier would allow two
		// overlapping Next calls on one producer.
		m.request(ctx, p, arrivals)
	}

	select {
	case <-ctx.Done():
	case output <- core.CompleteEvent{Timestamp: core.Now()}:
	}
}

// request issues the producer's single outstanding Next call. The
// goroutine settles even when the run is cancelled before the arrival
// is consumed.
func (m *Mux) request(ctx context.Context, p core.Producer, arrivals chan<- arrival) {
	go func() {
		event, err := p.Next(ctx)
		select {
		case arrivals <- arrival{job: p.ID(), event: event, err: err}:
		case <-ctx.Done():
		}
	}()
}
