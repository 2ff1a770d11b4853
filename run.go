package research

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/creastat/research/core"
)

// Run owns one multiplexer run: a fixed set of producers, opened when
// the run is built and released when their sequences end or the run is
// cancelled.
type Run struct {
	id        string
	producers []core.Producer
	mux       *Mux
	logger    zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// ID returns the run's identifier
func (r *Run) ID() string {
	return r.id
}

// Jobs returns the number of producers in the run
func (r *Run) Jobs() int {
	return len(r.producers)
}

// Execute starts the run and returns its merged output stream. The
// stream interleaves all producers' events in arrival order and ends
// with a single CompleteEvent once every producer has terminated.
func (r *Run) Execute(ctx context.Context) <-chan core.Event {
	runCtx, cancel := context.WithCancel(ctx)

	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()

	r.logger.Info().Str("run_id", r.id).Int("jobs", len(r.producers)).Msg("run started")
	return r.mux.Merge(runCtx, r.producers)
}

// Cancel cancels the run. Every producer with an outstanding request is
// cancelled; their in-flight Next calls settle promptly.
func (r *Run) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
	}
}

// RunBuilder assembles runs with a fluent API
type RunBuilder struct {
	queries []string
	source  core.Source
	logger  zerolog.Logger
}

// NewBuilder creates a run builder
func NewBuilder() *RunBuilder {
	return &RunBuilder{
		logger: zerolog.Nop(),
	}
}

// WithSource sets the producer source
func (b *RunBuilder) WithSource(source core.Source) *RunBuilder {
	b.source = source
	return b
}

// WithLogger sets the run logger
func (b *RunBuilder) WithLogger(logger zerolog.Logger) *RunBuilder {
	b.logger = logger
	return b
}

// AddQuery appends one query to the run
func (b *RunBuilder) AddQuery(query string) *RunBuilder {
	b.queries = append(b.queries, query)
	return b
}

// WithQueries sets the full query list
func (b *RunBuilder) WithQueries(queries []string) *RunBuilder {
	b.queries = queries
	return b
}

// Build validates the request and opens one producer per query. Job ids
// are assigned densely in query order, 0..N-1. If any producer fails to
// open, the ones already opened are closed and the build fails.
func (b *RunBuilder) Build(ctx context.Context) (*Run, error) {
	if err := ValidateQueries(b.queries); err != nil {
		return nil, err
	}
	if b.source == nil {
		return nil, fmt.Errorf("run builder: source must be set")
	}

	producers := make([]core.Producer, 0, len(b.queries))
	for job, query := range b.queries {
		p, err := b.source.Open(ctx, query, job)
		if err != nil {
			for _, opened := range producers {
				opened.Close()
			}
			return nil, fmt.Errorf("open producer for query %d: %w", job, err)
		}
		producers = append(producers, p)
	}

	return &Run{
		id:        uuid.NewString(),
		producers: producers,
		mux:       NewMux(b.logger),
		logger:    b.logger,
	}, nil
}
