package research_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	research "github.com/creastat/research"
	"github.com/creastat/research/core"
	"github.com/creastat/research/protocol"
	"github.com/creastat/research/stages"
)

// listProducer yields a fixed event list, one event per Next
type listProducer struct {
	id     int
	events []core.Event
	pos    int
	closed bool
}

func (p *listProducer) ID() int { return p.id }

func (p *listProducer) Next(ctx context.Context) (core.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.pos >= len(p.events) {
		return nil, core.ErrDone
	}
	event := p.events[p.pos]
	p.pos++
	return event, nil
}

func (p *listProducer) Close() error {
	p.closed = true
	return nil
}

type listSource struct{}

func (listSource) Open(ctx context.Context, query string, job int) (core.Producer, error) {
	return &listProducer{id: job, events: []core.Event{
		core.SearchingEvent{JobID: job, ItemID: fmt.Sprintf("ws_%d", job), Sequence: 1, Timestamp: core.Now()},
		core.SearchDoneEvent{JobID: job, ItemID: fmt.Sprintf("ws_%d", job), Timestamp: core.Now()},
		core.ContentEvent{JobID: job, Text: "answer to " + query, Timestamp: core.Now()},
		core.TextDoneEvent{JobID: job, ItemID: fmt.Sprintf("msg_%d", job), Timestamp: core.Now()},
		core.JobDoneEvent{JobID: job, Timestamp: core.Now()},
	}}, nil
}

// Full chain: builder -> multiplexer -> sink -> wire -> decoder ->
// dispatcher, asserting each job's events arrive intact and in order on
// the consumer side.
func TestResearchRunEndToEnd(t *testing.T) {
	queries := []string{"go scheduler", "channel internals", "gc pacing"}

	run, err := research.NewBuilder().
		WithSource(listSource{}).
		WithQueries(queries).
		WithLogger(zerolog.Nop()).
		Build(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wire bytes.Buffer
	sink := stages.NewSSESink(stages.SSESinkConfig{
		Writer: &wire,
		Cancel: run.Cancel,
		RunID:  run.ID(),
		Logger: zerolog.Nop(),
	})
	require.NoError(t, sink.Process(ctx, run.Execute(ctx)))

	// Consumer side.
	dispatcher := protocol.NewDispatcher()
	perJob := make(map[int][]core.EventType)
	var completed int
	for job := range queries {
		job := job
		dispatcher.HandleJob(job, func(e core.JobEvent) {
			perJob[job] = append(perJob[job], e.EventType())
		})
	}
	dispatcher.HandleComplete(func(core.CompleteEvent) { completed++ })

	decoder := protocol.NewFrameDecoder()
	events, err := decoder.Feed(wire.Bytes())
	require.NoError(t, err)
	for _, event := range events {
		assert.True(t, dispatcher.Dispatch(event), "event %v not dispatched", event)
	}

	wantOrder := []core.EventType{
		core.EventTypeSearching,
		core.EventTypeSearchDone,
		core.EventTypeContent,
		core.EventTypeTextDone,
		core.EventTypeJobDone,
	}
	for job := range queries {
		assert.Equal(t, wantOrder, perJob[job], "job %d order broken", job)
	}
	assert.Equal(t, 1, completed)
	assert.Zero(t, decoder.Pending())
}
