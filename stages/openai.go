package stages

import (
	"context"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/ssestream"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/rs/zerolog"

	"github.com/creastat/research/core"
)

// SearchSourceConfig holds OpenAI research source configuration
type SearchSourceConfig struct {
	Client openai.Client
	Model  string
	Logger zerolog.Logger
}

// SearchSource opens producers backed by the OpenAI Responses API with
// the web search tool. Each producer wraps one streaming response.
type SearchSource struct {
	config SearchSourceConfig
}

// NewSearchSource creates an OpenAI-backed producer source
func NewSearchSource(config SearchSourceConfig) *SearchSource {
	return &SearchSource{config: config}
}

// Open implements core.Source
func (s *SearchSource) Open(ctx context.Context, query string, job int) (core.Producer, error) {
	stream := s.config.Client.Responses.NewStreaming(ctx, responses.ResponseNewParams{
		Model: shared.ResponsesModel(s.config.Model),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(query),
		},
		Tools: []responses.ToolUnionParam{
			{
				OfWebSearchPreview: &responses.WebSearchToolParam{
					Type: responses.WebSearchToolTypeWebSearchPreview,
				},
			},
		},
	})

	s.config.Logger.Debug().Int("job", job).Str("query", query).Msg("opened research job")

	return &searchJob{
		job:    job,
		stream: stream,
		logger: s.config.Logger,
	}, nil
}

// searchJob adapts one streaming response into the producer contract.
// The multiplexer never issues overlapping Next calls, so no locking is
// needed around the stream cursor.
type searchJob struct {
	job    int
	stream *ssestream.Stream[responses.ResponseStreamEventUnion]
	logger zerolog.Logger

	// ended is set once the terminal JobDoneEvent or JobErrorEvent has
	// been yielded; every Next after that returns ErrDone.
	ended bool

	closeOnce sync.Once
	closeErr  error
}

// ID implements core.Producer
func (j *searchJob) ID() int {
	return j.job
}

// Next implements core.Producer. It advances the underlying response
// stream until it reaches an event with a stream-level mapping, skipping
// service events that have none.
func (j *searchJob) Next(ctx context.Context) (core.Event, error) {
	if j.ended {
		return nil, core.ErrDone
	}

	for j.stream.Next() {
		switch ev := j.stream.Current().AsAny().(type) {
		case responses.ResponseWebSearchCallInProgressEvent:
			return core.SearchingEvent{
				JobID:     j.job,
				ItemID:    ev.ItemID,
				Sequence:  ev.SequenceNumber,
				Timestamp: core.Now(),
			}, nil

		case responses.ResponseWebSearchCallCompletedEvent:
			return core.SearchDoneEvent{
				JobID:     j.job,
				ItemID:    ev.ItemID,
				Timestamp: core.Now(),
			}, nil

		case responses.ResponseTextDeltaEvent:
			return core.ContentEvent{
				JobID:     j.job,
				Text:      ev.Delta,
				Timestamp: core.Now(),
			}, nil

		case responses.ResponseTextDoneEvent:
			return core.TextDoneEvent{
				JobID:     j.job,
				ItemID:    ev.ItemID,
				Timestamp: core.Now(),
			}, nil

		case responses.ResponseErrorEvent:
			j.ended = true
			j.logger.Warn().Int("job", j.job).Str("message", ev.Message).Msg("research job failed")
			return core.JobErrorEvent{
				JobID:     j.job,
				Message:   ev.Message,
				Timestamp: core.Now(),
			}, nil

		default:
			// Lifecycle events with no stream-level mapping.
			continue
		}
	}

	j.ended = true

	if err := j.stream.Err(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		j.logger.Warn().Int("job", j.job).Err(err).Msg("research job stream failed")
		return core.JobErrorEvent{
			JobID:     j.job,
			Message:   err.Error(),
			Timestamp: core.Now(),
		}, nil
	}

	return core.JobDoneEvent{
		JobID:     j.job,
		Timestamp: core.Now(),
	}, nil
}

// Close implements core.Producer
func (j *searchJob) Close() error {
	j.closeOnce.Do(func() {
		j.closeErr = j.stream.Close()
	})
	return j.closeErr
}
