package stages

import (
	"context"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/creastat/research/core"
	"github.com/creastat/research/protocol"
)

// SSESinkConfig holds SSE sink configuration
type SSESinkConfig struct {
	Writer io.Writer

	// Flusher, when set, is flushed after every frame so an available
	// frame is never delayed by response buffering.
	Flusher http.Flusher

	// Cancel cancels the run when the transport fails, so no producer
	// is left with an outstanding request feeding a dead stream.
	Cancel context.CancelFunc

	RunID  string
	Logger zerolog.Logger
}

// SSESink writes the merged event stream to an SSE response, one frame
// per event, strictly in arrival order. It pulls the next event only
// after the previous frame has been written, so transport backpressure
// propagates all the way to the producers.
type SSESink struct {
	config SSESinkConfig
}

// NewSSESink creates a new SSE sink
func NewSSESink(config SSESinkConfig) *SSESink {
	return &SSESink{config: config}
}

// Name returns the sink name
func (s *SSESink) Name() string {
	return "sse_sink"
}

// Process reads events from the input channel and writes them to the
// transport until the channel closes, the context is cancelled, or the
// transport fails.
func (s *SSESink) Process(ctx context.Context, input <-chan core.Event) error {
	logger := s.config.Logger.With().Str("sink", s.Name()).Str("run_id", s.config.RunID).Logger()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-input:
			if !ok {
				logger.Debug().Msg("input channel closed")
				return nil
			}

			frame, err := protocol.EncodeFrame(event)
			if err != nil {
				logger.Error().Err(err).Msg("failed to encode frame")
				return s.abort(input, err)
			}

			if _, err := s.config.Writer.Write(frame); err != nil {
				logger.Warn().Err(err).Msg("transport write failed")
				return s.abort(input, err)
			}
			if s.config.Flusher != nil {
				s.config.Flusher.Flush()
			}

			logger.Debug().Str("type", string(event.EventType())).Msg("frame written")
		}
	}
}

// abort handles a fatal transport or encoding error: best-effort error
// frame, cancel the run, then drain the input so the multiplexer's
// pending emit settles.
func (s *SSESink) abort(input <-chan core.Event, cause error) error {
	if frame := protocol.EncodeErrorFrame("stream aborted"); frame != nil {
		s.config.Writer.Write(frame)
	}
	if s.config.Cancel != nil {
		s.config.Cancel()
	}
	for range input {
		// Drain remaining events
	}
	return cause
}
