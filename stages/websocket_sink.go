package stages

import (
	"context"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/creastat/research/core"
	"github.com/creastat/research/protocol"
)

// WebSocketSinkConfig holds WebSocket sink configuration
type WebSocketSinkConfig struct {
	Conn *websocket.Conn

	// Cancel cancels the run when the connection fails
	Cancel context.CancelFunc

	RunID  string
	Logger zerolog.Logger
}

// WebSocketSink sends the merged event stream to a WebSocket connection,
// one text message per frame, in arrival order. Same contract as the SSE
// sink over a different transport.
type WebSocketSink struct {
	config WebSocketSinkConfig
}

// NewWebSocketSink creates a new WebSocket sink
func NewWebSocketSink(config WebSocketSinkConfig) *WebSocketSink {
	return &WebSocketSink{config: config}
}

// Name returns the sink name
func (ws *WebSocketSink) Name() string {
	return "websocket_sink"
}

// Process reads events from the input channel and sends them to the
// WebSocket connection until the channel closes, the context is
// cancelled, or the connection fails.
func (ws *WebSocketSink) Process(ctx context.Context, input <-chan core.Event) error {
	logger := ws.config.Logger.With().Str("sink", ws.Name()).Str("run_id", ws.config.RunID).Logger()

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
				return ws.abort(input, err)
			}

			if err := ws.config.Conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				logger.Warn().Err(err).Msg("websocket write failed")
				return ws.abort(input, err)
			}

			logger.Debug().Str("type", string(event.EventType())).Msg("frame sent")
		}
	}
}

func (ws *WebSocketSink) abort(input <-chan core.Event, cause error) error {
	if frame := protocol.EncodeErrorFrame("stream aborted"); frame != nil {
		ws.config.Conn.WriteMessage(websocket.TextMessage, frame)
	}
	if ws.config.Cancel != nil {
		ws.config.Cancel()
	}
	for range input {
		// Drain remaining events
	}
	return cause
}
