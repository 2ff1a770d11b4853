package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	research "github.com/creastat/research"
	"github.com/creastat/research/core"
	"github.com/creastat/research/stages"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// researchRequest is the body of POST /research and the first message
// on the WebSocket variant.
type researchRequest struct {
	Queries []string `json:"queries"`
}

// Server serves research runs over SSE and WebSocket
type Server struct {
	config Config
	source core.Source
	logger zerolog.Logger
}

// NewServer creates a server streaming runs opened from the given source
func NewServer(config Config, source core.Source, logger zerolog.Logger) *Server {
	return &Server{
		config: config,
		source: source,
		logger: logger,
	}
}

// Routes returns the server's HTTP handler
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /research", s.handleResearch)
	mux.HandleFunc("GET /research/ws", s.handleResearchWS)
	return mux
}

// buildRun validates the request and opens one producer per query
func (s *Server) buildRun(ctx context.Context, queries []string) (*research.Run, error) {
	if len(queries) > s.config.MaxQueries {
		return nil, research.ValidationError{
			Message: "request validation failed",
			Details: fmt.Sprintf("at most %d queries allowed, got %d", s.config.MaxQueries, len(queries)),
		}
	}
	return research.NewBuilder().
		WithQueries(queries).
		WithSource(s.source).
		WithLogger(s.logger).
		Build(ctx)
}

// handleResearch streams one run as server-sent events. The response
// stream is server-to-client only; the client's disconnect cancels the
// request context, which cancels every producer.
func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	var req researchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	run, err := s.buildRun(r.Context(), req.Queries)
	if err != nil {
		var verr research.ValidationError
		if errors.As(err, &verr) {
			http.Error(w, verr.Error(), http.StatusBadRequest)
			return
		}
		s.logger.Error().Err(err).Msg("failed to build run")
		http.Error(w, "failed to start research", http.StatusBadGateway)
		return
	}
	defer run.Cancel()

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events := run.Execute(r.Context())
	sink := stages.NewSSESink(stages.SSESinkConfig{
		Writer:  w,
		Flusher: flusher,
		Cancel:  run.Cancel,
		RunID:   run.ID(),
		Logger:  s.logger,
	})

	if err := sink.Process(r.Context(), events); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn().Str("run_id", run.ID()).Err(err).Msg("stream ended abnormally")
		return
	}
	s.logger.Info().Str("run_id", run.ID()).Msg("stream finished")
}

// handleResearchWS streams one run over a WebSocket. The client sends a
// single request message, then only listens; the read pump exists to
// detect disconnects and cancel the run.
func (s *Server) handleResearchWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	var req researchRequest
	if err := conn.ReadJSON(&req); err != nil {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInvalidFramePayloadData, "invalid request"), closeDeadline())
		return
	}

	run, err := s.buildRun(r.Context(), req.Queries)
	if err != nil {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()), closeDeadline())
		return
	}
	defer run.Cancel()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Read pump: no further client messages are expected. A read error
	// means the client went away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	events := run.Execute(ctx)
	sink := stages.NewWebSocketSink(stages.WebSocketSinkConfig{
		Conn:   conn,
		Cancel: cancel,
		RunID:  run.ID(),
		Logger: s.logger,
	})

	if err := sink.Process(ctx, events); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn().Str("run_id", run.ID()).Err(err).Msg("websocket stream ended abnormally")
		return
	}

	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), closeDeadline())
	s.logger.Info().Str("run_id", run.ID()).Msg("websocket stream finished")
}
