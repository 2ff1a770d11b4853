package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/creastat/research/core"
)

// FrameDecoder reassembles wire frames from a byte stream that may be
// split at arbitrary boundaries and decodes each complete frame into an
// event. It is the consumer-side counterpart of EncodeFrame.
type FrameDecoder struct {
	buf []byte
}

// NewFrameDecoder creates an empty frame decoder
func NewFrameDecoder() *FrameDecoder {
	return &FrameDecoder{}
}

// Feed appends a transport chunk to the decoder's buffer and returns
// every event whose frame completed with this chunk, in wire order.
// Partial trailing data stays buffered for the next call.
func (d *FrameDecoder) Feed(chunk []byte) ([]core.Event, error) {
	d.buf = append(d.buf, chunk...)

	var events []core.Event
	for {
		end := bytes.Index(d.buf, []byte(frameTerminator))
		if end < 0 {
			return events, nil
		}

		raw := d.buf[:end]
		d.buf = d.buf[end+len(frameTerminator):]

		event, err := decodeFrame(raw)
		if err != nil {
			return events, err
		}
		events = append(events, event)
	}
}

// Pending reports how many buffered bytes are waiting for a terminator
func (d *FrameDecoder) Pending() int {
	return len(d.buf)
}

func decodeFrame(raw []byte) (core.Event, error) {
	if !bytes.HasPrefix(raw, []byte(FrameMarker)) {
		return nil, fmt.Errorf("frame missing %q marker", FrameMarker)
	}

	var w WireEvent
	if err := json.Unmarshal(raw[len(FrameMarker):], &w); err != nil {
		return nil, fmt.Errorf("decode frame body: %w", err)
	}
	return WireToEvent(&w)
}

// Dispatcher routes decoded events to per-job handlers. The complete
// event goes to a single run-level handler; every other event is routed
// by job id, and events for unknown jobs are dropped.
type Dispatcher struct {
	handlers   map[int]func(core.JobEvent)
	onComplete func(core.CompleteEvent)
}

// NewDispatcher creates a dispatcher with no registered handlers
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[int]func(core.JobEvent)),
	}
}

// HandleJob registers the handler for one job id
func (dp *Dispatcher) HandleJob(job int, fn func(core.JobEvent)) {
	dp.handlers[job] = fn
}

// HandleComplete registers the run-completion handler
func (dp *Dispatcher) HandleComplete(fn func(core.CompleteEvent)) {
	dp.onComplete = fn
}

// Dispatch routes one event. It reports whether a handler consumed it.
func (dp *Dispatcher) Dispatch(event core.Event) bool {
	if complete, ok := event.(core.CompleteEvent); ok {
		if dp.onComplete == nil {
			return false
		}
		dp.onComplete(complete)
		return true
	}

	je, ok := event.(core.JobEvent)
	if !ok {
		return false
	}
	fn, ok := dp.handlers[je.Job()]
	if !ok {
		return false
	}
	fn(je)
	return true
}
