package protocol

import (
	"fmt"

	"github.com/creastat/research/core"
)

// EventToWire converts a stream event to its wire representation
func EventToWire(event core.Event) (*WireEvent, error) {
	switch e := event.(type) {
	case core.SearchingEvent:
		return &WireEvent{
			Type:      string(core.EventTypeSearching),
			Job:       jobRef(e.JobID),
			ItemID:    e.ItemID,
			Sequence:  e.Sequence,
			Timestamp: e.Timestamp,
		}, nil

	case core.SearchDoneEvent:
		return &WireEvent{
			Type:      string(core.EventTypeSearchDone),
			Job:       jobRef(e.JobID),
			ItemID:    e.ItemID,
			Timestamp: e.Timestamp,
		}, nil

	case core.ContentEvent:
		return &WireEvent{
			Type:      string(core.EventTypeContent),
			Job:       jobRef(e.JobID),
			Text:      e.Text,
			Timestamp: e.Timestamp,
		}, nil

	case core.TextDoneEvent:
		return &WireEvent{
			Type:      string(core.EventTypeTextDone),
			Job:       jobRef(e.JobID),
			ItemID:    e.ItemID,
			Timestamp: e.Timestamp,
		}, nil

	case core.JobDoneEvent:
		return &WireEvent{
			Type:      string(core.EventTypeJobDone),
			Job:       jobRef(e.JobID),
			Timestamp: e.Timestamp,
		}, nil

	case core.JobErrorEvent:
		return &WireEvent{
			Type:      string(core.EventTypeJobError),
			Job:       jobRef(e.JobID),
			Message:   e.Message,
			Timestamp: e.Timestamp,
		}, nil

	case core.CompleteEvent:
		return &WireEvent{
			Type:      string(core.EventTypeComplete),
			Timestamp: e.Timestamp,
		}, nil

	default:
		return nil, fmt.Errorf("unknown event type %T", event)
	}
}

// WireToEvent converts a wire representation back to a stream event.
// A job-tagged message that arrives without a job id decodes with job -1
// so that the dispatcher can drop it instead of failing the stream.
func WireToEvent(w *WireEvent) (core.Event, error) {
	switch core.EventType(w.Type) {
	case core.EventTypeSearching:
		return core.SearchingEvent{
			JobID:     jobVal(w.Job),
			ItemID:    w.ItemID,
			Sequence:  w.Sequence,
			Timestamp: w.Timestamp,
		}, nil

	case core.EventTypeSearchDone:
		return core.SearchDoneEvent{
			JobID:     jobVal(w.Job),
			ItemID:    w.ItemID,
			Timestamp: w.Timestamp,
		}, nil

	case core.EventTypeContent:
		return core.ContentEvent{
			JobID:     jobVal(w.Job),
			Text:      w.Text,
			Timestamp: w.Timestamp,
		}, nil

	case core.EventTypeTextDone:
		return core.TextDoneEvent{
			JobID:     jobVal(w.Job),
			ItemID:    w.ItemID,
			Timestamp: w.Timestamp,
		}, nil

	case core.EventTypeJobDone:
		return core.JobDoneEvent{
			JobID:     jobVal(w.Job),
			Timestamp: w.Timestamp,
		}, nil

	case core.EventTypeJobError:
		return core.JobErrorEvent{
			JobID:     jobVal(w.Job),
			Message:   w.Message,
			Timestamp: w.Timestamp,
		}, nil

	case core.EventTypeComplete:
		return core.CompleteEvent{
			Timestamp: w.Timestamp,
		}, nil

	default:
		return nil, fmt.Errorf("unknown wire event type %q", w.Type)
	}
}

func jobRef(job int) *int {
	return &job
}

func jobVal(job *int) int {
	if job == nil {
		return -1
	}
	return *job
}
