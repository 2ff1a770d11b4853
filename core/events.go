package core

import "time"

// Event represents any research stream event
type Event interface {
	EventType() EventType
}

// JobEvent is implemented by every event that belongs to a single job.
// CompleteEvent is the only event that does not implement it.
type JobEvent interface {
	Event
	Job() int
}

// Now returns the current time as epoch milliseconds, the timestamp
// representation carried by every event.
func Now() int64 {
	return time.Now().UnixMilli()
}

// SearchingEvent signals that a job started a web search
type SearchingEvent struct {
	JobID     int
	ItemID    string
	Sequence  int64
	Timestamp int64
}

func (e SearchingEvent) EventType() EventType {
	return EventTypeSearching
}

func (e SearchingEvent) Job() int {
	return e.JobID
}

// SearchDoneEvent signals that a job's web search finished
type SearchDoneEvent struct {
	JobID     int
	ItemID    string
	Timestamp int64
}

func (e SearchDoneEvent) EventType() EventType {
	return EventTypeSearchDone
}

func (e SearchDoneEvent) Job() int {
	return e.JobID
}

// ContentEvent carries an incremental chunk of a job's answer text
type ContentEvent struct {
	JobID     int
	Text      string
	Timestamp int64
}

func (e ContentEvent) EventType() EventType {
	return EventTypeContent
}

func (e ContentEvent) Job() int {
	return e.JobID
}

// TextDoneEvent signals that one output item of a job finished streaming
type TextDoneEvent struct {
	JobID     int
	ItemID    string
	Timestamp int64
}

func (e TextDoneEvent) EventType() EventType {
	return EventTypeTextDone
}

func (e TextDoneEvent) Job() int {
	return e.JobID
}

// JobDoneEvent signals that a job's sequence ended naturally
type JobDoneEvent struct {
	JobID     int
	Timestamp int64
}

func (e JobDoneEvent) EventType() EventType {
	return EventTypeJobDone
}

func (e JobDoneEvent) Job() int {
	return e.JobID
}

// JobErrorEvent reports an unrecoverable fault of a single job.
// It is non-fatal to the run; the remaining jobs keep streaming.
type JobErrorEvent struct {
	JobID     int
	Message   string
	Timestamp int64
}

func (e JobErrorEvent) EventType() EventType {
	return EventTypeJobError
}

func (e JobErrorEvent) Job() int {
	return e.JobID
}

// CompleteEvent signals that every job of the run has terminated.
// Emitted exactly once, after the last JobDoneEvent or JobErrorEvent.
type CompleteEvent struct {
	Timestamp int64
}

func (e CompleteEvent) EventType() EventType {
	return EventTypeComplete
}
