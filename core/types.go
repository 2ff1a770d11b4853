package core

// EventType categorizes research stream events
type EventType string

const (
	EventTypeSearching  EventType = "searching"
	EventTypeSearchDone EventType = "search_done"
	EventTypeContent    EventType = "content"
	EventTypeTextDone   EventType = "text_done"
	EventTypeJobDone    EventType = "job_done"
	EventTypeJobError   EventType = "job_error"
	EventTypeComplete   EventType = "complete"
)

// AllEventTypes lists every event type constant.
func AllEventTypes() []EventType {
	return []EventType{
		EventTypeSearching,
		EventTypeSearchDone,
		EventTypeContent,
		EventTypeTextDone,
		EventTypeJobDone,
		EventTypeJobError,
		EventTypeComplete,
	}
}
