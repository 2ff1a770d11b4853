package protocol

// WireEvent is the JSON representation of a single stream event.
// Job is a pointer so that "complete", the only tag without a job id,
// omits the field entirely instead of encoding job 0.
type WireEvent struct {
	Type      string `json:"type"`
	Job       *int   `json:"job,omitempty"`
	ItemID    string `json:"item,omitempty"`
	Sequence  int64  `json:"seq,omitempty"`
	Text      string `json:"text,omitempty"`
	Message   string `json:"message,omitempty"`
	Timestamp int64  `json:"timestamp"`
}
