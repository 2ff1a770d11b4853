package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/creastat/research/core"
)

// FrameMarker prefixes every frame on the wire.
const FrameMarker = "data: "

// frameTerminator ends every frame. A frame is only complete once the
// terminator has been received, which lets the decoder reassemble frames
// split across transport chunks.
const frameTerminator = "\n\n"

// EncodeFrame serializes one event into a self-delimited wire frame:
// the marker, the JSON body, and a double line terminator.
func EncodeFrame(event core.Event) ([]byte, error) {
	w, err := EventToWire(event)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("marshal %s event: %w", event.EventType(), err)
	}

	frame := make([]byte, 0, len(FrameMarker)+len(body)+len(frameTerminator))
	frame = append(frame, FrameMarker...)
	frame = append(frame, body...)
	frame = append(frame, frameTerminator...)
	return frame, nil
}

// EncodeErrorFrame builds a best-effort frame reporting a run-level
// failure. It carries no job id, so per-job consumer state is untouched.
func EncodeErrorFrame(message string) []byte {
	body, err := json.Marshal(&WireEvent{
		Type:      string(core.EventTypeJobError),
		Message:   message,
		Timestamp: core.Now(),
	})
	if err != nil {
		return nil
	}
	return []byte(FrameMarker + string(body) + frameTerminator)
}
