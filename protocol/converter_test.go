package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creastat/research/core"
)

// Serializing then deserializing a frame yields a value equal to the
// original, for every event variant.
func TestFrameRoundTrip(t *testing.T) {
	events := []core.Event{
		core.SearchingEvent{JobID: 0, ItemID: "ws_1", Sequence: 4, Timestamp: 1700000000001},
		core.SearchDoneEvent{JobID: 1, ItemID: "ws_1", Timestamp: 1700000000002},
		core.ContentEvent{JobID: 2, Text: "partial answer", Timestamp: 1700000000003},
		core.TextDoneEvent{JobID: 0, ItemID: "msg_1", Timestamp: 1700000000004},
		core.JobDoneEvent{JobID: 1, Timestamp: 1700000000005},
		core.JobErrorEvent{JobID: 2, Message: "rate limited", Timestamp: 1700000000006},
		core.CompleteEvent{Timestamp: 1700000000007},
	}

	for _, original := range events {
		t.Run(string(original.EventType()), func(t *testing.T) {
			frame, err := EncodeFrame(original)
			require.NoError(t, err)

			decoder := NewFrameDecoder()
			decoded, err := decoder.Feed(frame)
			require.NoError(t, err)
			require.Len(t, decoded, 1)
			assert.Equal(t, original, decoded[0])
			assert.Zero(t, decoder.Pending())
		})
	}
}

func TestWireCompleteOmitsJob(t *testing.T) {
	w, err := EventToWire(core.CompleteEvent{Timestamp: 42})
	require.NoError(t, err)
	body, err := json.Marshal(w)
	require.NoError(t, err)
	assert.NotContains(t, string(body), `"job"`)
	assert.Contains(t, string(body), `"type":"complete"`)
}

func TestWireJobZeroIsEncoded(t *testing.T) {
	w, err := EventToWire(core.ContentEvent{JobID: 0, Text: "x", Timestamp: 42})
	require.NoError(t, err)
	body, err := json.Marshal(w)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"job":0`)
}

func TestWireToEventUnknownType(t *testing.T) {
	_, err := WireToEvent(&WireEvent{Type: "bogus"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown wire event type")
}

// A job-tagged message without a job id decodes with job -1 so the
// dispatcher drops it instead of failing the stream.
func TestWireToEventMissingJob(t *testing.T) {
	event, err := WireToEvent(&WireEvent{Type: string(core.EventTypeJobError), Message: "stream aborted"})
	require.NoError(t, err)
	je, ok := event.(core.JobEvent)
	require.True(t, ok)
	assert.Equal(t, -1, je.Job())
}
