package stages

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/openai/openai-go/packages/ssestream"
	"github.com/openai/openai-go/responses"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creastat/research/core"
)

func sseEvent(eventType, data string) string {
	return "event: " + eventType + "\ndata: " + data + "\n\n"
}

func newResponseStream(body io.Reader) *ssestream.Stream[responses.ResponseStreamEventUnion] {
	res := &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"text/event-stream"}},
		Body:       io.NopCloser(body),
	}
	return ssestream.NewStream[responses.ResponseStreamEventUnion](ssestream.NewDecoder(res), nil)
}

func TestSearchJobMapsServiceEvents(t *testing.T) {
	body := strings.Join([]string{
		sseEvent("response.created",
			`{"type":"response.created","sequence_number":0}`),
		sseEvent("response.web_search_call.in_progress",
			`{"type":"response.web_search_call.in_progress","item_id":"ws_1","output_index":0,"sequence_number":1}`),
		sseEvent("response.web_search_call.completed",
			`{"type":"response.web_search_call.completed","item_id":"ws_1","output_index":0,"sequence_number":2}`),
		sseEvent("response.output_text.delta",
			`{"type":"response.output_text.delta","item_id":"msg_1","output_index":1,"content_index":0,"delta":"go is","sequence_number":3}`),
		sseEvent("response.output_text.delta",
			`{"type":"response.output_text.delta","item_id":"msg_1","output_index":1,"content_index":0,"delta":" fun","sequence_number":4}`),
		sseEvent("response.output_text.done",
			`{"type":"response.output_text.done","item_id":"msg_1","output_index":1,"content_index":0,"text":"go is fun","sequence_number":5}`),
	}, "")

	job := &searchJob{job: 3, stream: newResponseStream(strings.NewReader(body)), logger: zerolog.Nop()}
	ctx := context.Background()

	event, err := job.Next(ctx)
	require.NoError(t, err)
	searching, ok := event.(core.SearchingEvent)
	require.True(t, ok, "got %T", event)
	assert.Equal(t, 3, searching.JobID)
	assert.Equal(t, "ws_1", searching.ItemID)
	assert.EqualValues(t, 1, searching.Sequence)

	event, err = job.Next(ctx)
	require.NoError(t, err)
	searchDone, ok := event.(core.SearchDoneEvent)
	require.True(t, ok, "got %T", event)
	assert.Equal(t, "ws_1", searchDone.ItemID)

	var text strings.Builder
	for i := 0; i < 2; i++ {
		event, err = job.Next(ctx)
		require.NoError(t, err)
		content, ok := event.(core.ContentEvent)
		require.True(t, ok, "got %T", event)
		text.WriteString(content.Text)
	}
	assert.Equal(t, "go is fun", text.String())

	event, err = job.Next(ctx)
	require.NoError(t, err)
	_, ok = event.(core.TextDoneEvent)
	require.True(t, ok, "got %T", event)

	event, err = job.Next(ctx)
	require.NoError(t, err)
	jobDone, ok := event.(core.JobDoneEvent)
	require.True(t, ok, "got %T", event)
	assert.Equal(t, 3, jobDone.JobID)

	// The sequence is not restartable.
	for i := 0; i < 2; i++ {
		_, err = job.Next(ctx)
		assert.ErrorIs(t, err, core.ErrDone)
	}
}

// brokenReader fails after its prefix is consumed
type brokenReader struct {
	prefix io.Reader
}

func (r *brokenReader) Read(p []byte) (int, error) {
	n, err := r.prefix.Read(p)
	if err == io.EOF {
		return n, errors.New("connection reset")
	}
	return n, err
}

// A service fault yields exactly one job error event, then the sequence ends.
func TestSearchJobServiceFault(t *testing.T) {
	body := &brokenReader{prefix: strings.NewReader(sseEvent("response.output_text.delta",
		`{"type":"response.output_text.delta","item_id":"msg_1","output_index":0,"content_index":0,"delta":"par","sequence_number":1}`))}

	job := &searchJob{job: 0, stream: newResponseStream(body), logger: zerolog.Nop()}
	ctx := context.Background()

	event, err := job.Next(ctx)
	require.NoError(t, err)
	require.IsType(t, core.ContentEvent{}, event)

	event, err = job.Next(ctx)
	require.NoError(t, err)
	jobError, ok := event.(core.JobErrorEvent)
	require.True(t, ok, "got %T", event)
	assert.Contains(t, jobError.Message, "connection reset")

	_, err = job.Next(ctx)
	assert.ErrorIs(t, err, core.ErrDone)
}
