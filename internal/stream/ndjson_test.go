package stream_test

import (
	"bytes"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/flightdeals/internal/models"
	"github.com/dharmasatrya/flightdeals/internal/stream"
)

func TestWriter_OneLinePerEventAndFlush(t *testing.T) {
	rec := httptest.NewRecorder()
	stream.SetHeaders(rec.Header())
	w := stream.NewWriter(rec)

	require.NoError(t, w.Send(models.NewProgress(0, 2, "Starting search...")))
	require.NoError(t, w.Send(models.NewProgress(2, 2, "Searched 2 of 2 combinations...")))

	assert.True(t, rec.Flushed)
	assert.Equal(t, stream.ContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))

	lines := strings.Split(strings.TrimSuffix(rec.Body.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"type":"progress","completed":0,"total":2,"percentage":0,"message":"Starting search..."}`, lines[0])
}

func encode(t *testing.T, events ...any) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := stream.NewWriter(&buf)
	for _, e := range events {
		require.NoError(t, w.Send(e))
	}
	return buf.Bytes()
}

func drain(t *testing.T, d *stream.Decoder) []stream.Event {
	t.Helper()
	var out []stream.Event
	for {
		ev, err := d.Next()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, ev)
	}
}

func TestDecoder_PartialReads(t *testing.T) {
	payload := encode(t,
		models.NewProgress(0, 1, "Starting search..."),
		models.NewProgress(1, 1, "Searched 1 of 1 combinations..."),
		models.RoundTripComplete{Type: models.EventComplete, Deals: []models.Deal{{DestinationCode: "MCO", Price: 210, Direct: true}}, TotalFound: 1},
	)

	readers := map[string]io.Reader{
		"whole":    bytes.NewReader(payload),
		"one byte": iotest.OneByteReader(bytes.NewReader(payload)),
		"half":     iotest.HalfReader(bytes.NewReader(payload)),
	}

	for name, r := range readers {
		t.Run(name, func(t *testing.T) {
			events := drain(t, stream.NewDecoder(r))
			require.Len(t, events, 3)
			assert.Equal(t, models.EventProgress, events[0].Type)
			assert.Equal(t, models.EventComplete, events[2].Type)

			var done models.RoundTripComplete
			require.NoError(t, events[2].Decode(&done))
			require.Len(t, done.Deals, 1)
			assert.Equal(t, 210.0, done.Deals[0].Price)
		})
	}
}

func TestDecoder_BlankLinesAndUnterminatedTail(t *testing.T) {
	d := stream.NewDecoder(strings.NewReader("\n{\"type\":\"progress\"}\n\n{\"type\":\"complete\"}"))
	events := drain(t, d)
	require.Len(t, events, 2)
	assert.Equal(t, models.EventComplete, events[1].Type)
}

func TestDecoder_TruncatedStream(t *testing.T) {
	d := stream.NewDecoder(strings.NewReader("{\"type\":\"progress\"}\n{\"type\":\"comp"))

	ev, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, models.EventProgress, ev.Type)

	_, err = d.Next()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestDecoder_MalformedLine(t *testing.T) {
	d := stream.NewDecoder(strings.NewReader("not json\n"))
	_, err := d.Next()
	assert.Error(t, err)
}
