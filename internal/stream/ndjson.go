package stream

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const ContentType = "application/x-ndjson"

// SetHeaders prepares an HTTP response for an ndjson event stream.
func SetHeaders(h http.Header) {
	h.Set("Content-Type", ContentType)
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Content-Type-Options", "nosniff")
}

// Writer emits one JSON value per line and flushes after each, so the
// client sees every event as soon as it is produced.
type Writer struct {
	w       io.Writer
	flusher http.Flusher
}

func NewWriter(w io.Writer) *Writer {
	f, _ := w.(http.Flusher)
	return &Writer{w: w, flusher: f}
}

func (w *Writer) Send(event any) error {
	b, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	b = append(b, '\n')
	if _, err := w.w.Write(b); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	if w.flusher != nil {
		w.flusher.Flush()
	}
	return nil
}

// Event is one decoded line. Raw holds the full JSON object.
type Event struct {
	Type string
	Raw  json.RawMessage
}

func (e Event) Decode(v any) error {
	return json.Unmarshal(e.Raw, v)
}

// Decoder reads an ndjson stream regardless of how the bytes were split
// across network reads. A partial line is held until its newline arrives.
type Decoder struct {
	r *bufio.Reader
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Next returns the next event, or io.EOF once the stream ends cleanly.
// A final line without a newline is accepted if it parses; otherwise the
// stream was cut short and io.ErrUnexpectedEOF is returned.
func (d *Decoder) Next() (Event, error) {
	for {
		line, err := d.r.ReadBytes('\n')
		atEOF := errors.Is(err, io.EOF)
		if err != nil && !atEOF {
			return Event{}, err
		}

		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			if atEOF {
				return Event{}, io.EOF
			}
			continue
		}

		ev, perr := parse(line)
		if perr != nil {
			if atEOF {
				return Event{}, io.ErrUnexpectedEOF
			}
			return Event{}, perr
		}
		return ev, nil
	}
}

func parse(line []byte) (Event, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(line, &head); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	return Event{Type: head.Type, Raw: json.RawMessage(bytes.Clone(line))}, nil
}
