package agent

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/skel-labs/skelbot/internal/logging"
)

var errInvalidJSON = errors.New("invalid JSON in stream record")

// Event names after normalization. The service prefixes names with a
// dotted namespace ("assist.FINAL_RESPONSE"); only the last segment is
// significant.
const (
	eventFinalResponse = "FINAL_RESPONSE"
	eventError         = "ERROR"
)

// contentTypeTextBlock marks a final-response chunk carrying plain text.
const contentTypeTextBlock = "atomic.textblock"

// maxLineSize bounds a single SSE line. Final responses arrive in chunks,
// so one megabyte is generous.
const maxLineSize = 1 << 20

// Payload is the decoded body of one stream event.
type Payload interface {
	isPayload()
}

// FinalResponsePayload carries (a chunk of) the agent's final answer.
type FinalResponsePayload struct {
	ContentType string `json:"content_type"`
	Content     string `json:"content"`
}

func (*FinalResponsePayload) isPayload() {}

// ErrorPayload carries an error reported by the agent. Content is either
// a JSON string or an object with an "error_message" field.
type ErrorPayload struct {
	Content json.RawMessage `json:"content"`
}

func (*ErrorPayload) isPayload() {}

// Message extracts a human-readable error message from the payload.
func (p *ErrorPayload) Message() string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(p.Content, &obj); err == nil {
		if raw, ok := obj["error_message"]; ok {
			var msg string
			if json.Unmarshal(raw, &msg) == nil && msg != "" {
				return msg
			}
		}
		return string(p.Content)
	}
	var s string
	if err := json.Unmarshal(p.Content, &s); err == nil {
		return s
	}
	return string(p.Content)
}

// UnknownPayload is the body of an event the client does not interpret.
type UnknownPayload struct {
	Raw json.RawMessage
}

func (*UnknownPayload) isPayload() {}

// Event is one decoded stream record.
type Event struct {
	// Name is the event name as sent by the service.
	Name string
	// Payload is the decoded data, typed by the normalized name.
	Payload Payload
}

// Decoder turns a line-oriented SSE-framed body into a sequence of
// events. It is a forward-only, single-pass reader: "event:" lines set
// the pending name, "data:" lines accumulate (joined by newlines), a
// blank line terminates the record, and a record still pending at EOF is
// flushed as a final event. Records whose data is not valid JSON are
// logged and dropped; one malformed record never aborts the stream.
type Decoder struct {
	scanner *bufio.Scanner
	name    string
	data    []string
	done    bool
	err     error
}

// NewDecoder creates a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Decoder{scanner: scanner}
}

// Next returns the next decoded event. It reports false when the stream
// is exhausted; check Err afterwards for a transport failure.
func (d *Decoder) Next() (Event, bool) {
	for !d.done {
		if !d.scanner.Scan() {
			d.done = true
			d.err = d.scanner.Err()
			// The record terminator is advisory at stream end.
			if ev, ok := d.flush(); ok {
				return ev, true
			}
			return Event{}, false
		}

		line := strings.TrimRight(d.scanner.Text(), "\r")
		switch {
		case line == "":
			ev, ok := d.flush()
			d.name = ""
			d.data = nil
			if ok {
				return ev, true
			}
		case strings.HasPrefix(line, "event:"):
			d.name = strings.TrimSpace(line[len("event:"):])
		case strings.HasPrefix(line, "data:"):
			d.data = append(d.data, strings.TrimSpace(line[len("data:"):]))
		}
	}
	return Event{}, false
}

// Err returns the underlying read error, if the stream ended abnormally.
func (d *Decoder) Err() error {
	return d.err
}

// flush decodes the pending record, if complete.
func (d *Decoder) flush() (Event, bool) {
	if d.name == "" || len(d.data) == 0 {
		return Event{}, false
	}
	raw := strings.Join(d.data, "\n")
	payload, err := decodePayload(d.name, []byte(raw))
	if err != nil {
		logging.Warn().
			Err(err).
			Str("event", d.name).
			Msg("dropping malformed agent stream record")
		return Event{}, false
	}
	return Event{Name: d.name, Payload: payload}, true
}

// decodePayload picks the payload shape from the normalized event name.
func decodePayload(name string, raw []byte) (Payload, error) {
	switch normalizeEventName(name) {
	case eventFinalResponse:
		var p FinalResponsePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return &p, nil
	case eventError:
		var p ErrorPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return &p, nil
	default:
		if !json.Valid(raw) {
			return nil, errInvalidJSON
		}
		return &UnknownPayload{Raw: json.RawMessage(raw)}, nil
	}
}

// normalizeEventName reduces a namespaced event name to its last segment,
// upper-cased ("assist.v1.final_response" -> "FINAL_RESPONSE").
func normalizeEventName(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.ToUpper(name)
}
