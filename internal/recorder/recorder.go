// Package recorder writes notification envelopes to a JSON-lines file and
// reads them back for replay.
//
// The first line is a Header object. Every following line is an event array:
// [time_offset, event_type, data], where time_offset is seconds since the
// recording started and data is the envelope's raw data field.
package recorder

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/expense-share/client/internal/notify"
)

// FormatVersion is the version written into recording headers.
const FormatVersion = 1

// Header is the first line of a recording.
type Header struct {
	Version   int      `json:"version"`
	Timestamp int64    `json:"timestamp"`
	URL       string   `json:"url,omitempty"`
	Types     []string `json:"types,omitempty"`
}

// Event is one recorded envelope.
// Format: [time_offset, event_type, data]
type Event struct {
	TimeOffset float64
	Type       string
	Data       json.RawMessage
}

// MarshalJSON implements custom JSON marshaling for Event.
func (e Event) MarshalJSON() ([]byte, error) {
	data := e.Data
	if len(data) == 0 {
		data = json.RawMessage("null")
	}
	return json.Marshal([]any{e.TimeOffset, e.Type, data})
}

// UnmarshalJSON implements custom JSON unmarshaling for Event.
func (e *Event) UnmarshalJSON(data []byte) error {
	var arr []json.RawMessage
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	if len(arr) != 3 {
		return fmt.Errorf("invalid event format: expected 3 elements, got %d", len(arr))
	}
	if err := json.Unmarshal(arr[0], &e.TimeOffset); err != nil {
		return fmt.Errorf("invalid time offset: %w", err)
	}
	if err := json.Unmarshal(arr[1], &e.Type); err != nil {
		return fmt.Errorf("invalid event type: %w", err)
	}
	if string(arr[2]) == "null" {
		e.Data = nil
	} else {
		e.Data = arr[2]
	}
	return nil
}

// Envelope converts the event back into a notification envelope.
func (e Event) Envelope() notify.Envelope {
	return notify.Envelope{Type: e.Type, Data: e.Data}
}

// Recorder appends envelopes to a recording.
type Recorder struct {
	writer    io.Writer
	file      *os.File // only set if we own the file
	startTime time.Time
	mu        sync.Mutex
}

// Create creates a recording file at path.
func Create(path string) (*Recorder, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create recording: %w", err)
	}
	return &Recorder{writer: file, file: file, startTime: time.Now()}, nil
}

// NewWithWriter creates a Recorder that writes to w.
func NewWithWriter(w io.Writer) *Recorder {
	return &Recorder{writer: w, startTime: time.Now()}
}

// WriteHeader writes the header line. Call it once, before any event.
func (r *Recorder) WriteHeader(url string, types []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.writeLine(Header{
		Version:   FormatVersion,
		Timestamp: r.startTime.Unix(),
		URL:       url,
		Types:     types,
	})
}

// Record appends an envelope, timed by its arrival when known.
func (r *Recorder) Record(env notify.Envelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	at := env.ReceivedAt
	if at.IsZero() {
		at = time.Now()
	}
	offset := at.Sub(r.startTime).Seconds()
	if offset < 0 {
		offset = 0
	}

	return r.writeLine(Event{TimeOffset: offset, Type: env.Type, Data: env.Data})
}

// Handler returns a notify.Handler that records every envelope it receives.
// Write failures are reported to onErr, which may be nil.
func (r *Recorder) Handler(onErr func(error)) notify.Handler {
	return func(_ json.RawMessage, env notify.Envelope) {
		if err := r.Record(env); err != nil && onErr != nil {
			onErr(err)
		}
	}
}

func (r *Recorder) writeLine(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal line: %w", err)
	}
	if _, err := r.writer.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write line: %w", err)
	}
	return nil
}

// Close closes the recording file.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// StartTime returns the start time of the recording.
func (r *Recorder) StartTime() time.Time {
	return r.startTime
}

// ReadRecording parses a recording. Blank lines are skipped.
func ReadRecording(rd io.Reader) (*Header, []Event, error) {
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var (
		header *Header
		events []Event
		line   int
	)
	for scanner.Scan() {
		line++
		text := scanner.Bytes()
		if len(text) == 0 {
			continue
		}
		if header == nil {
			header = &Header{}
			if err := json.Unmarshal(text, header); err != nil {
				return nil, nil, fmt.Errorf("line %d: invalid header: %w", line, err)
			}
			if header.Version != FormatVersion {
				return nil, nil, fmt.Errorf("unsupported recording version %d", header.Version)
			}
			continue
		}
		var ev Event
		if err := json.Unmarshal(text, &ev); err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("read recording: %w", err)
	}
	if header == nil {
		return nil, nil, fmt.Errorf("empty recording")
	}
	return header, events, nil
}

// ReadFile parses the recording at path.
func ReadFile(path string) (*Header, []Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open recording: %w", err)
	}
	defer f.Close()
	return ReadRecording(f)
}

// Replay calls fn for each event in order. With speed > 0 it waits between
// events for their recorded gap divided by speed; with speed <= 0 it does not
// wait. It stops early when ctx is done.
func Replay(ctx context.Context, events []Event, speed float64, fn func(Event)) error {
	var last float64
	for _, ev := range events {
		if speed > 0 {
			gap := time.Duration((ev.TimeOffset - last) / speed * float64(time.Second))
			if gap > 0 {
				timer := time.NewTimer(gap)
				select {
				case <-ctx.Done():
					timer.Stop()
					return ctx.Err()
				case <-timer.C:
				}
			}
			last = ev.TimeOffset
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		fn(ev)
	}
	return nil
}
