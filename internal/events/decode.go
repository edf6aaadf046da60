package events

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// DecodeError reports a stream line that is not a valid event.
type DecodeError struct {
	Line int
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// HandleFunc receives each decoded event. Returning an error stops decoding.
type HandleFunc func(Event) error

// Decode reads newline-delimited JSON events from r and passes each one
// to fn in order. Blank lines are skipped. It stops at EOF, at the first
// malformed line, at the first error from fn, or when ctx is done.
func Decode(ctx context.Context, r io.Reader, fn HandleFunc) (int, error) {
	scanner := bufio.NewScanner(r)
	// Tables and doc strings can make for long lines.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line, count := 0, 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return count, err
		}
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			return count, &DecodeError{Line: line, Err: err}
		}
		if !ev.Kind.Valid() {
			return count, &DecodeError{Line: line, Err: fmt.Errorf("unknown event kind %q", ev.Kind)}
		}
		if err := fn(ev); err != nil {
			return count, fmt.Errorf("line %d: %w", line, err)
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, fmt.Errorf("scanning events: %w", err)
	}
	return count, nil
}

// Encode writes events as newline-delimited JSON.
func Encode(w io.Writer, evs ...Event) error {
	enc := json.NewEncoder(w)
	for _, ev := range evs {
		if err := enc.Encode(ev); err != nil {
			return fmt.Errorf("encoding %s: %w", ev.Kind, err)
		}
	}
	return nil
}
