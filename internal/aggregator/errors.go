package aggregator

import (
	"fmt"

	"github.com/chriserin/ftreport/internal/events"
)

// SequenceError reports an event that is not valid in the feature's current state.
type SequenceError struct {
	Event   events.Kind
	Title   string
	Feature string
	State   State
}

func (e *SequenceError) Error() string {
	msg := fmt.Sprintf("unexpected %s in state %s", e.Event, e.State)
	if e.Title != "" {
		msg += fmt.Sprintf(" (title %q)", e.Title)
	}
	if e.Feature != "" {
		msg += fmt.Sprintf(" (feature %q)", e.Feature)
	}
	return msg
}

// TemplateError reports an outline placeholder with no matching example column.
type TemplateError struct {
	Column   string
	Template string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %q: column %q not in example row", e.Template, e.Column)
}

// EventError reports a well-ordered event whose payload cannot be used,
// such as an unknown status or step type.
type EventError struct {
	Event events.Kind
	Err   error
}

func (e *EventError) Error() string {
	return fmt.Sprintf("%s: %v", e.Event, e.Err)
}

func (e *EventError) Unwrap() error { return e.Err }
