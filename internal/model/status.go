package model

import (
	"fmt"
	"strings"
)

// Status is the outcome of a step, and the derived outcome of any node above it.
type Status string

const (
	StatusUnknown Status = "Unknown"
	StatusPass    Status = "Pass"
	StatusPending Status = "Pending"
	StatusFailed  Status = "Failed"
)

// severity orders statuses for aggregation. Failure dominates.
func (s Status) severity() int {
	switch s {
	case StatusFailed:
		return 3
	case StatusPending:
		return 2
	case StatusPass:
		return 1
	default:
		return 0
	}
}

// Worse returns whichever of s and other dominates.
func (s Status) Worse(other Status) Status {
	if other.severity() > s.severity() {
		return other
	}
	return s
}

// ParseStatus accepts the wire strings case-insensitively plus the
// spellings hosts commonly emit ("passed", "fail", "skipped", ...).
func ParseStatus(raw string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "unknown":
		return StatusUnknown, nil
	case "pass", "passed", "ok":
		return StatusPass, nil
	case "pending", "skip", "skipped", "undefined":
		return StatusPending, nil
	case "failed", "fail", "error":
		return StatusFailed, nil
	}
	return StatusUnknown, fmt.Errorf("unknown status %q", raw)
}

// StepType is the Gherkin keyword that introduced a step.
type StepType string

const (
	StepGiven StepType = "given"
	StepWhen  StepType = "when"
	StepThen  StepType = "then"
	StepAnd   StepType = "and"
	StepBut   StepType = "but"
)

func ParseStepType(raw string) (StepType, error) {
	switch t := StepType(strings.ToLower(strings.TrimSpace(raw))); t {
	case StepGiven, StepWhen, StepThen, StepAnd, StepBut:
		return t, nil
	case "*":
		return StepAnd, nil
	}
	return "", fmt.Errorf("unknown step type %q", raw)
}

// SplitKeyword strips a leading Gherkin keyword from a step title.
// ok is false when the title does not start with one.
func SplitKeyword(title string) (StepType, string, bool) {
	trimmed := strings.TrimSpace(title)
	word, rest, _ := strings.Cut(trimmed, " ")
	t, err := ParseStepType(word)
	if err != nil {
		return "", title, false
	}
	return t, strings.TrimSpace(rest), true
}
