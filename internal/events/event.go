package events

import (
	"fmt"

	"github.com/chriserin/ftreport/internal/model"
)

// Kind names a lifecycle event emitted by the host test engine.
type Kind string

const (
	FeatureStart         Kind = "featureStart"
	FeatureEnd           Kind = "featureEnd"
	BackgroundStart      Kind = "backgroundStart"
	BackgroundEnd        Kind = "backgroundEnd"
	ScenarioStart        Kind = "scenarioStart"
	ScenarioEnd          Kind = "scenarioEnd"
	ScenarioOutlineStart Kind = "scenarioOutlineStart"
	ScenarioOutlineEnd   Kind = "scenarioOutlineEnd"
	ExampleStart         Kind = "exampleStart"
	ExampleEnd           Kind = "exampleEnd"
	StepStart            Kind = "stepStart"
	StepEnd              Kind = "stepEnd"
)

var kinds = map[Kind]bool{
	FeatureStart: true, FeatureEnd: true,
	BackgroundStart: true, BackgroundEnd: true,
	ScenarioStart: true, ScenarioEnd: true,
	ScenarioOutlineStart: true, ScenarioOutlineEnd: true,
	ExampleStart: true, ExampleEnd: true,
	StepStart: true, StepEnd: true,
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return kinds[k]
}

// Event is one record of the host's event stream. Which fields are
// meaningful depends on Kind; data is fully materialized by the host.
type Event struct {
	Kind    Kind   `json:"kind"`
	Feature string `json:"feature,omitempty"` // host identity of the owning feature

	Title       string   `json:"title,omitempty"`
	Filename    string   `json:"filename,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`

	StepType  string       `json:"stepType,omitempty"`
	Table     *model.Table `json:"table,omitempty"`
	DocString string       `json:"docString,omitempty"`
	Code      string       `json:"code,omitempty"`

	Status    string           `json:"status,omitempty"`
	Exception *model.Exception `json:"exception,omitempty"`

	Examples   []model.Examples `json:"examples,omitempty"`
	Example    string           `json:"example,omitempty"`
	ExampleRow map[string]any   `json:"exampleRow,omitempty"`

	// ExecutionTime in milliseconds; when zero on an *End event the
	// aggregator measures it instead.
	ExecutionTime int64 `json:"executionTime,omitempty"`
}

func (e Event) String() string {
	if e.Title == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s %q", e.Kind, e.Title)
}
