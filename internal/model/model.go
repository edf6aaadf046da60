package model

// Feature is the top-level node: one feature file's worth of scenarios.
type Feature struct {
	ID            int64       `json:"id"`
	Filename      string      `json:"filename"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	Background    *Scenario   `json:"background,omitempty"`
	Scenarios     []*Scenario `json:"scenarios"`
	Tags          []string    `json:"tags"`
	ExecutionTime int64       `json:"executionTime"`
	Statistics    Statistics  `json:"statistics"`
}

// Status is the feature's rollup status.
func (f *Feature) Status() Status {
	return f.Statistics.Status()
}

// AllScenarios flattens the scenario sequence, replacing each outline with
// its example executions.
func (f *Feature) AllScenarios() []*Scenario {
	var out []*Scenario
	for _, sc := range f.Scenarios {
		if sc.Kind == KindOutline {
			out = append(out, sc.Executions...)
			continue
		}
		out = append(out, sc)
	}
	return out
}

// ScenarioKind tags the Scenario variant.
type ScenarioKind string

const (
	KindScenario   ScenarioKind = "scenario"
	KindBackground ScenarioKind = "background"
	KindOutline    ScenarioKind = "outline"
	KindExample    ScenarioKind = "example"
)

// Scenario covers plain scenarios, backgrounds, outlines and the per-row
// executions of an outline. Outline-only fields are Examples and
// Executions; Row and Example, the name of the Examples block the row
// came from, are set only on example executions.
type Scenario struct {
	ID                  int64        `json:"id"`
	Kind                ScenarioKind `json:"kind"`
	Title               string       `json:"title"`
	Description         string       `json:"description"`
	Steps               []*Step      `json:"steps"`
	Tags                []string     `json:"tags"`
	AssociatedFeatureID int64        `json:"associatedFeatureId"`
	ExecutionTime       int64        `json:"executionTime"`
	Statistics          Statistics   `json:"statistics"`

	Examples   []Examples     `json:"examples,omitempty"`
	Executions []*Scenario    `json:"executions,omitempty"`
	Row        map[string]any `json:"row,omitempty"`
	Example    string         `json:"example,omitempty"`
}

func (s *Scenario) Status() Status {
	return s.Statistics.Status()
}

// Examples is one named examples block of an outline.
type Examples struct {
	Name  string `json:"name"`
	Table *Table `json:"table"`
}

// Step is a single Given/When/Then/And/But action.
type Step struct {
	ID                   int64      `json:"id"`
	Title                string     `json:"title"`
	Type                 StepType   `json:"type"`
	DocString            string     `json:"docString,omitempty"`
	Table                *Table     `json:"table,omitempty"`
	Status               Status     `json:"status"`
	Code                 string     `json:"code,omitempty"`
	Error                *Exception `json:"error,omitempty"`
	AssociatedScenarioID int64      `json:"associatedScenarioId"`
	ExecutionTime        int64      `json:"executionTime"`
}

// Exception describes a failed step.
type Exception struct {
	Actual     any    `json:"actual,omitempty"`
	Expected   any    `json:"expected,omitempty"`
	Message    string `json:"message"`
	StackTrace string `json:"stackTrace,omitempty"`
}
