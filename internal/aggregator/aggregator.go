package aggregator

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chriserin/ftreport/internal/events"
	"github.com/chriserin/ftreport/internal/model"
)

// Aggregator reduces host lifecycle events into the feature tree.
// Features are tracked by the event's Feature key, so a host may
// interleave features; events within one feature must nest.
type Aggregator struct {
	mu   sync.Mutex
	ids  *Allocator
	log  *slog.Logger
	now  func() time.Time
	runs map[string]*featureRun

	// order keeps features in start order, finished or not.
	order []*featureRun
}

type featureRun struct {
	key     string
	feature *model.Feature
	state   State

	scenario *model.Scenario // open background, scenario or outline
	row      *model.Scenario // open outline execution
	step     *model.Step
	resume   State // state to return to on stepEnd

	featureStart  time.Time
	scenarioStart time.Time
	rowStart      time.Time
	stepStart     time.Time
}

type Option func(*Aggregator)

// WithAllocator shares an id allocator with other aggregators of the same run.
func WithAllocator(ids *Allocator) Option {
	return func(a *Aggregator) { a.ids = ids }
}

func WithLogger(log *slog.Logger) Option {
	return func(a *Aggregator) { a.log = log }
}

// WithClock replaces time.Now for measuring execution times.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		ids:  NewAllocator(),
		log:  slog.New(slog.DiscardHandler),
		now:  time.Now,
		runs: map[string]*featureRun{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Apply reduces one event. Errors are not recovered from: the feature
// the event belongs to is left as it was before the event.
func (a *Aggregator) Apply(ev events.Event) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if ev.Kind == events.FeatureStart {
		return a.featureStart(ev)
	}
	if !ev.Kind.Valid() {
		return &EventError{Event: ev.Kind, Err: errors.New("unknown event kind")}
	}

	run, ok := a.runs[ev.Feature]
	if !ok {
		return sequenceError(ev, Idle)
	}

	switch ev.Kind {
	case events.FeatureEnd:
		return a.featureEnd(run, ev)
	case events.BackgroundStart:
		return a.backgroundStart(run, ev)
	case events.ScenarioStart:
		return a.scenarioStart(run, ev, model.KindScenario, InScenario)
	case events.ScenarioOutlineStart:
		return a.scenarioStart(run, ev, model.KindOutline, InScenarioOutline)
	case events.BackgroundEnd:
		return a.scenarioEnd(run, ev, InBackground)
	case events.ScenarioEnd:
		return a.scenarioEnd(run, ev, InScenario)
	case events.ScenarioOutlineEnd:
		return a.scenarioEnd(run, ev, InScenarioOutline)
	case events.ExampleStart:
		return a.exampleStart(run, ev)
	case events.ExampleEnd:
		return a.exampleEnd(run, ev)
	case events.StepStart:
		return a.stepStartEvent(run, ev)
	case events.StepEnd:
		return a.stepEndEvent(run, ev)
	}
	return &EventError{Event: ev.Kind, Err: errors.New("unhandled event kind")}
}

func (a *Aggregator) FeatureStart(ev events.Event) error {
	ev.Kind = events.FeatureStart
	return a.Apply(ev)
}

func (a *Aggregator) FeatureEnd(ev events.Event) error {
	ev.Kind = events.FeatureEnd
	return a.Apply(ev)
}

func (a *Aggregator) BackgroundStart(ev events.Event) error {
	ev.Kind = events.BackgroundStart
	return a.Apply(ev)
}

func (a *Aggregator) BackgroundEnd(ev events.Event) error {
	ev.Kind = events.BackgroundEnd
	return a.Apply(ev)
}

func (a *Aggregator) ScenarioStart(ev events.Event) error {
	ev.Kind = events.ScenarioStart
	return a.Apply(ev)
}

func (a *Aggregator) ScenarioEnd(ev events.Event) error {
	ev.Kind = events.ScenarioEnd
	return a.Apply(ev)
}

func (a *Aggregator) ScenarioOutlineStart(ev events.Event) error {
	ev.Kind = events.ScenarioOutlineStart
	return a.Apply(ev)
}

func (a *Aggregator) ScenarioOutlineEnd(ev events.Event) error {
	ev.Kind = events.ScenarioOutlineEnd
	return a.Apply(ev)
}

func (a *Aggregator) ExampleStart(ev events.Event) error {
	ev.Kind = events.ExampleStart
	return a.Apply(ev)
}

func (a *Aggregator) ExampleEnd(ev events.Event) error {
	ev.Kind = events.ExampleEnd
	return a.Apply(ev)
}

func (a *Aggregator) StepStart(ev events.Event) error {
	ev.Kind = events.StepStart
	return a.Apply(ev)
}

func (a *Aggregator) StepEnd(ev events.Event) error {
	ev.Kind = events.StepEnd
	return a.Apply(ev)
}

// Features returns the finished features in the order they started.
func (a *Aggregator) Features() []*model.Feature {
	a.mu.Lock()
	defer a.mu.Unlock()

	var out []*model.Feature
	for _, run := range a.order {
		if run.state == FeatureClosed {
			out = append(out, run.feature)
		}
	}
	return out
}

// Open returns the keys of features that have started but not ended.
func (a *Aggregator) Open() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	var keys []string
	for _, run := range a.order {
		if run.state != FeatureClosed {
			keys = append(keys, run.key)
		}
	}
	return keys
}

// Discard drops an unfinished feature without computing its statistics.
// It reports whether anything was dropped.
func (a *Aggregator) Discard(key string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	run, ok := a.runs[key]
	if !ok {
		return false
	}
	delete(a.runs, key)
	for i, r := range a.order {
		if r == run {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	a.log.Warn("discarded unfinished feature", "feature", key, "title", run.feature.Title, "state", run.state)
	return true
}

func (a *Aggregator) featureStart(ev events.Event) error {
	if run, ok := a.runs[ev.Feature]; ok {
		return sequenceError(ev, run.state)
	}
	f := &model.Feature{
		ID:          a.ids.NextFeature(),
		Filename:    ev.Filename,
		Title:       ev.Title,
		Description: ev.Description,
		Scenarios:   []*model.Scenario{},
		Tags:        tags(ev.Tags),
	}
	run := &featureRun{
		key:          ev.Feature,
		feature:      f,
		state:        InFeature,
		featureStart: a.now(),
	}
	a.runs[ev.Feature] = run
	a.order = append(a.order, run)
	a.log.Debug("feature started", "feature", ev.Feature, "id", f.ID, "title", f.Title)
	return nil
}

func (a *Aggregator) featureEnd(run *featureRun, ev events.Event) error {
	if run.state != InFeature {
		return sequenceError(ev, run.state)
	}
	f := run.feature
	f.Statistics = model.FromFeature(f)
	f.ExecutionTime = a.elapsed(ev, run.featureStart)
	run.state = FeatureClosed
	delete(a.runs, run.key)
	a.log.Debug("feature finished", "feature", run.key, "id", f.ID, "status", f.Status(),
		"passed", f.Statistics.Passed, "failed", f.Statistics.Failed, "pending", f.Statistics.Pending)
	return nil
}

func (a *Aggregator) backgroundStart(run *featureRun, ev events.Event) error {
	if run.state != InFeature || run.feature.Background != nil {
		return sequenceError(ev, run.state)
	}
	bg := a.newScenario(run, model.KindBackground, ev)
	run.feature.Background = bg
	run.scenario = bg
	run.scenarioStart = a.now()
	run.state = InBackground
	a.log.Debug("background started", "feature", run.key, "id", bg.ID)
	return nil
}

func (a *Aggregator) scenarioStart(run *featureRun, ev events.Event, kind model.ScenarioKind, next State) error {
	if run.state != InFeature {
		return sequenceError(ev, run.state)
	}
	sc := a.newScenario(run, kind, ev)
	if kind == model.KindOutline {
		sc.Examples = ev.Examples
	}
	run.feature.Scenarios = append(run.feature.Scenarios, sc)
	run.scenario = sc
	run.scenarioStart = a.now()
	run.state = next
	a.log.Debug("scenario started", "feature", run.key, "id", sc.ID, "kind", kind, "title", sc.Title)
	return nil
}

// scenarioEnd closes a background, scenario or outline; want is the state
// the matching start event entered.
func (a *Aggregator) scenarioEnd(run *featureRun, ev events.Event, want State) error {
	if run.state != want {
		return sequenceError(ev, run.state)
	}
	sc := run.scenario
	sc.Statistics = model.FromScenario(sc)
	sc.ExecutionTime = a.elapsed(ev, run.scenarioStart)
	run.scenario = nil
	run.state = InFeature
	a.log.Debug("scenario finished", "feature", run.key, "id", sc.ID, "kind", sc.Kind, "status", sc.Status())
	return nil
}

func (a *Aggregator) exampleStart(run *featureRun, ev events.Event) error {
	if run.state != InScenarioOutline {
		return sequenceError(ev, run.state)
	}
	outline := run.scenario
	title := ev.Title
	if title == "" {
		t, err := Substitute(outline.Title, ev.ExampleRow)
		if err != nil {
			return err
		}
		title = t
	}
	row := a.newScenario(run, model.KindExample, events.Event{
		Title:       title,
		Description: outline.Description,
		Tags:        append(append([]string(nil), outline.Tags...), ev.Tags...),
	})
	row.Row = ev.ExampleRow
	row.Example = ev.Example
	if row.Row == nil {
		row.Row = map[string]any{}
	}
	outline.Executions = append(outline.Executions, row)
	run.row = row
	run.rowStart = a.now()
	run.state = InExample
	a.log.Debug("example started", "feature", run.key, "outline", outline.ID, "id", row.ID, "example", ev.Example)
	return nil
}

func (a *Aggregator) exampleEnd(run *featureRun, ev events.Event) error {
	if run.state != InExample {
		return sequenceError(ev, run.state)
	}
	row := run.row
	row.Statistics = model.FromScenario(row)
	row.ExecutionTime = a.elapsed(ev, run.rowStart)
	run.row = nil
	run.state = InScenarioOutline
	return nil
}

func (a *Aggregator) stepStartEvent(run *featureRun, ev events.Event) error {
	var owner *model.Scenario
	switch run.state {
	case InBackground, InScenario:
		owner = run.scenario
	case InExample:
		owner = run.row
	default:
		return sequenceError(ev, run.state)
	}

	title := ev.Title
	var stepType model.StepType
	if ev.StepType != "" {
		t, err := model.ParseStepType(ev.StepType)
		if err != nil {
			return &EventError{Event: ev.Kind, Err: err}
		}
		stepType = t
	} else if t, rest, ok := model.SplitKeyword(title); ok {
		stepType, title = t, rest
	} else {
		return &EventError{Event: ev.Kind, Err: fmt.Errorf("no step type for %q", ev.Title)}
	}

	step := &model.Step{
		Title:     title,
		Type:      stepType,
		DocString: ev.DocString,
		Table:     ev.Table,
		Code:      ev.Code,
		Status:    model.StatusUnknown,
	}
	if run.state == InExample {
		expanded, err := expandStep(step, run.row.Row)
		if err != nil {
			return err
		}
		outline := run.scenario
		if len(outline.Executions) == 1 {
			tmpl := *step
			tmpl.ID = a.ids.NextStep()
			tmpl.AssociatedScenarioID = outline.ID
			outline.Steps = append(outline.Steps, &tmpl)
		}
		step = expanded
	}
	step.ID = a.ids.NextStep()
	step.AssociatedScenarioID = owner.ID
	owner.Steps = append(owner.Steps, step)

	run.step = step
	run.resume = run.state
	run.stepStart = a.now()
	run.state = StepRunning
	return nil
}

func (a *Aggregator) stepEndEvent(run *featureRun, ev events.Event) error {
	if run.state != StepRunning {
		return sequenceError(ev, run.state)
	}
	status, err := model.ParseStatus(ev.Status)
	if err != nil {
		return &EventError{Event: ev.Kind, Err: err}
	}
	step := run.step
	step.Status = status
	if status == model.StatusFailed && ev.Exception != nil {
		exc := *ev.Exception
		step.Error = &exc
	}
	if ev.Code != "" {
		step.Code = ev.Code
	}
	step.ExecutionTime = a.elapsed(ev, run.stepStart)
	run.step = nil
	run.state = run.resume
	a.log.Debug("step finished", "feature", run.key, "id", step.ID, "status", status)
	return nil
}

func (a *Aggregator) newScenario(run *featureRun, kind model.ScenarioKind, ev events.Event) *model.Scenario {
	return &model.Scenario{
		ID:                  a.ids.NextScenario(),
		Kind:                kind,
		Title:               ev.Title,
		Description:         ev.Description,
		Steps:               []*model.Step{},
		Tags:                tags(ev.Tags),
		AssociatedFeatureID: run.feature.ID,
	}
}

// expandStep substitutes the example row into a copy of the template step.
func expandStep(tmpl *model.Step, row map[string]any) (*model.Step, error) {
	out := *tmpl
	var err error
	if out.Title, err = Substitute(tmpl.Title, row); err != nil {
		return nil, err
	}
	out.DocString = SubstituteKnown(tmpl.DocString, row)
	out.Table = substituteTable(tmpl.Table, row)
	return &out, nil
}

func (a *Aggregator) elapsed(ev events.Event, start time.Time) int64 {
	if ev.ExecutionTime > 0 {
		return ev.ExecutionTime
	}
	return a.now().Sub(start).Milliseconds()
}

func sequenceError(ev events.Event, state State) *SequenceError {
	return &SequenceError{Event: ev.Kind, Title: ev.Title, Feature: ev.Feature, State: state}
}

func tags(in []string) []string {
	if in == nil {
		return []string{}
	}
	return append([]string(nil), in...)
}
