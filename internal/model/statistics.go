package model

// Statistics holds rollup counts for a node. The zero value is ready to use.
type Statistics struct {
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Pending int `json:"pending"`
}

func (s *Statistics) RecordPassed()  { s.Passed++ }
func (s *Statistics) RecordFailed()  { s.Failed++ }
func (s *Statistics) RecordPending() { s.Pending++ }

// Record counts one child of the given status. Unknown has no bucket.
func (s *Statistics) Record(status Status) {
	switch status {
	case StatusPass:
		s.RecordPassed()
	case StatusFailed:
		s.RecordFailed()
	case StatusPending:
		s.RecordPending()
	}
}

// Add folds other's counts into s.
func (s *Statistics) Add(other Statistics) {
	s.Passed += other.Passed
	s.Failed += other.Failed
	s.Pending += other.Pending
}

func (s Statistics) Total() int {
	return s.Passed + s.Failed + s.Pending
}

func (s Statistics) Status() Status {
	switch {
	case s.Failed > 0:
		return StatusFailed
	case s.Pending > 0:
		return StatusPending
	case s.Passed > 0:
		return StatusPass
	default:
		return StatusUnknown
	}
}

func (s Statistics) PassedPercent() float64  { return percent(s.Passed, s.Total()) }
func (s Statistics) FailedPercent() float64  { return percent(s.Failed, s.Total()) }
func (s Statistics) PendingPercent() float64 { return percent(s.Pending, s.Total()) }

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) * 100 / float64(total)
}

// FromScenario sums the statuses of a scenario's steps. For an outline the
// sum runs over every example execution instead of the step templates.
func FromScenario(sc *Scenario) Statistics {
	var stats Statistics
	if sc == nil {
		return stats
	}
	if sc.Kind == KindOutline {
		for _, ex := range sc.Executions {
			stats.Add(FromScenario(ex))
		}
		return stats
	}
	for _, step := range sc.Steps {
		stats.Record(step.Status)
	}
	return stats
}

// FromFeature sums FromScenario over the feature's scenario sequence.
// The background is not part of that sequence and is not counted.
func FromFeature(f *Feature) Statistics {
	var stats Statistics
	if f == nil {
		return stats
	}
	for _, sc := range f.Scenarios {
		stats.Add(FromScenario(sc))
	}
	return stats
}
