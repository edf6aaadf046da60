package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatistics_ZeroValue(t *testing.T) {
	var s Statistics
	assert.Equal(t, 0, s.Total())
	assert.Equal(t, StatusUnknown, s.Status())
	assert.Equal(t, 0.0, s.PassedPercent())
	assert.Equal(t, 0.0, s.FailedPercent())
	assert.Equal(t, 0.0, s.PendingPercent())
}

func TestStatistics_Percentages(t *testing.T) {
	s := Statistics{Passed: 7, Failed: 3}
	assert.Equal(t, 10, s.Total())
	assert.Equal(t, 70.0, s.PassedPercent())
	assert.Equal(t, 30.0, s.FailedPercent())
	assert.Equal(t, 0.0, s.PendingPercent())
}

func TestStatistics_DerivationsArePure(t *testing.T) {
	s := Statistics{Passed: 2, Pending: 1}
	first := []any{s.Status(), s.Total(), s.PassedPercent(), s.PendingPercent()}
	second := []any{s.Status(), s.Total(), s.PassedPercent(), s.PendingPercent()}
	assert.Equal(t, first, second)
	assert.Equal(t, Statistics{Passed: 2, Pending: 1}, s)
}

func TestStatistics_StatusPrecedence(t *testing.T) {
	tests := []struct {
		name  string
		stats Statistics
		want  Status
	}{
		{"empty", Statistics{}, StatusUnknown},
		{"passed only", Statistics{Passed: 3}, StatusPass},
		{"pending beats pass", Statistics{Passed: 3, Pending: 1}, StatusPending},
		{"failed beats all", Statistics{Passed: 3, Pending: 1, Failed: 1}, StatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.stats.Status())
		})
	}
}

func TestStatistics_Record(t *testing.T) {
	var s Statistics
	s.RecordPassed()
	s.RecordFailed()
	s.RecordPending()
	s.Record(StatusPass)
	s.Record(StatusUnknown)
	assert.Equal(t, Statistics{Passed: 2, Failed: 1, Pending: 1}, s)
}

func TestFromScenario_CountsSteps(t *testing.T) {
	const n, m = 4, 2
	sc := &Scenario{Kind: KindScenario}
	for i := 0; i < n; i++ {
		sc.Steps = append(sc.Steps, &Step{Status: StatusPass})
	}
	for i := 0; i < m; i++ {
		sc.Steps = append(sc.Steps, &Step{Status: StatusFailed})
	}

	stats := FromScenario(sc)
	assert.Equal(t, n, stats.Passed)
	assert.Equal(t, m, stats.Failed)
	assert.Equal(t, n+m, stats.Total())
	assert.Equal(t, StatusFailed, stats.Status())
}

func TestFromScenario_OutlineSumsExecutions(t *testing.T) {
	outline := &Scenario{
		Kind:  KindOutline,
		Steps: []*Step{{Status: StatusUnknown}},
		Executions: []*Scenario{
			{Kind: KindExample, Steps: []*Step{{Status: StatusPass}}},
			{Kind: KindExample, Steps: []*Step{{Status: StatusPending}}},
		},
	}
	assert.Equal(t, Statistics{Passed: 1, Pending: 1}, FromScenario(outline))
}

func TestFromFeature_ExcludesBackground(t *testing.T) {
	f := &Feature{
		Background: &Scenario{Kind: KindBackground, Steps: []*Step{{Status: StatusFailed}}},
		Scenarios: []*Scenario{
			{Kind: KindScenario, Steps: []*Step{{Status: StatusPass}, {Status: StatusPass}}},
			{Kind: KindScenario, Steps: []*Step{{Status: StatusPending}}},
		},
	}
	assert.Equal(t, Statistics{Passed: 2, Pending: 1}, FromFeature(f))
}

func TestParseStatus(t *testing.T) {
	for raw, want := range map[string]Status{
		"Pass": StatusPass, "passed": StatusPass,
		"Failed": StatusFailed, "fail": StatusFailed,
		"Pending": StatusPending, "skipped": StatusPending,
		"": StatusUnknown, "Unknown": StatusUnknown,
	} {
		got, err := ParseStatus(raw)
		assert.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
	_, err := ParseStatus("exploded")
	assert.Error(t, err)
}

func TestSplitKeyword(t *testing.T) {
	typ, rest, ok := SplitKeyword("Given a cow")
	assert.True(t, ok)
	assert.Equal(t, StepGiven, typ)
	assert.Equal(t, "a cow", rest)

	typ, rest, ok = SplitKeyword("* it moos")
	assert.True(t, ok)
	assert.Equal(t, StepAnd, typ)
	assert.Equal(t, "it moos", rest)

	_, rest, ok = SplitKeyword("the cow moos")
	assert.False(t, ok)
	assert.Equal(t, "the cow moos", rest)
}
