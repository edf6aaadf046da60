package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chriserin/ftreport/internal/config"
	"github.com/chriserin/ftreport/internal/events"
)

func generateEvents(featureCount, scenariosPerFeature int) string {
	var evs []events.Event
	for f := 0; f < featureCount; f++ {
		key := fmt.Sprintf("feature_%d", f)
		evs = append(evs,
			events.Event{Kind: events.FeatureStart, Feature: key, Title: key},
			events.Event{Kind: events.BackgroundStart, Feature: key},
			events.Event{Kind: events.StepStart, Feature: key, Title: "Given the system is running"},
			events.Event{Kind: events.StepEnd, Feature: key, Status: "Pass"},
			events.Event{Kind: events.BackgroundEnd, Feature: key},
		)
		for s := 1; s <= scenariosPerFeature; s++ {
			evs = append(evs, events.Event{Kind: events.ScenarioStart, Feature: key, Title: fmt.Sprintf("%s scenario %d", key, s)})
			for _, title := range []string{"Given precondition %d", "When action %d is taken", "Then result %d is observed"} {
				evs = append(evs,
					events.Event{Kind: events.StepStart, Feature: key, Title: fmt.Sprintf(title, s)},
					events.Event{Kind: events.StepEnd, Feature: key, Status: "Pass"},
				)
			}
			evs = append(evs, events.Event{Kind: events.ScenarioEnd, Feature: key})
		}
		evs = append(evs, events.Event{Kind: events.FeatureEnd, Feature: key})
	}
	var buf bytes.Buffer
	if err := events.Encode(&buf, evs...); err != nil {
		panic(err)
	}
	return buf.String()
}

func setupBenchProject(b *testing.B) {
	b.Helper()
	dir := b.TempDir()
	orig, err := os.Getwd()
	require.NoError(b, err)
	require.NoError(b, os.Chdir(dir))
	b.Cleanup(func() { os.Chdir(orig) })

	var buf bytes.Buffer
	require.NoError(b, RunInit(&buf, config.Default()))
}

func benchmarkRun(b *testing.B, featureCount, scenariosPerFeature int) {
	setupBenchProject(b)
	input := generateEvents(featureCount, scenariosPerFeature)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var buf bytes.Buffer
		_, err := RunEvents(context.Background(), &buf, config.Default(), bytes.NewBufferString(input), RunOptions{})
		require.NoError(b, err)
	}
}

func BenchmarkRun_10Features(b *testing.B)  { benchmarkRun(b, 10, 10) }
func BenchmarkRun_100Features(b *testing.B) { benchmarkRun(b, 100, 10) }
