package events

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, input string) ([]Event, int, error) {
	t.Helper()
	var got []Event
	n, err := Decode(context.Background(), strings.NewReader(input), func(ev Event) error {
		got = append(got, ev)
		return nil
	})
	return got, n, err
}

func TestDecode_ReadsEventsInOrder(t *testing.T) {
	input := `{"kind":"featureStart","feature":"cows","title":"Cows","tags":["@farm"]}

{"kind":"scenarioStart","feature":"cows","title":"Weighing"}
{"kind":"stepStart","feature":"cows","title":"Given a cow","table":[{"weight":450}]}
`
	evs, count, err := collect(t, input)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	require.Len(t, evs, 3)
	assert.Equal(t, FeatureStart, evs[0].Kind)
	assert.Equal(t, []string{"@farm"}, evs[0].Tags)
	assert.Equal(t, StepStart, evs[2].Kind)
	require.NotNil(t, evs[2].Table)
	assert.Equal(t, []string{"weight"}, evs[2].Table.Columns)
}

func TestDecode_MalformedLine(t *testing.T) {
	input := "{\"kind\":\"featureStart\"}\n{not json\n"
	_, count, err := collect(t, input)
	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 2, de.Line)
	assert.Equal(t, 1, count)
}

func TestDecode_UnknownKind(t *testing.T) {
	_, _, err := collect(t, `{"kind":"testStart"}`)
	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Contains(t, err.Error(), "testStart")
}

func TestDecode_HandlerErrorStops(t *testing.T) {
	input := "{\"kind\":\"featureStart\"}\n{\"kind\":\"featureEnd\"}\n"
	boom := errors.New("boom")
	calls := 0
	_, err := Decode(context.Background(), strings.NewReader(input), func(Event) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "line 1")
	assert.Equal(t, 1, calls)
}

func TestDecode_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Decode(ctx, strings.NewReader(`{"kind":"featureStart"}`), func(Event) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEncode_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf,
		Event{Kind: FeatureStart, Feature: "f", Title: "Cows"},
		Event{Kind: FeatureEnd, Feature: "f"},
	))
	evs, _, err := collect(t, buf.String())
	require.NoError(t, err)
	require.Len(t, evs, 2)
	assert.Equal(t, "Cows", evs[0].Title)
	assert.Equal(t, FeatureEnd, evs[1].Kind)
}
