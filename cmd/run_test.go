package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chriserin/ftreport/internal/aggregator"
	"github.com/chriserin/ftreport/internal/config"
	"github.com/chriserin/ftreport/internal/db"
	"github.com/chriserin/ftreport/internal/model"
)

const cowEvents = `{"kind":"featureStart","feature":"cows","title":"Cows","filename":"cows.feature","tags":["@farm"]}
{"kind":"backgroundStart","feature":"cows"}
{"kind":"stepStart","feature":"cows","title":"Given a barn"}
{"kind":"stepEnd","feature":"cows","status":"Pass"}
{"kind":"backgroundEnd","feature":"cows"}
{"kind":"scenarioStart","feature":"cows","title":"Milking"}
{"kind":"stepStart","feature":"cows","title":"Given a cow"}
{"kind":"stepEnd","feature":"cows","status":"Pass"}
{"kind":"stepStart","feature":"cows","title":"Then it gives milk"}
{"kind":"stepEnd","feature":"cows","status":"Failed","exception":{"actual":0,"expected":10,"message":"no milk"}}
{"kind":"scenarioEnd","feature":"cows"}
{"kind":"scenarioOutlineStart","feature":"cows","title":"Weighing","examples":[{"name":"weights","table":[{"weight":450},{"weight":500}]}]}
{"kind":"exampleStart","feature":"cows","exampleRow":{"weight":450}}
{"kind":"stepStart","feature":"cows","title":"Then the cow weighs <weight> kg"}
{"kind":"stepEnd","feature":"cows","status":"Pass"}
{"kind":"exampleEnd","feature":"cows"}
{"kind":"exampleStart","feature":"cows","exampleRow":{"weight":500}}
{"kind":"stepStart","feature":"cows","title":"Then the cow weighs <weight> kg"}
{"kind":"stepEnd","feature":"cows","status":"Pending"}
{"kind":"exampleEnd","feature":"cows"}
{"kind":"scenarioOutlineEnd","feature":"cows"}
{"kind":"featureEnd","feature":"cows"}
`

func runEvents(t *testing.T, cfg config.Config, input string) (string, string) {
	t.Helper()
	var buf bytes.Buffer
	id, err := RunEvents(context.Background(), &buf, cfg, strings.NewReader(input), RunOptions{Input: "test"})
	require.NoError(t, err)
	return id, buf.String()
}

func TestRun_RequiresInit(t *testing.T) {
	inTempDir(t)
	var buf bytes.Buffer
	_, err := RunEvents(context.Background(), &buf, config.Default(), strings.NewReader(cowEvents), RunOptions{})
	assert.ErrorIs(t, err, errNotInitialized)
}

func TestRun_WritesReport(t *testing.T) {
	inTempDir(t)
	runInit(t)

	id, out := runEvents(t, config.Default(), cowEvents)

	assert.Contains(t, out, "Cows")
	assert.Contains(t, out, "2 passed, 1 failed, 1 pending")
	assert.Contains(t, out, id)

	f, err := os.Open(filepath.Join(".ftreport", "reports", id+".json"))
	require.NoError(t, err)
	defer f.Close()
	features, err := model.ReadJSON(f)
	require.NoError(t, err)
	require.Len(t, features, 1)

	cows := features[0]
	assert.Equal(t, model.StatusFailed, cows.Status())
	require.NotNil(t, cows.Background)
	require.Len(t, cows.Scenarios, 2)
	outline := cows.Scenarios[1]
	assert.Equal(t, model.KindOutline, outline.Kind)
	require.Len(t, outline.Executions, 2)
	assert.Equal(t, "the cow weighs 500 kg", outline.Executions[1].Steps[0].Title)
	assert.Equal(t, "no milk", cows.Scenarios[0].Steps[1].Error.Message)
}

func TestRun_StoresHistory(t *testing.T) {
	inTempDir(t)
	runInit(t)

	id, _ := runEvents(t, config.Default(), cowEvents)

	sqlDB, err := db.Open(dbPath)
	require.NoError(t, err)
	defer sqlDB.Close()

	run, features, err := db.LoadRun(sqlDB, id)
	require.NoError(t, err)
	assert.Equal(t, model.Statistics{Passed: 2, Failed: 1, Pending: 1}, run.Statistics)
	assert.Equal(t, filepath.Join(".ftreport", "reports", id+".json"), run.Source)
	require.Len(t, features, 1)
}

func TestRun_JSONFormat(t *testing.T) {
	inTempDir(t)
	runInit(t)
	cfg := config.Default()
	cfg.Format = config.FormatJSON

	_, out := runEvents(t, cfg, cowEvents)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &raw))
	require.Len(t, raw, 1)
	assert.Equal(t, "Cows", raw[0]["title"])
}

func TestRun_CustomOutPath(t *testing.T) {
	inTempDir(t)
	runInit(t)

	var buf bytes.Buffer
	_, err := RunEvents(context.Background(), &buf, config.Default(), strings.NewReader(cowEvents), RunOptions{Out: "out/report.json"})
	require.NoError(t, err)

	_, err = os.Stat("out/report.json")
	assert.NoError(t, err)
}

func TestRun_SequenceErrorAborts(t *testing.T) {
	inTempDir(t)
	runInit(t)

	input := `{"kind":"featureStart","title":"Cows"}
{"kind":"stepEnd","status":"Pass"}
`
	var buf bytes.Buffer
	_, err := RunEvents(context.Background(), &buf, config.Default(), strings.NewReader(input), RunOptions{})
	var se *aggregator.SequenceError
	require.True(t, errors.As(err, &se))
	assert.Contains(t, err.Error(), "line 2")

	matches, _ := filepath.Glob(".ftreport/reports/*.json")
	assert.Empty(t, matches)
}

func TestRun_DiscardsUnfinishedFeatures(t *testing.T) {
	inTempDir(t)
	runInit(t)

	input := cowEvents + `{"kind":"featureStart","feature":"pigs","title":"Pigs"}
{"kind":"scenarioStart","feature":"pigs","title":"Oinking"}
`
	_, out := runEvents(t, config.Default(), input)

	assert.Contains(t, out, "Cows")
	assert.NotContains(t, out, "Pigs")
	assert.Contains(t, out, "1 features")
}
