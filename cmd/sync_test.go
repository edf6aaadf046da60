package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chriserin/ftreport/internal/config"
	"github.com/chriserin/ftreport/internal/db"
	"github.com/chriserin/ftreport/internal/model"
)

func runSync(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, RunSync(&buf, config.Default()))
	return buf.String()
}

func writeReportFile(t *testing.T, name string, features []*model.Feature) string {
	t.Helper()
	path := filepath.Join(".ftreport", "reports", name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, model.WriteJSON(f, features))
	return path
}

func countRuns(t *testing.T) int {
	t.Helper()
	sqlDB, err := db.Open(dbPath)
	require.NoError(t, err)
	defer sqlDB.Close()
	var count int
	require.NoError(t, sqlDB.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&count))
	return count
}

func TestSync_RegistersNewReport(t *testing.T) {
	inTempDir(t)
	runInit(t)
	path := writeReportFile(t, "ci.json", []*model.Feature{{ID: 1, Title: "Cows", Statistics: model.Statistics{Passed: 2}}})

	out := runSync(t)

	assert.Contains(t, out, "new  "+path)
	assert.Contains(t, out, "synced 1 reports")
	assert.Equal(t, 1, countRuns(t))
}

func TestSync_KeepsUUIDFileNames(t *testing.T) {
	inTempDir(t)
	runInit(t)
	const id = "6f1c2b8e-3d4a-4f5b-9c6d-7e8f9a0b1c2d"
	writeReportFile(t, id+".json", nil)

	runSync(t)

	sqlDB, err := db.Open(dbPath)
	require.NoError(t, err)
	defer sqlDB.Close()
	_, _, err = db.LoadRun(sqlDB, id)
	assert.NoError(t, err)
}

func TestSync_ShowsTrackedReports(t *testing.T) {
	inTempDir(t)
	runInit(t)
	path := writeReportFile(t, "ci.json", nil)

	runSync(t)
	out := runSync(t)

	assert.Contains(t, out, "trk  "+path)
	assert.Equal(t, 1, countRuns(t))
}

func TestSync_RunReportsAreTracked(t *testing.T) {
	inTempDir(t)
	runInit(t)
	id, _ := runEvents(t, config.Default(), cowEvents)

	out := runSync(t)

	assert.Contains(t, out, "trk  "+filepath.Join(".ftreport", "reports", id+".json"))
	assert.Equal(t, 1, countRuns(t))
}

func TestSync_NoReports(t *testing.T) {
	inTempDir(t)
	runInit(t)

	out := runSync(t)

	assert.Contains(t, out, "synced 0 reports")
}

func TestSync_IgnoresNonJSONFiles(t *testing.T) {
	inTempDir(t)
	runInit(t)
	require.NoError(t, os.WriteFile(filepath.Join(".ftreport", "reports", "notes.txt"), []byte("hi"), 0o644))

	out := runSync(t)

	assert.NotContains(t, out, "notes.txt")
}

func TestSync_InvalidReport(t *testing.T) {
	inTempDir(t)
	runInit(t)
	require.NoError(t, os.WriteFile(filepath.Join(".ftreport", "reports", "bad.json"), []byte("{"), 0o644))

	var buf bytes.Buffer
	err := RunSync(&buf, config.Default())
	assert.ErrorContains(t, err, "bad.json")
}

func TestSync_RequiresInit(t *testing.T) {
	inTempDir(t)
	var buf bytes.Buffer
	assert.ErrorIs(t, RunSync(&buf, config.Default()), errNotInitialized)
}
