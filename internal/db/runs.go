package db

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/chriserin/ftreport/internal/model"
)

// timeLayout is fixed width so started_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound is returned when a run id is not in the history.
var ErrRunNotFound = errors.New("run not found")

// Run is one stored aggregation result.
type Run struct {
	ID         string
	Source     string // report file the run was written to or imported from
	StartedAt  time.Time
	Statistics model.Statistics
}

// StatusCount is the number of scenarios with a given status.
type StatusCount struct {
	Status model.Status
	Count  int
}

// SaveRun stores the run, its report document and per-feature and
// per-scenario summaries in one transaction.
func SaveRun(sqlDB *sql.DB, run Run, features []*model.Feature) error {
	var report bytes.Buffer
	if err := model.WriteJSON(&report, features); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	var stats model.Statistics
	for _, f := range features {
		stats.Add(f.Statistics)
	}

	tx, err := sqlDB.Begin()
	if err != nil {
		return fmt.Errorf("beginning run %s: %w", run.ID, err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO runs (id, source, started_at, passed, failed, pending, report) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.StartedAt.UTC().Format(timeLayout), stats.Passed, stats.Failed, stats.Pending, report.String())
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", run.ID, err)
	}

	for _, f := range features {
		res, err := tx.Exec(`INSERT INTO features (run_id, feature_id, filename, title, status, passed, failed, pending, execution_time)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, f.ID, f.Filename, f.Title, string(f.Status()),
			f.Statistics.Passed, f.Statistics.Failed, f.Statistics.Pending, f.ExecutionTime)
		if err != nil {
			return fmt.Errorf("inserting feature %q: %w", f.Title, err)
		}
		featureRow, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading feature row id: %w", err)
		}
		for _, sc := range f.AllScenarios() {
			_, err := tx.Exec(`INSERT INTO scenarios (feature_row, scenario_id, kind, title, status) VALUES (?, ?, ?, ?, ?)`,
				featureRow, sc.ID, string(sc.Kind), sc.Title, string(sc.Status()))
			if err != nil {
				return fmt.Errorf("inserting scenario %q: %w", sc.Title, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run %s: %w", run.ID, err)
	}
	return nil
}

// ListRuns returns stored runs, newest first.
func ListRuns(sqlDB *sql.DB) ([]Run, error) {
	rows, err := sqlDB.Query(`SELECT id, source, started_at, passed, failed, pending FROM runs ORDER BY started_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// LoadRun returns a stored run and its report rehydrated into model entities.
func LoadRun(sqlDB *sql.DB, id string) (Run, []*model.Feature, error) {
	row := sqlDB.QueryRow(`SELECT id, source, started_at, passed, failed, pending FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, nil, err
	}

	var report string
	if err := sqlDB.QueryRow(`SELECT report FROM runs WHERE id = ?`, id).Scan(&report); err != nil {
		return Run{}, nil, fmt.Errorf("reading report for %s: %w", id, err)
	}
	features, err := model.ReadJSON(bytes.NewBufferString(report))
	if err != nil {
		return Run{}, nil, fmt.Errorf("run %s: %w", id, err)
	}
	return r, features, nil
}

// HasSource reports whether a run was already stored from source.
func HasSource(sqlDB *sql.DB, source string) (bool, error) {
	var id string
	err := sqlDB.QueryRow(`SELECT id FROM runs WHERE source = ?`, source).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying %s: %w", source, err)
	}
	return true, nil
}

// LatestRunID returns the newest run's id, or ErrRunNotFound when the
// history is empty.
func LatestRunID(sqlDB *sql.DB) (string, error) {
	var id string
	err := sqlDB.QueryRow(`SELECT id FROM runs ORDER BY started_at DESC, rowid DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrRunNotFound
	}
	if err != nil {
		return "", fmt.Errorf("querying latest run: %w", err)
	}
	return id, nil
}

// ScenarioStatusCounts groups a run's scenarios by status, most common first.
// Outline executions count individually; outlines themselves do not.
func ScenarioStatusCounts(sqlDB *sql.DB, runID string) ([]StatusCount, error) {
	rows, err := sqlDB.Query(`
		SELECT s.status, COUNT(*) AS cnt
		FROM scenarios s
		JOIN features f ON s.feature_row = f.id
		WHERE f.run_id = ?
		GROUP BY s.status
		ORDER BY cnt DESC, s.status
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying status counts: %w", err)
	}
	defer rows.Close()

	var counts []StatusCount
	for rows.Next() {
		var c StatusCount
		var status string
		if err := rows.Scan(&status, &c.Count); err != nil {
			return nil, fmt.Errorf("scanning status row: %w", err)
		}
		c.Status = model.Status(status)
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var r Run
	var startedAt string
	if err := s.Scan(&r.ID, &r.Source, &startedAt, &r.Statistics.Passed, &r.Statistics.Failed, &r.Statistics.Pending); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r, err
		}
		return r, fmt.Errorf("scanning run: %w", err)
	}
	t, err := time.Parse(timeLayout, startedAt)
	if err != nil {
		return r, fmt.Errorf("run %s: bad started_at %q: %w", r.ID, startedAt, err)
	}
	r.StartedAt = t
	return r, nil
}
