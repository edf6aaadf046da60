package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/chriserin/ftreport/internal/aggregator"
	"github.com/chriserin/ftreport/internal/config"
	"github.com/chriserin/ftreport/internal/db"
	"github.com/chriserin/ftreport/internal/events"
	"github.com/chriserin/ftreport/internal/model"
	"github.com/chriserin/ftreport/internal/ui"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	outFlag       string
	runFormatFlag string
)

var runCmd = &cobra.Command{
	Use:   "run [events.ndjson|-]",
	Short: "Aggregate a host event stream into a report and store it",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(runFormatFlag)
		if err != nil {
			return err
		}
		in, source, err := openEvents(args)
		if err != nil {
			return err
		}
		defer in.Close()
		_, err = RunEvents(cmd.Context(), cmd.OutOrStdout(), cfg, in, RunOptions{Out: outFlag, Input: source})
		return err
	},
}

func init() {
	runCmd.Flags().StringVarP(&outFlag, "out", "o", "", "Report file (default <reports>/<run-id>.json)")
	runCmd.Flags().StringVar(&runFormatFlag, "format", "", "Output format: text or json")
	rootCmd.AddCommand(runCmd)
}

// RunOptions tunes a single aggregation run.
type RunOptions struct {
	Out   string // report path; empty means the reports directory
	Input string // where events came from, for logging
	Now   func() time.Time
}

func openEvents(args []string) (io.ReadCloser, string, error) {
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, "", fmt.Errorf("opening events: %w", err)
		}
		return f, args[0], nil
	}
	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return nil, "", errors.New("no events: pass a file or pipe an event stream on stdin")
	}
	return io.NopCloser(os.Stdin), "stdin", nil
}

// RunEvents aggregates the event stream, writes the report, records the
// run in history and prints a summary. It returns the new run's id.
func RunEvents(ctx context.Context, w io.Writer, cfg config.Config, in io.Reader, opts RunOptions) (string, error) {
	if err := requireInit(cfg); err != nil {
		return "", err
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	started := now()

	agg := aggregator.New(aggregator.WithLogger(logger))
	n, err := events.Decode(ctx, in, agg.Apply)
	if err != nil {
		return "", fmt.Errorf("aggregating events: %w", err)
	}
	for _, key := range agg.Open() {
		agg.Discard(key)
	}
	features := agg.Features()
	logger.Info("aggregated events", "input", opts.Input, "events", n, "features", len(features))

	runID := uuid.NewString()
	path := opts.Out
	if path == "" {
		path = filepath.Join(cfg.ReportsDir(), runID+".json")
	}
	if err := writeReport(path, features); err != nil {
		return "", err
	}

	sqlDB, err := db.Open(cfg.DatabasePath())
	if err != nil {
		return "", fmt.Errorf("opening database: %w", err)
	}
	defer sqlDB.Close()

	if err := db.SaveRun(sqlDB, db.Run{ID: runID, Source: path, StartedAt: started}, features); err != nil {
		return "", err
	}

	if cfg.Format == config.FormatJSON {
		return runID, model.WriteJSON(w, features)
	}
	var totals model.Statistics
	for _, f := range features {
		ui.FeatureLine(w, f)
		totals.Add(f.Statistics)
	}
	ui.TotalsLine(w, runID, len(features), totals)
	return runID, nil
}

func writeReport(path string, features []*model.Feature) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	if err := model.WriteJSON(f, features); err != nil {
		f.Close()
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return f.Close()
}
