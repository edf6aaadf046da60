package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/chriserin/ftreport/internal/config"
	"github.com/chriserin/ftreport/internal/db"
	"github.com/chriserin/ftreport/internal/ui"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the scenario status distribution of the latest run",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig("")
		if err != nil {
			return err
		}
		return RunStatusReport(cmd.OutOrStdout(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func RunStatusReport(w io.Writer, cfg config.Config) error {
	if err := requireInit(cfg); err != nil {
		return err
	}

	sqlDB, err := db.Open(cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer sqlDB.Close()

	runID, err := db.LatestRunID(sqlDB)
	if errors.Is(err, db.ErrRunNotFound) {
		fmt.Fprintln(w, "Scenarios: 0")
		return nil
	}
	if err != nil {
		return err
	}

	counts, err := db.ScenarioStatusCounts(sqlDB, runID)
	if err != nil {
		return err
	}
	total := 0
	for _, c := range counts {
		total += c.Count
	}

	fmt.Fprintf(w, "Run: %s\n", runID)
	fmt.Fprintf(w, "Scenarios: %d\n", total)
	for _, c := range counts {
		ui.StatusCountLine(w, c.Status, c.Count)
	}
	return nil
}
