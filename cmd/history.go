package cmd

import (
	"fmt"
	"io"

	"github.com/chriserin/ftreport/internal/config"
	"github.com/chriserin/ftreport/internal/db"
	"github.com/chriserin/ftreport/internal/model"
	"github.com/chriserin/ftreport/internal/ui"
	"github.com/spf13/cobra"
)

var historyStatusFlag string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig("")
		if err != nil {
			return err
		}
		return RunHistory(cmd.OutOrStdout(), cfg, historyStatusFlag)
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyStatusFlag, "status", "", "Filter by run status (Pass, Failed, Pending, Unknown)")
	rootCmd.AddCommand(historyCmd)
}

func RunHistory(w io.Writer, cfg config.Config, statusFilter string) error {
	if err := requireInit(cfg); err != nil {
		return err
	}

	var want model.Status
	if statusFilter != "" {
		s, err := model.ParseStatus(statusFilter)
		if err != nil {
			return err
		}
		want = s
	}

	sqlDB, err := db.Open(cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer sqlDB.Close()

	runs, err := db.ListRuns(sqlDB)
	if err != nil {
		return err
	}

	var results []db.Run
	for _, r := range runs {
		if want != "" && r.Statistics.Status() != want {
			continue
		}
		results = append(results, r)
	}
	if len(results) == 0 {
		fmt.Fprintln(w, "no runs")
		return nil
	}

	idWidth := 0
	for _, r := range results {
		if len(r.ID) > idWidth {
			idWidth = len(r.ID)
		}
	}
	for _, r := range results {
		ui.RunRow(w, r.ID, r.StartedAt, r.Statistics, idWidth)
	}
	return nil
}
