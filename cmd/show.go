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

var showFormatFlag string

var showCmd = &cobra.Command{
	Use:   "show [<run-id>|latest]",
	Short: "Show a stored run's features, scenarios and steps",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(showFormatFlag)
		if err != nil {
			return err
		}
		id := "latest"
		if len(args) == 1 {
			id = args[0]
		}
		return RunShow(cmd.OutOrStdout(), cfg, id)
	},
}

func init() {
	showCmd.Flags().StringVar(&showFormatFlag, "format", "", "Output format: text or json")
	rootCmd.AddCommand(showCmd)
}

func RunShow(w io.Writer, cfg config.Config, id string) error {
	if err := requireInit(cfg); err != nil {
		return err
	}

	sqlDB, err := db.Open(cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer sqlDB.Close()

	if id == "latest" {
		if id, err = db.LatestRunID(sqlDB); err != nil {
			return err
		}
	}
	run, features, err := db.LoadRun(sqlDB, id)
	if err != nil {
		return err
	}

	if cfg.Format == config.FormatJSON {
		return model.WriteJSON(w, features)
	}
	fmt.Fprintf(w, "run %s  %s\n\n", run.ID, run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	ui.Tree(w, features)
	fmt.Fprintln(w)
	ui.TotalsLine(w, run.ID, len(features), run.Statistics)
	return nil
}
