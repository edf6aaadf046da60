package cmd

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chriserin/ftreport/internal/config"
	"github.com/chriserin/ftreport/internal/db"
	"github.com/chriserin/ftreport/internal/model"
	"github.com/chriserin/ftreport/internal/ui"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Scan the reports directory and register reports missing from history",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig("")
		if err != nil {
			return err
		}
		return RunSync(cmd.OutOrStdout(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func RunSync(w io.Writer, cfg config.Config) error {
	if err := requireInit(cfg); err != nil {
		return err
	}

	sqlDB, err := db.Open(cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer sqlDB.Close()

	dir := cfg.ReportsDir()
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return fmt.Errorf("scanning %s: %w", dir, err)
	}
	sort.Strings(matches)

	count := 0
	for _, path := range matches {
		known, err := db.HasSource(sqlDB, path)
		if err != nil {
			return err
		}
		if known {
			ui.TrkLine(w, path)
			count++
			continue
		}
		if err := importReport(sqlDB, path); err != nil {
			return err
		}
		ui.NewLine(w, path)
		count++
	}

	ui.SummaryLine(w, count)
	return nil
}

// importReport stores a report file as a run. A file named <uuid>.json
// keeps that id; any other name gets a fresh one.
func importReport(sqlDB *sql.DB, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	features, err := model.ReadJSON(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	id := strings.TrimSuffix(filepath.Base(path), ".json")
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	logger.Debug("importing report", "path", path, "run", id, "features", len(features))
	return db.SaveRun(sqlDB, db.Run{ID: id, Source: path, StartedAt: info.ModTime()}, features)
}
