package cmd

import (
	"log/slog"
	"os"

	"github.com/chriserin/ftreport/internal/config"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool

	logger = slog.New(slog.DiscardHandler)
)

var rootCmd = &cobra.Command{
	Use:          "ftreport",
	Short:        "ftreport — aggregate BDD run events into feature reports",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default "+config.FileName+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log aggregation steps")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file, applies flags and sets up logging on stderr.
func loadConfig(format string) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	config.ApplyFlags(&cfg, config.FlagValues{Verbose: verbose, Format: format})
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	level, _ := cfg.Level()
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return cfg, nil
}

func requireInit(cfg config.Config) error {
	if _, err := os.Stat(cfg.DatabasePath()); os.IsNotExist(err) {
		return errNotInitialized
	}
	return nil
}
