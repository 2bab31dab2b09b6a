package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"budget/internal/backend"
	"budget/internal/cli"
	"budget/internal/log"
)

var (
	flagBackend  string
	flagDataFile string
	flagVerbose  bool
	flagJSON     bool
)

// app is built before any subcommand runs and closed by main.
var app *cli.App

var rootCmd = &cobra.Command{
	Use:           "budget",
	Short:         "Personal budget tracker",
	Long:          "Track salary, expenses and income, with net salary computed from the tax tables.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runShow,

	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cli.LoadEnvFile()
		if flagBackend != "" {
			os.Setenv("DATA_BACKEND", flagBackend)
		}
		if flagDataFile != "" {
			os.Setenv("DATA_FILE_PATH", flagDataFile)
		}

		cfg, err := cli.LoadAndValidateConfig()
		if err != nil {
			return err
		}

		// Commands print their results on stdout, so logs go to stderr and
		// stay quiet unless asked for. serve logs at the configured level.
		logCfg := log.DefaultConfig()
		logCfg.Output = os.Stderr
		logCfg.Level = slog.LevelWarn
		if flagVerbose || cmd == serveCmd {
			logCfg.Level = log.ParseLevel(cfg.LogLevel)
		}
		if cmd == serveCmd {
			logCfg.Output = os.Stdout
		}
		logger := log.New(logCfg)
		log.SetDefault(logger)

		app, err = cli.Bootstrap(cmd.Context(), cfg, logger)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "Storage backend: "+backend.BackendNames()+" (overrides DATA_BACKEND)")
	rootCmd.PersistentFlags().StringVar(&flagDataFile, "data-file", "", "JSON data file for the file backend (overrides DATA_FILE_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log at the configured LOG_LEVEL on stderr")
}

func main() {
	err := rootCmd.Execute()
	if app != nil {
		if cerr := app.Close(); cerr != nil {
			slog.Error("Failed to close ledger service", log.FieldError, cerr)
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// position converts a 1-based number shown in listings to an index.
func position(arg, what string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s number %q", what, arg)
	}
	return n - 1, nil
}
