package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jward/hookscope/internal/logging"
)

var (
	flagConfig  string
	flagDB      string
	flagFormat  string
	flagVerbose bool
)

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "hookscope",
	Short:         "Plan and inspect hookscope instrumentation",
	Long:          "Hookscope validates a harness configuration, lists the files it would instrument and the exports it would wrap in each.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFormat(flagFormat)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: $HOOKSCOPE_CONFIG or hookscope.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "export cache path (default: .hookscope/cache.db next to the config)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "json", "output format: json|text")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log discovery and cache activity to stderr")

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(exportsCmd)
	rootCmd.AddCommand(validateCmd)
}

func newLogger() *slog.Logger {
	if flagVerbose {
		return logging.New(slog.LevelDebug)
	}
	return logging.New(slog.LevelWarn)
}

// resolveConfigPath returns the config path from --config, then
// HOOKSCOPE_CONFIG, then the default.
func resolveConfigPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	if env := os.Getenv("HOOKSCOPE_CONFIG"); env != "" {
		return env
	}
	return "hookscope.yaml"
}

// resolveDBPath returns the cache path from --db or the default beside the
// config file.
func resolveDBPath(configPath string) string {
	if flagDB != "" {
		return flagDB
	}
	return filepath.Join(filepath.Dir(configPath), ".hookscope", "cache.db")
}
