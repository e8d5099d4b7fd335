// Package main provides the tt CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/matsen/topictrace/internal/config"
	"github.com/matsen/topictrace/internal/storage"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// logLevel overrides the configured log level when set
var logLevel string

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		// This ensures Cobra errors (like missing required flags) are visible
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tt",
	Short: "Trace research topics across a keyword co-citation timeline",
	Long: `tt extracts research topics from yearly keyword co-citation graphs and
traces them across 2000-2018 into macro-topics.

For each year the top-k keywords are ranked as seeds, influence is spread
from them through the graph, and the influenced keywords are grouped into
topics by clique percolation. Topics of consecutive years that share enough
keywords are merged into macro-topics.

The ds-1 and ds-2 TSV files are the source of truth; tt rebuild loads them
into an ephemeral SQLite cache. All commands output JSON by default.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Load .env file if present (for TOPICTRACE_* overrides)
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides config")
	rootCmd.Version = Version
}

// mustFindProject finds the project from TOPICTRACE_ROOT or the current
// directory, exits on error.
func mustFindProject() string {
	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	root, err := config.FindProject(cwd)
	if err != nil {
		exitWithError(ExitConfigError, "%v\n\nRun 'tt init' to create a project.", err)
	}
	return root
}

// mustLoadConfig resolves and validates configuration, exits on error.
func mustLoadConfig(root string) *config.Config {
	cfg, err := config.Resolve(root)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		exitWithError(ExitConfigError, "invalid config: %v", err)
	}
	return cfg
}

// mustOpenDatabase opens the record cache, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase(root string) *storage.DB {
	if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}
	db, err := storage.OpenDB(config.DBPath(root))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}

// mustHaveRecords exits when the cache has never been built.
func mustHaveRecords(db *storage.DB) {
	counts, err := db.Counts()
	if err != nil {
		exitWithError(ExitError, "reading cache: %v", err)
	}
	if counts.CoCitations == 0 {
		exitWithError(ExitDataError, "record cache is empty\n\nRun 'tt rebuild' to load the datasets.")
	}
}

// newLogger creates the stderr logger for a command.
func newLogger(cfg *config.Config) zerolog.Logger {
	return config.NewLogger(cfg.LogLevel, os.Stderr)
}
