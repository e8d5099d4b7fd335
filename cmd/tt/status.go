package main

import (
	"os"
	"time"

	"github.com/matsen/topictrace/internal/config"
	"github.com/matsen/topictrace/internal/storage"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the record cache",
	Long: `Show the dataset paths and time of the last rebuild, the cached record
counts, and the years covered.

The cache is stale when the configured dataset paths differ from the ones it
was built from, or when a dataset was modified after the rebuild.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

// StatusResult is the response for the status command.
type StatusResult struct {
	Root  string       `json:"root"`
	Cache storage.Info `json:"cache"`
	Years []int        `json:"years"`
	Stale bool         `json:"stale"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	root := mustFindProject()
	cfg := mustLoadConfig(root)
	db := mustOpenDatabase(root)
	defer db.Close()

	info, err := db.Info()
	if err != nil {
		exitWithError(ExitError, "reading cache info: %v", err)
	}
	years, err := db.Years()
	if err != nil {
		exitWithError(ExitError, "reading years: %v", err)
	}

	result := StatusResult{
		Root:  root,
		Cache: info,
		Years: years,
		Stale: isStale(cfg, info),
	}

	if humanOutput {
		outputHuman("Project: %s\n", root)
		if info.RebuiltAt == "" {
			outputHuman("Cache: empty (run 'tt rebuild')\n")
			return nil
		}
		outputHuman("Cache rebuilt %s\n", info.RebuiltAt)
		outputHuman("  ds-1: %s (%d co-citations)\n", info.DS1Path, info.Counts.CoCitations)
		outputHuman("  ds-2: %s (%d collaborations)\n", info.DS2Path, info.Counts.Collaborations)
		if len(years) > 0 {
			outputHuman("Years: %d-%d (%d)\n", years[0], years[len(years)-1], len(years))
		}
		if result.Stale {
			outputHuman("Cache is stale (run 'tt rebuild')\n")
		}
	} else {
		if result.Years == nil {
			result.Years = []int{}
		}
		outputJSON(result)
	}
	return nil
}

// isStale reports whether the cache no longer reflects the configured datasets.
// An empty cache is not stale.
func isStale(cfg *config.Config, info storage.Info) bool {
	if info.RebuiltAt == "" {
		return false
	}
	if cfg.DS1Path != info.DS1Path || cfg.DS2Path != info.DS2Path {
		return true
	}
	rebuilt, err := time.Parse(time.RFC3339, info.RebuiltAt)
	if err != nil {
		return true
	}
	for _, path := range []string{info.DS1Path, info.DS2Path} {
		st, err := os.Stat(path)
		if err != nil || st.ModTime().After(rebuilt.Add(time.Second)) {
			return true
		}
	}
	return false
}
