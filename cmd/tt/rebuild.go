package main

import (
	"github.com/matsen/topictrace/internal/storage"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the record cache from the datasets",
	Long: `Rebuild the SQLite record cache from the ds-1 and ds-2 TSV files.

Use this after the datasets change or if the cache becomes corrupted.
A failed rebuild leaves the previous cache in place.`,
	RunE: runRebuild,
}

// RebuildResult is the response for the rebuild command.
type RebuildResult struct {
	Status string         `json:"status"`
	Counts storage.Counts `json:"counts"`
	Years  []int          `json:"years"`
}

func runRebuild(cmd *cobra.Command, args []string) error {
	root := mustFindProject()
	cfg := mustLoadConfig(root)

	if cfg.DS1Path == "" || cfg.DS2Path == "" {
		exitWithError(ExitConfigError, "dataset paths not configured\n\nSet them with 'tt config ds1_path <file>' and 'tt config ds2_path <file>'.")
	}

	db := mustOpenDatabase(root)
	defer db.Close()

	counts, err := db.RebuildFromTSV(cfg.DS1Path, cfg.DS2Path)
	if err != nil {
		exitWithError(ExitDataError, "rebuilding cache: %v", err)
	}

	years, err := db.Years()
	if err != nil {
		exitWithError(ExitError, "reading years: %v", err)
	}

	logRebuild(newLogger(cfg), counts, years)

	if humanOutput {
		outputHuman("Rebuilt record cache with %d co-citations and %d collaborations\n",
			counts.CoCitations, counts.Collaborations)
		if len(years) > 0 {
			outputHuman("Years: %d-%d\n", years[0], years[len(years)-1])
		}
	} else {
		outputJSON(RebuildResult{
			Status: "rebuilt",
			Counts: counts,
			Years:  years,
		})
	}

	return nil
}

// logRebuild records the outcome of a rebuild.
func logRebuild(logger zerolog.Logger, counts storage.Counts, years []int) {
	logger.Info().
		Int("cocitations", counts.CoCitations).
		Int("collaborations", counts.Collaborations).
		Int("years", len(years)).
		Msg("rebuilt record cache")
}
