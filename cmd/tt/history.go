package main

import (
	"os"
	"path/filepath"

	"github.com/matsen/topictrace/internal/report"
	"github.com/matsen/topictrace/internal/storage"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List persisted runs or show one run's macro-topics",
	Long: `List the runs recorded by 'tt run --output persist', newest last.

With a run ID (or a unique prefix of one), show that run's macro-topics.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

// RunSummary is one entry of the history listing.
type RunSummary struct {
	RunID     string  `json:"run_id"`
	At        string  `json:"at"`
	K         int     `json:"k"`
	Threshold float64 `json:"threshold"`
	Merge     bool    `json:"merge"`
	Count     int     `json:"count"`
}

func runHistory(cmd *cobra.Command, args []string) error {
	root := mustFindProject()
	cfg := mustLoadConfig(root)

	runs, err := storage.ReadRuns(filepath.Join(cfg.ResolveOutputDir(root), storage.RunsFile))
	if err != nil {
		exitWithError(ExitDataError, "reading run history: %v", err)
	}

	if len(args) == 1 {
		idx, ok := storage.FindRun(runs, args[0])
		if !ok {
			exitWithError(ExitError, "no unique run matches %q", args[0])
		}
		run := runs[idx]
		if humanOutput {
			outputHuman("Run %s at %s (threshold %g, merge %t)\n\n",
				run.RunID, run.At.Format("2006-01-02 15:04:05"), run.Threshold, run.Merge)
			if err := report.WriteMacroTopics(os.Stdout, run.MacroTopics, run.K); err != nil {
				exitWithError(ExitError, "writing macro-topics: %v", err)
			}
		} else {
			outputJSON(run)
		}
		return nil
	}

	summaries := make([]RunSummary, 0, len(runs))
	for _, run := range runs {
		summaries = append(summaries, RunSummary{
			RunID:     run.RunID,
			At:        run.At.Format("2006-01-02T15:04:05Z07:00"),
			K:         run.K,
			Threshold: run.Threshold,
			Merge:     run.Merge,
			Count:     len(run.MacroTopics),
		})
	}

	if humanOutput {
		if len(summaries) == 0 {
			outputHuman("No persisted runs\n")
			return nil
		}
		for _, s := range summaries {
			outputHuman("%s  %s  k=%d  t=%g  merge=%t  %d macro-topics\n",
				s.RunID[:min(8, len(s.RunID))], s.At, s.K, s.Threshold, s.Merge, s.Count)
		}
	} else {
		outputJSON(summaries)
	}
	return nil
}
