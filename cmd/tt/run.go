package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/matsen/topictrace/internal/pipeline"
	"github.com/matsen/topictrace/internal/report"
	"github.com/matsen/topictrace/internal/storage"
	"github.com/matsen/topictrace/internal/topic"
	"github.com/spf13/cobra"
)

var (
	runOutput    string
	runK         int
	runThreshold float64
	runNoMerge   bool
)

func init() {
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "Trace output mode: emit, persist, or silent (overrides config)")
	runCmd.Flags().IntVar(&runK, "k", 0, "Seeds and topic budget (overrides config)")
	runCmd.Flags().Float64VarP(&runThreshold, "threshold", "t", 0, "Similarity threshold in (0, 1] (overrides config)")
	runCmd.Flags().BoolVar(&runNoMerge, "no-merge", false, "Trace without merging matches into macro-topics")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Extract topics for 2000-2018 and trace them into macro-topics",
	Long: `Extract the topics of every year from 2000 to 2018 and trace each year's
topics through the following years.

Trace blocks go where --output says:
  emit     print each block as it is traced
  persist  append blocks to tracing_k<K>_t<T>.log and macro-topics to
           main_k<K>.log in the output directory, and record the run in
           runs.jsonl (see tt history)
  silent   keep only the final macro-topic list

A year that fails extraction aborts the run with exit code 4.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

// RunResult is the response for the run command.
type RunResult struct {
	RunID       string             `json:"run_id,omitempty"`
	K           int                `json:"k"`
	Threshold   float64            `json:"threshold"`
	Merge       bool               `json:"merge"`
	MacroTopics []topic.MacroTopic `json:"macro_topics"`
	Count       int                `json:"count"`
	TraceLog    string             `json:"trace_log,omitempty"`
	MacroLog    string             `json:"macro_log,omitempty"`
	Elapsed     string             `json:"elapsed"`
}

func runRun(cmd *cobra.Command, args []string) error {
	start := time.Now()
	root := mustFindProject()
	cfg := mustLoadConfig(root)

	if runOutput != "" {
		cfg.TraceOutput = runOutput
	}
	if runK != 0 {
		cfg.K = runK
	}
	if cmd.Flags().Changed("threshold") {
		cfg.SimilarityThreshold = runThreshold
	}
	if runNoMerge {
		cfg.Merge = false
	}
	if err := cfg.Validate(); err != nil {
		exitWithError(ExitConfigError, "invalid config: %v", err)
	}
	mode, err := report.ParseMode(cfg.TraceOutput)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	db := mustOpenDatabase(root)
	defer db.Close()
	mustHaveRecords(db)

	// Emitted blocks must not interleave with the JSON result.
	var w io.Writer = os.Stdout
	if !humanOutput {
		w = os.Stderr
	}
	outDir := cfg.ResolveOutputDir(root)
	openReporter := func() (report.Reporter, error) {
		return report.New(mode, w, report.Options{
			Dir:       outDir,
			K:         cfg.K,
			Threshold: cfg.SimilarityThreshold,
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(db, cfg, newLogger(cfg))
	macros, reporter, err := traceRun(ctx, p, openReporter)
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}

	result := RunResult{
		K:           cfg.K,
		Threshold:   cfg.SimilarityThreshold,
		Merge:       cfg.Merge,
		MacroTopics: macros,
		Count:       len(macros),
	}
	if f, ok := reporter.(*report.File); ok {
		result.RunID = f.RunID
		result.TraceLog = f.Path
		result.MacroLog, err = report.AppendMacroTopics(outDir, macros, cfg.K, f.RunID)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		run := storage.RunRecord{
			RunID:       f.RunID,
			At:          start.UTC(),
			K:           cfg.K,
			Threshold:   cfg.SimilarityThreshold,
			Merge:       cfg.Merge,
			Model:       cfg.Model,
			Metric:      cfg.Metric,
			MacroTopics: macros,
		}
		if err := storage.AppendRun(filepath.Join(outDir, storage.RunsFile), run); err != nil {
			exitWithError(ExitError, "recording run: %v", err)
		}
	}
	result.Elapsed = formatDuration(time.Since(start))

	if humanOutput {
		if err := report.WriteMacroTopics(os.Stdout, macros, cfg.K); err != nil {
			exitWithError(ExitError, "writing macro-topics: %v", err)
		}
		if result.TraceLog != "" {
			outputHuman("\nTrace log: %s\nMacro-topic log: %s\n", result.TraceLog, result.MacroLog)
		}
		outputHuman("Completed in %s\n", result.Elapsed)
	} else {
		if result.MacroTopics == nil {
			result.MacroTopics = []topic.MacroTopic{}
		}
		outputJSON(result)
	}

	return nil
}

// traceRun extracts the timeline and traces it into the reporter returned by
// open. The reporter is opened only once every year has been extracted, so a
// failed extraction leaves no trace output behind.
func traceRun(ctx context.Context, p *pipeline.Pipeline, open func() (report.Reporter, error)) ([]topic.MacroTopic, report.Reporter, error) {
	m, err := p.Timeline(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	reporter, err := open()
	if err != nil {
		return nil, nil, fmt.Errorf("opening trace output: %w", err)
	}
	macros, err := p.Trace(m, reporter)
	if cerr := reporter.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return nil, nil, err
	}
	return macros, reporter, nil
}
