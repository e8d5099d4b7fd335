package main

import (
	"strings"

	"github.com/matsen/topictrace/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set configuration values in .topictrace/config.yml.

Usage:
  tt config                          # Show all config
  tt config k                        # Get specific value
  tt config k 10                     # Set value
  tt config ds1-path ~/data/ds-1.tsv

Keys:
  ds1_path              Keyword co-citation TSV
  ds2_path              Author collaboration TSV
  k                     Seeds per year and topic budget
  metric                Seed ranking (pagerank, betweenness, degree)
  model                 Propagation model (tipping, cascade)
  threshold_strategy    Activation thresholds (degree, half, degree-neg)
  weights               Edge weights (none, number, fraction)
  similarity_threshold  Tracing similarity threshold in (0, 1]
  merge                 Merge consecutive topics into macro-topics
  trace_output          Trace blocks: emit, persist, or silent
  output_dir            Directory for persisted logs
  seed                  RNG seed for the cascade model
  log_level             debug, info, warn, or error

Values shown are the file's; environment overrides are not applied.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	root := mustFindProject()

	cfg, err := config.Load(root)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	// No args: show all config
	if len(args) == 0 {
		if humanOutput {
			for _, key := range config.Keys {
				v, _ := cfg.Get(key)
				outputHuman("%-21s %s\n", key+":", v)
			}
		} else {
			outputJSON(cfg)
		}
		return nil
	}

	key := normalizeKey(args[0])

	// One arg: get specific value
	if len(args) == 1 {
		v, err := cfg.Get(key)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if humanOutput {
			outputHuman("%s\n", v)
		} else {
			outputJSON(map[string]string{key: v})
		}
		return nil
	}

	// Two args: set value
	value := args[1]
	if key == "ds1_path" || key == "ds2_path" || key == "output_dir" {
		value = config.ExpandPath(value)
	}
	if err := cfg.Set(key, value); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if err := cfg.Validate(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	if err := cfg.Save(root); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if humanOutput {
		outputHuman("Updated %s to %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{
			Status: "updated",
			Key:    key,
			Value:  value,
		})
	}

	return nil
}

// normalizeKey converts key formats (ds1-path, DS1_PATH) to the YAML key
func normalizeKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "-", "_")
	return key
}
