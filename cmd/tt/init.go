package main

import (
	"os"

	"github.com/matsen/topictrace/internal/config"
	"github.com/spf13/cobra"
)

var (
	initDS1 string
	initDS2 string
)

func init() {
	initCmd.Flags().StringVar(&initDS1, "ds1", "", "Path to the keyword co-citation TSV (ds-1)")
	initCmd.Flags().StringVar(&initDS2, "ds2", "", "Path to the author collaboration TSV (ds-2)")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new topictrace project",
	Long: `Initialize a new topictrace project in the current directory.

Creates:
  .topictrace/
  ├── config.yml      # Default config
  └── cache/          # Record cache (gitignored)`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	if config.IsProject(root) {
		exitWithError(ExitError, "directory already contains a topictrace project")
	}

	if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
		exitWithError(ExitError, "creating .topictrace directory: %v", err)
	}

	cfg := config.Default()
	cfg.DS1Path = config.ExpandPath(initDS1)
	cfg.DS2Path = config.ExpandPath(initDS2)
	if err := cfg.Validate(); err != nil {
		os.RemoveAll(config.ProjectPath(root))
		exitWithError(ExitConfigError, "invalid config: %v", err)
	}
	if err := cfg.Save(root); err != nil {
		exitWithError(ExitError, "creating config.yml: %v", err)
	}

	if humanOutput {
		outputHuman("Initialized topictrace project in %s\n", root)
	} else {
		outputJSON(StatusResponse{
			Status: "initialized",
			Path:   root,
		})
	}

	return nil
}
