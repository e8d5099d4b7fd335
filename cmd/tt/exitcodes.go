package main

import (
	"context"
	"errors"

	"github.com/matsen/topictrace/internal/dataset"
	"github.com/matsen/topictrace/internal/extract"
	"github.com/matsen/topictrace/internal/pipeline"
	"github.com/matsen/topictrace/internal/spread"
	"github.com/matsen/topictrace/internal/topic"
)

// Exit codes
const (
	ExitSuccess      = 0   // Success
	ExitError        = 1   // General error (invalid arguments, runtime failure)
	ExitConfigError  = 2   // Configuration error (no project, invalid config)
	ExitDataError    = 3   // Data error (malformed TSV, empty cache, missing year)
	ExitExtractError = 4   // A year's topics failed validation
	ExitInterrupted  = 130 // Cancelled by SIGINT
)

// exitCodeFor maps a pipeline error onto an exit code.
func exitCodeFor(err error) int {
	var xerr *extract.Error
	switch {
	case errors.As(err, &xerr):
		return ExitExtractError
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.Is(err, pipeline.ErrNoRecords),
		errors.Is(err, topic.ErrMissingYear),
		errors.Is(err, spread.ErrNoSeeds),
		errors.Is(err, dataset.ErrFieldCount),
		errors.Is(err, dataset.ErrBadYear),
		errors.Is(err, dataset.ErrBadAuthors),
		errors.Is(err, dataset.ErrBadCount),
		errors.Is(err, dataset.ErrEmptyKey):
		return ExitDataError
	default:
		return ExitError
	}
}
