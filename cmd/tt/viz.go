package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/matsen/topictrace/internal/extract"
	"github.com/matsen/topictrace/internal/rank"
	"github.com/matsen/topictrace/internal/viz"
	"github.com/spf13/cobra"
)

var vizOutput string
var vizLayout string

func init() {
	vizCmd.Flags().StringVarP(&vizOutput, "output", "o", "", "Output file path (default: stdout)")
	vizCmd.Flags().StringVar(&vizLayout, "layout", "force", "Layout algorithm: force, circle, or grid")
	vizCmd.Flags().IntVar(&yearK, "k", 0, "Seeds and topic budget (overrides config)")
	rootCmd.AddCommand(vizCmd)
}

var vizCmd = &cobra.Command{
	Use:   "viz <year>",
	Short: "Generate a keyword graph visualization for a year",
	Long: `Generate an interactive HTML visualization of a year's keyword graph.

Keywords are coloured by the first topic they belong to and seeds are drawn
with a thick border. Edge width follows the edge weight. When the year's
topics fail validation the graph is drawn without topics.

Examples:
  # Generate HTML to stdout
  tt viz 2004 > graph.html

  # Generate to file with a circular layout
  tt viz 2004 --layout circle --output graph.html`,
	Args: cobra.ExactArgs(1),
	RunE: runViz,
}

func runViz(cmd *cobra.Command, args []string) error {
	year := parseYear(args[0])
	p, _, db := mustOpenPipeline()
	defer db.Close()

	res, err := p.ExtractYear(context.Background(), year)
	if err != nil {
		var xerr *extract.Error
		if !errors.As(err, &xerr) {
			exitWithError(exitCodeFor(err), "extracting topics: %v", err)
		}
		fmt.Fprintf(os.Stderr, "warning: %v; drawing without topics\n", err)
	}

	graph := viz.FromYearGraph(year, res.Graph, res.Topics)
	graph.MarkSeeds(rank.Keywords(res.Seeds))

	// Generate HTML (validates options internally)
	html, err := viz.GenerateHTML(graph, viz.HTMLOptions{Layout: vizLayout})
	if err != nil {
		exitWithError(ExitError, "generating HTML: %v", err)
	}

	if vizOutput == "" {
		fmt.Print(html)
		return nil
	}
	if err := os.WriteFile(vizOutput, []byte(html), 0644); err != nil {
		exitWithError(ExitError, "writing output file: %v", err)
	}
	if humanOutput {
		outputHuman("Visualization of %d written to %s\n", year, vizOutput)
	} else {
		outputJSON(map[string]string{"output": vizOutput})
	}
	return nil
}
