package main

import (
	"context"
	"strconv"

	"github.com/matsen/topictrace/internal/config"
	"github.com/matsen/topictrace/internal/pipeline"
	"github.com/matsen/topictrace/internal/rank"
	"github.com/matsen/topictrace/internal/spread"
	"github.com/matsen/topictrace/internal/storage"
	"github.com/matsen/topictrace/internal/topic"
	"github.com/matsen/topictrace/internal/yeargraph"
	"github.com/spf13/cobra"
)

// yearK overrides the configured k for the single-year commands
var yearK int

// graphAuthors switches the graph command to the ds-2 collaboration graph
var graphAuthors bool

func init() {
	for _, cmd := range []*cobra.Command{graphCmd, seedsCmd, spreadCmd, topicsCmd} {
		cmd.Flags().IntVar(&yearK, "k", 0, "Seeds and topic budget (overrides config)")
		rootCmd.AddCommand(cmd)
	}
	graphCmd.Flags().BoolVar(&graphAuthors, "authors", false, "Show the author collaboration graph instead")
}

var graphCmd = &cobra.Command{
	Use:   "graph <year>",
	Short: "Show the keyword co-citation graph of a year",
	Long: `Show the keyword co-citation graph of a year with the configured edge
weights, along with its connected components. With --authors, show the ds-2
author collaboration graph, weighted by collaboration count.`,
	Args: cobra.ExactArgs(1),
	RunE: runGraph,
}

var seedsCmd = &cobra.Command{
	Use:   "seeds <year>",
	Short: "Show the top-k seed keywords of a year",
	Long: `Show the top-k keywords of a year ranked by the configured metric
(pagerank, betweenness, or degree).`,
	Args: cobra.ExactArgs(1),
	RunE: runSeeds,
}

var spreadCmd = &cobra.Command{
	Use:   "spread <year>",
	Short: "Show the keywords influenced from a year's seeds",
	Long: `Propagate influence from the seeds of a year with the configured model
and show the keywords activated at each iteration.`,
	Args: cobra.ExactArgs(1),
	RunE: runSpread,
}

var topicsCmd = &cobra.Command{
	Use:   "topics <year>",
	Short: "Extract the topics of a year",
	Args:  cobra.ExactArgs(1),
	RunE:  runTopics,
}

// GraphResult is the response for the graph command.
type GraphResult struct {
	Year       int              `json:"year"`
	Kind       string           `json:"kind"`
	Nodes      int              `json:"nodes"`
	Edges      []yeargraph.Edge `json:"edges"`
	Components [][]string       `json:"components"`
}

// newGraphResult summarizes a graph. Empty lists are kept non-nil for JSON.
func newGraphResult(year int, kind string, g *yeargraph.Graph) GraphResult {
	res := GraphResult{
		Year:       year,
		Kind:       kind,
		Nodes:      g.Len(),
		Edges:      g.Edges(),
		Components: g.Components(),
	}
	if res.Edges == nil {
		res.Edges = []yeargraph.Edge{}
	}
	if res.Components == nil {
		res.Components = [][]string{}
	}
	return res
}

// SeedsResult is the response for the seeds command.
type SeedsResult struct {
	Year   int          `json:"year"`
	Metric string       `json:"metric"`
	Seeds  []rank.Score `json:"seeds"`
}

// SpreadResult is the response for the spread command.
type SpreadResult struct {
	Year       int                 `json:"year"`
	Model      string              `json:"model"`
	Iterations map[string][]string `json:"iterations"`
	Total      int                 `json:"total"`
}

// TopicsResult is the response for the topics command.
type TopicsResult struct {
	Year   int           `json:"year"`
	Topics []topic.Topic `json:"topics"`
	Count  int           `json:"count"`
}

// parseYear parses a year argument, exits on error.
func parseYear(arg string) int {
	year, err := strconv.Atoi(arg)
	if err != nil || year <= 0 {
		exitWithError(ExitError, "invalid year: %s", arg)
	}
	return year
}

// mustOpenPipeline resolves config, opens the cache, and creates a pipeline,
// exits on error. The caller is responsible for closing the returned DB.
func mustOpenPipeline() (*pipeline.Pipeline, *config.Config, *storage.DB) {
	root := mustFindProject()
	cfg := mustLoadConfig(root)
	if yearK != 0 {
		cfg.K = yearK
		if err := cfg.Validate(); err != nil {
			exitWithError(ExitConfigError, "invalid config: %v", err)
		}
	}

	db := mustOpenDatabase(root)
	mustHaveRecords(db)

	return pipeline.New(db, cfg, newLogger(cfg)), cfg, db
}

func runGraph(cmd *cobra.Command, args []string) error {
	year := parseYear(args[0])
	p, _, db := mustOpenPipeline()
	defer db.Close()

	build := p.Graph
	noun := "keywords"
	if graphAuthors {
		build = p.CollaborationGraph
		noun = "authors"
	}
	g, err := build(year)
	if err != nil {
		exitWithError(exitCodeFor(err), "building graph: %v", err)
	}

	res := newGraphResult(year, noun, g)
	if humanOutput {
		outputHuman("Year %d: %d %s, %d edges, %d components\n",
			year, res.Nodes, noun, len(res.Edges), len(res.Components))
		for _, e := range res.Edges {
			outputHuman("  %s -- %s  %.4g\n", e.From, e.To, e.Weight)
		}
		outputHuman("Components:\n")
		for i, c := range res.Components {
			outputHuman("  %d. (%d) %s\n", i+1, len(c), formatKeywords(c, 20))
		}
	} else {
		outputJSON(res)
	}
	return nil
}

func runSeeds(cmd *cobra.Command, args []string) error {
	year := parseYear(args[0])
	p, cfg, db := mustOpenPipeline()
	defer db.Close()

	g, err := p.Graph(year)
	if err != nil {
		exitWithError(exitCodeFor(err), "building graph: %v", err)
	}
	seeds, err := rank.TopK(g, cfg.Metric, cfg.K)
	if err != nil {
		exitWithError(ExitError, "ranking keywords: %v", err)
	}

	if humanOutput {
		outputHuman("Top %d keywords of %d by %s:\n", cfg.K, year, cfg.Metric)
		for i, s := range seeds {
			outputHuman("  %d. %s (%.4f)\n", i+1, s.Keyword, s.Score)
		}
	} else {
		outputJSON(SeedsResult{Year: year, Metric: cfg.Metric, Seeds: seeds})
	}
	return nil
}

func runSpread(cmd *cobra.Command, args []string) error {
	year := parseYear(args[0])
	p, cfg, db := mustOpenPipeline()
	defer db.Close()

	res, err := p.Analyze(context.Background(), year)
	if err != nil {
		exitWithError(exitCodeFor(err), "spreading influence: %v", err)
	}

	if humanOutput {
		outputHuman("Influence from %d seeds in %d (%s model):\n", len(res.Seeds), year, cfg.Model)
		for _, it := range res.Influenced.Iterations() {
			outputHuman("  %-8s %s\n", spread.Label(it)+":", formatKeywords(res.Influenced[it], 20))
		}
		outputHuman("Total: %d keywords\n", res.Influenced.Total())
	} else {
		iterations := make(map[string][]string, len(res.Influenced))
		for it, kws := range res.Influenced {
			iterations[spread.Label(it)] = kws
		}
		outputJSON(SpreadResult{
			Year:       year,
			Model:      cfg.Model,
			Iterations: iterations,
			Total:      res.Influenced.Total(),
		})
	}
	return nil
}

func runTopics(cmd *cobra.Command, args []string) error {
	year := parseYear(args[0])
	p, _, db := mustOpenPipeline()
	defer db.Close()

	res, err := p.ExtractYear(context.Background(), year)
	if err != nil {
		exitWithError(exitCodeFor(err), "extracting topics: %v", err)
	}

	if humanOutput {
		outputHuman("Topics of %d (%d):\n", year, len(res.Topics))
		printTopicsHuman(res.Topics)
	} else {
		topics := res.Topics
		if topics == nil {
			topics = []topic.Topic{}
		}
		outputJSON(TopicsResult{Year: year, Topics: topics, Count: len(topics)})
	}
	return nil
}
