// Package viz renders a year's keyword graph, with its topics highlighted, as
// a self-contained Cytoscape.js page.
package viz

import "github.com/matsen/topictrace/internal/topic"

// GraphData contains all data needed to render the visualization.
type GraphData struct {
	Year   int           `json:"year"`
	Nodes  []Node        `json:"nodes"`
	Edges  []Edge        `json:"edges"`
	Topics []topic.Topic `json:"topics"`
}

// Node represents a keyword in the graph.
type Node struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Degree int    `json:"degree"`
	Seed   bool   `json:"seed"`

	// Indexes into the year's topic list; empty for keywords outside every topic.
	Topics []int `json:"topics"`
	// First topic index, or -1. Cytoscape selectors cannot match on arrays.
	Topic int `json:"topic"`
}

// Edge represents a weighted co-citation between two keywords.
type Edge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
}

// IsEmpty returns true if the graph has no nodes.
func (g *GraphData) IsEmpty() bool {
	return len(g.Nodes) == 0
}
