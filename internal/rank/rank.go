// Package rank scores the keywords of a year graph with a centrality metric and
// selects the top-k as propagation seeds.
package rank

import (
	"fmt"
	"sort"

	"github.com/matsen/topictrace/internal/yeargraph"
	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
)

// Metric names.
const (
	MetricPageRank    = "pagerank"
	MetricBetweenness = "betweenness"
	MetricDegree      = "degree"
)

// ValidMetrics lists the supported ranking metrics.
var ValidMetrics = []string{MetricPageRank, MetricBetweenness, MetricDegree}

// PageRank parameters.
const (
	DefaultDamping   = 0.85
	DefaultTolerance = 1e-6
)

// Score pairs a keyword with its metric value.
type Score struct {
	Keyword string  `json:"keyword"`
	Score   float64 `json:"score"`
}

// Keywords extracts the keyword of each score, keeping order.
func Keywords(scores []Score) []string {
	keys := make([]string, len(scores))
	for i, s := range scores {
		keys[i] = s.Keyword
	}
	return keys
}

// TopK scores every keyword with the named metric and returns the k highest,
// ties broken by keyword.
func TopK(g *yeargraph.Graph, metric string, k int) ([]Score, error) {
	var scores map[string]float64
	switch metric {
	case MetricPageRank:
		scores = PageRank(g, DefaultDamping, DefaultTolerance)
	case MetricBetweenness:
		scores = Betweenness(g)
	case MetricDegree:
		scores = DegreeCentrality(g)
	default:
		return nil, fmt.Errorf("invalid metric %q (valid: %v)", metric, ValidMetrics)
	}
	return top(scores, k), nil
}

// PageRank computes edge-weighted PageRank. Each undirected edge is followed in
// both directions; edges with non-positive weight are not followed.
func PageRank(g *yeargraph.Graph, damping, tolerance float64) map[string]float64 {
	if g.Len() == 0 {
		return map[string]float64{}
	}
	undirected, _ := g.Underlying()

	directed := simple.NewWeightedDirectedGraph(0, 0)
	nodes := undirected.Nodes()
	for nodes.Next() {
		directed.AddNode(simple.Node(nodes.Node().ID()))
	}
	edges := undirected.WeightedEdges()
	for edges.Next() {
		e := edges.WeightedEdge()
		if e.Weight() <= 0 {
			continue
		}
		from, to := e.From().ID(), e.To().ID()
		directed.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(from), T: simple.Node(to), W: e.Weight()})
		directed.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(to), T: simple.Node(from), W: e.Weight()})
	}

	return byKeyword(g, network.PageRank(directed, damping, tolerance))
}

// Betweenness computes unweighted betweenness centrality.
func Betweenness(g *yeargraph.Graph) map[string]float64 {
	undirected, _ := g.Underlying()
	scores := byKeyword(g, network.Betweenness(undirected))
	// gonum omits zero-centrality nodes.
	for _, k := range g.Keywords() {
		if _, ok := scores[k]; !ok {
			scores[k] = 0
		}
	}
	return scores
}

// DegreeCentrality is each keyword's degree divided by n-1.
func DegreeCentrality(g *yeargraph.Graph) map[string]float64 {
	scores := make(map[string]float64, g.Len())
	if g.Len() <= 1 {
		for _, k := range g.Keywords() {
			scores[k] = 1
		}
		return scores
	}
	norm := float64(g.Len() - 1)
	for _, k := range g.Keywords() {
		scores[k] = float64(g.Degree(k)) / norm
	}
	return scores
}

func byKeyword(g *yeargraph.Graph, byID map[int64]float64) map[string]float64 {
	scores := make(map[string]float64, len(byID))
	for id, s := range byID {
		scores[g.Name(id)] = s
	}
	return scores
}

func top(scores map[string]float64, k int) []Score {
	ranked := make([]Score, 0, len(scores))
	for kw, s := range scores {
		ranked = append(ranked, Score{Keyword: kw, Score: s})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Keyword < ranked[j].Keyword
	})
	if k >= 0 && k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked
}
