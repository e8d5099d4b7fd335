package viz

import (
	"github.com/matsen/topictrace/internal/topic"
	"github.com/matsen/topictrace/internal/yeargraph"
)

// FromYearGraph builds the visualization data of a year graph. Each node lists
// the topics it belongs to; topics may overlap.
func FromYearGraph(year int, g *yeargraph.Graph, topics []topic.Topic) *GraphData {
	membership := make(map[string][]int)
	for i, t := range topics {
		for _, kw := range t {
			membership[kw] = append(membership[kw], i)
		}
	}

	keywords := g.Keywords()
	nodes := make([]Node, 0, len(keywords))
	for _, kw := range keywords {
		nodes = append(nodes, newKeywordNode(kw, g.Degree(kw), membership[kw]))
	}

	graphEdges := g.Edges()
	edges := make([]Edge, 0, len(graphEdges))
	for _, e := range graphEdges {
		edges = append(edges, Edge{Source: e.From, Target: e.To, Weight: e.Weight})
	}

	return &GraphData{Year: year, Nodes: nodes, Edges: edges, Topics: topics}
}

// MarkSeeds flags the given keywords as propagation seeds.
func (g *GraphData) MarkSeeds(seeds []string) {
	set := make(map[string]bool, len(seeds))
	for _, s := range seeds {
		set[s] = true
	}
	for i := range g.Nodes {
		g.Nodes[i].Seed = set[g.Nodes[i].ID]
	}
}

func newKeywordNode(keyword string, degree int, topics []int) Node {
	first := -1
	if len(topics) > 0 {
		first = topics[0]
	}
	if topics == nil {
		topics = []int{}
	}
	return Node{
		ID:     keyword,
		Label:  keyword,
		Degree: degree,
		Topics: topics,
		Topic:  first,
	}
}
