// Package yeargraph models one year of the co-citation dataset as an undirected
// keyword graph and exposes the graph operations topic extraction relies on:
// induced subgraphs, degrees, connected components, and clique percolation.
package yeargraph

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Graph is an undirected, weighted keyword graph backed by gonum.
type Graph struct {
	g     *simple.WeightedUndirectedGraph
	ids   map[string]int64
	names map[int64]string
}

// Edge is a weighted keyword pair.
type Edge struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Weight float64 `json:"weight"`
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		g:     simple.NewWeightedUndirectedGraph(0, 0),
		ids:   make(map[string]int64),
		names: make(map[int64]string),
	}
}

// AddKeyword adds a keyword node if it is not already present and returns its node ID.
func (g *Graph) AddKeyword(keyword string) int64 {
	if id, ok := g.ids[keyword]; ok {
		return id
	}
	n := g.g.NewNode()
	g.g.AddNode(n)
	g.ids[keyword] = n.ID()
	g.names[n.ID()] = keyword
	return n.ID()
}

// SetEdge adds or replaces the edge between two keywords. Self loops are ignored.
func (g *Graph) SetEdge(a, b string, weight float64) {
	if a == b {
		g.AddKeyword(a)
		return
	}
	from := g.AddKeyword(a)
	to := g.AddKeyword(b)
	g.g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(from), T: simple.Node(to), W: weight})
}

// Len returns the number of keywords.
func (g *Graph) Len() int {
	return len(g.ids)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	return g.g.Edges().Len()
}

// Has reports whether the keyword is a node of the graph.
func (g *Graph) Has(keyword string) bool {
	_, ok := g.ids[keyword]
	return ok
}

// Keywords returns every keyword, sorted.
func (g *Graph) Keywords() []string {
	keys := make([]string, 0, len(g.ids))
	for k := range g.ids {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Degree returns the number of neighbours of a keyword, 0 if it is absent.
func (g *Graph) Degree(keyword string) int {
	id, ok := g.ids[keyword]
	if !ok {
		return 0
	}
	return g.g.From(id).Len()
}

// Neighbors returns the neighbours of a keyword, sorted.
func (g *Graph) Neighbors(keyword string) []string {
	id, ok := g.ids[keyword]
	if !ok {
		return nil
	}
	return g.namesOf(graph.NodesOf(g.g.From(id)))
}

// Weight returns the weight of the edge between two keywords.
func (g *Graph) Weight(a, b string) (float64, bool) {
	from, okA := g.ids[a]
	to, okB := g.ids[b]
	if !okA || !okB || !g.g.HasEdgeBetween(from, to) {
		return 0, false
	}
	return g.g.Weight(from, to)
}

// Edges returns every edge with From < To, sorted.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	it := g.g.WeightedEdges()
	for it.Next() {
		e := it.WeightedEdge()
		a, b := g.names[e.From().ID()], g.names[e.To().ID()]
		if b < a {
			a, b = b, a
		}
		edges = append(edges, Edge{From: a, To: b, Weight: e.Weight()})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}

// Induced returns the subgraph induced by the given keywords. Keywords that are
// not in the graph are ignored.
func (g *Graph) Induced(keywords []string) *Graph {
	sub := New()
	keep := make(map[int64]bool, len(keywords))
	for _, k := range keywords {
		if id, ok := g.ids[k]; ok {
			keep[id] = true
			sub.AddKeyword(k)
		}
	}

	for _, e := range g.Edges() {
		if keep[g.ids[e.From]] && keep[g.ids[e.To]] {
			sub.SetEdge(e.From, e.To, e.Weight)
		}
	}
	return sub
}

// Components returns the connected components, each sorted, ordered by their
// first keyword.
func (g *Graph) Components() [][]string {
	var comps [][]string
	for _, nodes := range topo.ConnectedComponents(g.g) {
		comps = append(comps, g.namesOf(nodes))
	}
	sortGroups(comps)
	return comps
}

// Cliques returns the maximal cliques, each sorted.
func (g *Graph) Cliques() [][]string {
	var cliques [][]string
	for _, nodes := range topo.BronKerbosch(g.g) {
		cliques = append(cliques, g.namesOf(nodes))
	}
	sortGroups(cliques)
	return cliques
}

// Underlying exposes the gonum graph and the node ID of each keyword.
func (g *Graph) Underlying() (*simple.WeightedUndirectedGraph, map[string]int64) {
	return g.g, g.ids
}

// Name returns the keyword for a gonum node ID.
func (g *Graph) Name(id int64) string {
	return g.names[id]
}

func (g *Graph) namesOf(nodes []graph.Node) []string {
	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		names = append(names, g.names[n.ID()])
	}
	sort.Strings(names)
	return names
}

// sortGroups orders keyword groups by first keyword, then size, then content.
func sortGroups(groups [][]string) {
	sort.Slice(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		for k := 0; k < len(a) && k < len(b); k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return len(a) < len(b)
	})
}
