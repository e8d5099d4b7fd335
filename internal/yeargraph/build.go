package yeargraph

import (
	"fmt"
	"sort"

	"github.com/matsen/topictrace/internal/dataset"
)

// Weighting selects how keyword edge weights are computed.
type Weighting string

// Weighting strategies.
const (
	// WeightNone gives every edge weight 1.
	WeightNone Weighting = "none"
	// WeightNumber sums the per-author co-citation counts of the pair.
	WeightNumber Weighting = "number"
	// WeightFraction is the share of co-citations made by a group of authors who
	// all collaborated with one another that year.
	WeightFraction Weighting = "fraction"
)

// ValidWeightings lists the supported weighting strategies.
var ValidWeightings = []Weighting{WeightNone, WeightNumber, WeightFraction}

// ParseWeighting validates a weighting name.
func ParseWeighting(s string) (Weighting, error) {
	for _, w := range ValidWeightings {
		if string(w) == s {
			return w, nil
		}
	}
	return "", fmt.Errorf("invalid weighting %q (valid: %v)", s, ValidWeightings)
}

// Build creates the keyword graph of one year from its ds-1 records. The ds-2
// collaborations of the same year are only used by WeightFraction.
func Build(cocitations []dataset.CoCitation, collaborations []dataset.Collaboration, weighting Weighting) (*Graph, error) {
	if _, err := ParseWeighting(string(weighting)); err != nil {
		return nil, err
	}

	var partners map[string]map[string]bool
	if weighting == WeightFraction {
		partners = collaborationIndex(collaborations)
	}

	g := New()
	for _, c := range cocitations {
		var w float64
		switch weighting {
		case WeightNumber:
			w = c.Total()
		case WeightFraction:
			w = coAuthoredFraction(c, partners)
		default:
			w = 1
		}
		g.SetEdge(c.Key1, c.Key2, w)
	}
	return g, nil
}

// BuildCollaboration creates the author graph of one year from its ds-2
// records, weighted by collaboration count.
func BuildCollaboration(collaborations []dataset.Collaboration) *Graph {
	g := New()
	for _, c := range collaborations {
		g.SetEdge(c.Author1, c.Author2, c.Count)
	}
	return g
}

func collaborationIndex(collaborations []dataset.Collaboration) map[string]map[string]bool {
	idx := make(map[string]map[string]bool)
	add := func(a, b string) {
		if idx[a] == nil {
			idx[a] = make(map[string]bool)
		}
		idx[a][b] = true
	}
	for _, c := range collaborations {
		add(c.Author1, c.Author2)
		add(c.Author2, c.Author1)
	}
	return idx
}

// coAuthoredFraction returns the share of a pair's co-citations contributed by
// the largest group of its authors who all collaborated with one another.
// Authors with no recorded collaboration at all are left out of the grouping.
func coAuthoredFraction(c dataset.CoCitation, partners map[string]map[string]bool) float64 {
	total := c.Total()
	if total == 0 {
		return 0
	}

	authors := make([]string, 0, len(c.Authors))
	for a := range c.Authors {
		if len(partners[a]) > 0 {
			authors = append(authors, a)
		}
	}
	sort.Strings(authors)

	sub := New()
	for i, a := range authors {
		sub.AddKeyword(a)
		for _, b := range authors[i+1:] {
			if partners[a][b] {
				sub.SetEdge(a, b, 1)
			}
		}
	}

	best := largestGroup(sub.Cliques())
	var coAuthored float64
	for _, a := range best {
		coAuthored += c.Authors[a]
	}
	return coAuthored / total
}

// largestGroup picks the biggest group, preferring the earliest on ties.
func largestGroup(groups [][]string) []string {
	var best []string
	for _, g := range groups {
		if len(g) > len(best) {
			best = g
		}
	}
	return best
}
