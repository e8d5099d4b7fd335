package rank

import (
	"testing"

	"github.com/matsen/topictrace/internal/yeargraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// star returns a graph with hub connected to every leaf.
func star(leaves ...string) *yeargraph.Graph {
	g := yeargraph.New()
	for _, l := range leaves {
		g.SetEdge("hub", l, 1)
	}
	return g
}

func TestTopK_HubFirst(t *testing.T) {
	g := star("a", "b", "c", "d")

	for _, metric := range ValidMetrics {
		t.Run(metric, func(t *testing.T) {
			scores, err := TopK(g, metric, 2)
			require.NoError(t, err)
			require.Len(t, scores, 2)
			assert.Equal(t, "hub", scores[0].Keyword)
			// Leaves tie; the alphabetically first wins.
			assert.Equal(t, "a", scores[1].Keyword)
			assert.Greater(t, scores[0].Score, scores[1].Score)
		})
	}
}

func TestTopK_KLargerThanGraph(t *testing.T) {
	scores, err := TopK(star("a"), MetricDegree, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "hub"}, Keywords(scores))
}

func TestTopK_InvalidMetric(t *testing.T) {
	_, err := TopK(star("a"), "eigenvector", 1)
	require.Error(t, err)
}

func TestPageRank_SumsToOne(t *testing.T) {
	scores := PageRank(star("a", "b", "c"), DefaultDamping, DefaultTolerance)
	var total float64
	for _, s := range scores {
		total += s
	}
	assert.InDelta(t, 1.0, total, 1e-3)
	assert.Len(t, scores, 4)
}

func TestPageRank_Empty(t *testing.T) {
	assert.Empty(t, PageRank(yeargraph.New(), DefaultDamping, DefaultTolerance))
}

func TestDegreeCentrality(t *testing.T) {
	scores := DegreeCentrality(star("a", "b"))
	assert.InDelta(t, 1.0, scores["hub"], 1e-9)
	assert.InDelta(t, 0.5, scores["a"], 1e-9)
}

func TestBetweenness_IncludesZeroNodes(t *testing.T) {
	scores := Betweenness(star("a", "b"))
	assert.Len(t, scores, 3)
	assert.InDelta(t, 0.0, scores["a"], 1e-9)
	assert.Greater(t, scores["hub"], 0.0)
}
