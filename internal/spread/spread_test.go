package spread

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// adjGraph is a minimal undirected adjacency-list graph.
type adjGraph map[string][]string

func newAdjGraph(edges ...[2]string) adjGraph {
	g := adjGraph{}
	for _, e := range edges {
		g[e[0]] = append(g[e[0]], e[1])
		g[e[1]] = append(g[e[1]], e[0])
	}
	return g
}

func (g adjGraph) Keywords() []string {
	keys := make([]string, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}
	return keys
}

func (g adjGraph) Neighbors(k string) []string {
	return append([]string(nil), g[k]...)
}

func (g adjGraph) Degree(k string) int {
	return len(g[k])
}

func TestTipping_PathDegreeStrategy(t *testing.T) {
	// a - b - c - d: with threshold 1/deg one active neighbour is enough.
	g := newAdjGraph([2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "d"})

	got, err := Tipping(g, []string{"a"}, StrategyDegree)
	require.NoError(t, err)

	assert.Equal(t, Influenced{
		0: {"a"},
		1: {"b"},
		2: {"c"},
		3: {"d"},
	}, got)
	assert.Equal(t, 4, got.Total())
	assert.Equal(t, []string{"a", "b", "c", "d"}, got.Union())
	assert.Equal(t, []int{0, 1, 2, 3}, got.Iterations())
}

func TestTipping_BelowThresholdStops(t *testing.T) {
	g := newAdjGraph([2]string{"hub", "w"}, [2]string{"hub", "x"}, [2]string{"hub", "y"}, [2]string{"hub", "z"})

	got, err := Tipping(g, []string{"x"}, StrategyHalf)
	require.NoError(t, err)

	// One of four hub neighbours is active, and the other leaves only see the hub.
	assert.Equal(t, Influenced{0: {"x"}}, got)
}

func TestTipping_DegreeNegLeavesFlip(t *testing.T) {
	// Degree-1 keywords get threshold 0 and activate in the first step.
	g := newAdjGraph([2]string{"hub", "x"}, [2]string{"hub", "y"}, [2]string{"hub", "z"})

	got, err := Tipping(g, []string{"x"}, StrategyDegreeNeg)
	require.NoError(t, err)

	assert.Equal(t, []string{"y", "z"}, got[1])
	assert.Equal(t, []string{"hub"}, got[2])
}

func TestTipping_HalfSynchronous(t *testing.T) {
	g := newAdjGraph([2]string{"hub", "x"}, [2]string{"hub", "y"}, [2]string{"hub", "z"})

	got, err := Tipping(g, []string{"x", "y"}, StrategyHalf)
	require.NoError(t, err)

	assert.Equal(t, []string{"x", "y"}, got.Seeds())
	assert.Equal(t, []string{"hub"}, got[1])
	assert.Equal(t, []string{"z"}, got[2])
}

func TestTipping_NoSeedsInGraph(t *testing.T) {
	g := newAdjGraph([2]string{"a", "b"})
	_, err := Tipping(g, []string{"missing"}, StrategyDegree)
	require.ErrorIs(t, err, ErrNoSeeds)
}

func TestCascade_CertainActivation(t *testing.T) {
	// A zero-draw source never exceeds the 0.5 threshold.
	g := newAdjGraph([2]string{"a", "b"}, [2]string{"b", "c"})
	rng := rand.New(zeroSource{})

	got, err := Cascade(g, []string{"a"}, StrategyHalf, rng)
	require.NoError(t, err)

	assert.Equal(t, Influenced{0: {"a"}, 1: {"b"}, 2: {"c"}}, got)
}

func TestCascade_NoActivation(t *testing.T) {
	g := newAdjGraph([2]string{"a", "b"}, [2]string{"b", "c"})
	rng := rand.New(maxSource{})

	got, err := Cascade(g, []string{"a"}, StrategyHalf, rng)
	require.NoError(t, err)
	assert.Equal(t, Influenced{0: {"a"}}, got)
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("degree-neg")
	require.NoError(t, err)
	assert.Equal(t, StrategyDegreeNeg, s)

	_, err = ParseStrategy("bogus")
	require.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestRun_UnknownModel(t *testing.T) {
	g := newAdjGraph([2]string{"a", "b"})
	_, err := Run("sir", g, []string{"a"}, StrategyDegree, 1)
	require.ErrorIs(t, err, ErrUnknownModel)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "iteration 0", Label(0))
}

// zeroSource always yields 0, so Float64 returns 0.
type zeroSource struct{}

func (zeroSource) Uint64() uint64 { return 0 }

// maxSource always yields the largest value, so Float64 is just below 1.
type maxSource struct{}

func (maxSource) Uint64() uint64 { return ^uint64(0) }
