package topic

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTopic(t *testing.T) {
	got := NewTopic("c", "a", "b", "a")
	assert.Equal(t, Topic{"a", "b", "c"}, got)
	assert.True(t, got.Contains("b"))
	assert.False(t, got.Contains("d"))
}

func TestFraction(t *testing.T) {
	tests := []struct {
		name string
		a, b Topic
		want float64
	}{
		{"identical", NewTopic("a", "b"), NewTopic("a", "b"), 1},
		{"disjoint", NewTopic("a", "b"), NewTopic("c", "d"), 0},
		{"two of three", NewTopic("a", "b", "c"), NewTopic("b", "c", "d"), 2.0 / 3.0},
		{"contained", NewTopic("a", "b"), NewTopic("a", "b", "c", "d"), 1},
		{"container", NewTopic("a", "b", "c", "d"), NewTopic("a", "b"), 0.5},
		{"empty a", Topic{}, NewTopic("a"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fraction(tt.a, tt.b)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}

func TestSimilar_Symmetric(t *testing.T) {
	pairs := [][2]Topic{
		{NewTopic("a", "b", "c", "d"), NewTopic("a", "b")},
		{NewTopic("a", "b", "c"), NewTopic("c", "d", "e")},
		{NewTopic("a", "b"), NewTopic("x", "y")},
		{NewTopic("a", "b", "c"), NewTopic("b", "c", "d")},
	}

	for _, p := range pairs {
		assert.Equal(t, Similar(p[0], p[1], DefaultThreshold), Similar(p[1], p[0], DefaultThreshold),
			"Similar(%v, %v) not symmetric", p[0], p[1])
	}
}

func TestSimilar(t *testing.T) {
	// Fraction of the larger topic is only 0.4 but the smaller one is fully contained.
	big := NewTopic("a", "b", "c", "d", "e")
	small := NewTopic("a", "b")
	assert.True(t, Similar(big, small, DefaultThreshold))

	assert.False(t, Similar(NewTopic("a", "b", "c"), NewTopic("c", "d", "e"), DefaultThreshold))
}

func TestTopicSetOperations(t *testing.T) {
	a := NewTopic("a", "b")
	b := NewTopic("a", "b", "c")

	assert.True(t, a.SubsetOf(b))
	assert.False(t, b.SubsetOf(a))
	assert.True(t, a.SubsetOf(a))
	assert.True(t, a.Equal(NewTopic("b", "a")))
	assert.Equal(t, NewTopic("a", "b", "c", "d"), a.Union(NewTopic("c", "d")))
	assert.True(t, b.Contains("c"))
	assert.False(t, a.Contains("c"))
}

func TestTimeline(t *testing.T) {
	years := Timeline()
	require.Len(t, years, 19)
	assert.Equal(t, FirstYear, years[0])
	assert.Equal(t, LastYear, years[len(years)-1])
}

func TestMapValidate(t *testing.T) {
	m := Map{}
	for _, y := range Timeline() {
		m[y] = nil
	}
	require.NoError(t, m.Validate())

	delete(m, 2007)
	err := m.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingYear))
	assert.Contains(t, err.Error(), "2007")
}
