package extract

import (
	"errors"
	"testing"

	"github.com/matsen/topictrace/internal/spread"
	"github.com/matsen/topictrace/internal/topic"
	"github.com/matsen/topictrace/internal/yeargraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func graphOf(edges ...[2]string) *yeargraph.Graph {
	g := yeargraph.New()
	for _, e := range edges {
		g.SetEdge(e[0], e[1], 1)
	}
	return g
}

func TestTopics(t *testing.T) {
	// Two separate components reached from seeds a and x. "far" is in the
	// graph but was never influenced.
	g := graphOf(
		[2]string{"a", "b"}, [2]string{"b", "c"},
		[2]string{"x", "y"},
		[2]string{"c", "far"},
	)
	influenced := spread.Influenced{
		0: {"a", "x"},
		1: {"b", "y"},
		2: {"c"},
	}

	topics, err := Topics[*yeargraph.Graph](g, influenced, 2)
	require.NoError(t, err)
	assert.Equal(t, []topic.Topic{{"a", "b", "c"}, {"x", "y"}}, topics)

	for _, tp := range topics {
		assert.GreaterOrEqual(t, tp.Len(), 2)
	}
}

func TestTopics_BudgetBoundary(t *testing.T) {
	g := graphOf([2]string{"a", "b"}, [2]string{"x", "y"})
	influenced := spread.Influenced{0: {"a", "x"}, 1: {"b", "y"}}

	_, err := Topics[*yeargraph.Graph](g, influenced, 2)
	require.NoError(t, err, "len(topics) == k must pass")

	_, err = Topics[*yeargraph.Graph](g, influenced, 1)
	require.ErrorIs(t, err, ErrTooManyTopics)

	var xerr *Error
	require.True(t, errors.As(err, &xerr))
	assert.Equal(t, 2, xerr.Got)
	assert.Equal(t, 1, xerr.Want)
}

func TestTopics_Malformed(t *testing.T) {
	// The x-y component holds no seed.
	g := graphOf([2]string{"a", "b"}, [2]string{"x", "y"})
	influenced := spread.Influenced{0: {"a"}, 1: {"b", "x", "y"}}

	_, err := Topics[*yeargraph.Graph](g, influenced, 5)
	require.ErrorIs(t, err, ErrTopicMalformed)
	assert.Contains(t, err.Error(), "[x, y]")
}

func TestTopics_IsolatedKeywordBreaksCoverage(t *testing.T) {
	// "c" is influenced but has no edge inside the induced subgraph.
	g := graphOf([2]string{"a", "b"}, [2]string{"c", "z"})
	influenced := spread.Influenced{0: {"a"}, 1: {"b", "c"}}

	_, err := Topics[*yeargraph.Graph](g, influenced, 5)
	require.ErrorIs(t, err, ErrTopicCoverageIncomplete)
}

func TestTopics_OverlapBreaksCoverage(t *testing.T) {
	// Overlapping communities count shared keywords twice.
	topics := []topic.Topic{topic.NewTopic("a", "c"), topic.NewTopic("c", "d")}
	influenced := spread.Influenced{0: {"a", "d"}, 1: {"c"}}

	err := Validate(topics, influenced, 5)
	require.ErrorIs(t, err, ErrTopicCoverageIncomplete)

	var xerr *Error
	require.True(t, errors.As(err, &xerr))
	assert.Equal(t, 3, xerr.Want)
	assert.Equal(t, 4, xerr.Got)
}

func TestValidate_CheckOrder(t *testing.T) {
	// Malformed wins over coverage and budget.
	topics := []topic.Topic{topic.NewTopic("x", "y"), topic.NewTopic("a", "b")}
	influenced := spread.Influenced{0: {"a"}}

	err := Validate(topics, influenced, 0)
	require.ErrorIs(t, err, ErrTopicMalformed)

	// Coverage wins over budget.
	topics = []topic.Topic{topic.NewTopic("a", "b"), topic.NewTopic("a", "c")}
	err = Validate(topics, spread.Influenced{0: {"a"}}, 0)
	require.ErrorIs(t, err, ErrTopicCoverageIncomplete)
}

func TestValidate_ZeroBudget(t *testing.T) {
	require.NoError(t, Validate(nil, spread.Influenced{}, 0))
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Kind: ErrTooManyTopics, Year: 2004, Want: 5, Got: 7}
	assert.Equal(t, "year 2004: more topics than requested: 7 topics, budget 5", err.Error())
	assert.True(t, errors.Is(err, ErrTooManyTopics))
}
