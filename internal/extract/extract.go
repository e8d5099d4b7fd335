// Package extract turns the keywords reached by influence propagation into the
// validated topic list of one year.
//
// Topics are the overlapping communities found by clique percolation over the
// subgraph induced by every influenced keyword. A year's topics are accepted
// only as a whole: each topic must hold a seed keyword, the topics together
// must account for every influenced keyword exactly once, and there must be no
// more topics than the requested budget.
package extract

import (
	"errors"
	"fmt"

	"github.com/matsen/topictrace/internal/spread"
	"github.com/matsen/topictrace/internal/topic"
)

// MinCliqueSize is the smallest clique the community detector percolates over.
const MinCliqueSize = 2

// Graph is a keyword graph that can produce induced subgraphs.
type Graph[C CommunityGraph] interface {
	Induced(keywords []string) C
}

// CommunityGraph detects overlapping keyword communities.
type CommunityGraph interface {
	CliqueCommunities(k int) ([][]string, error)
}

// Validation errors. Each is fatal for the year being extracted.
var (
	ErrTopicMalformed          = errors.New("topic contains no seed keyword")
	ErrTopicCoverageIncomplete = errors.New("topics do not cover every influenced keyword")
	ErrTooManyTopics           = errors.New("more topics than requested")
)

// Error describes a failed extraction check.
type Error struct {
	Kind  error       // One of the Err* sentinels
	Year  int         // Zero when the caller did not set a year
	Topic topic.Topic // Offending topic, for ErrTopicMalformed
	Want  int         // Expected count (influenced keywords or budget)
	Got   int         // Observed count (topic keywords or topics)
}

func (e *Error) Error() string {
	prefix := ""
	if e.Year != 0 {
		prefix = fmt.Sprintf("year %d: ", e.Year)
	}
	switch e.Kind {
	case ErrTopicMalformed:
		return fmt.Sprintf("%s%v: %s", prefix, e.Kind, e.Topic)
	case ErrTopicCoverageIncomplete:
		return fmt.Sprintf("%s%v: %d influenced keywords, %d topic keywords", prefix, e.Kind, e.Want, e.Got)
	case ErrTooManyTopics:
		return fmt.Sprintf("%s%v: %d topics, budget %d", prefix, e.Kind, e.Got, e.Want)
	default:
		return prefix + fmt.Sprint(e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Topics extracts and validates the topics of one year.
//
// The detector's emission order is kept. k is the topic budget; exactly k
// topics is allowed.
func Topics[C CommunityGraph](g Graph[C], influenced spread.Influenced, k int) ([]topic.Topic, error) {
	sub := g.Induced(influenced.Union())

	communities, err := sub.CliqueCommunities(MinCliqueSize)
	if err != nil {
		return nil, fmt.Errorf("detecting communities: %w", err)
	}

	topics := make([]topic.Topic, 0, len(communities))
	for _, c := range communities {
		topics = append(topics, topic.NewTopic(c...))
	}

	if err := Validate(topics, influenced, k); err != nil {
		return nil, err
	}
	return topics, nil
}

// Validate runs the seed, coverage, and budget checks in that order.
func Validate(topics []topic.Topic, influenced spread.Influenced, k int) error {
	seeds := topic.NewTopic(influenced.Seeds()...)
	for _, t := range topics {
		if !hasSeed(t, seeds) {
			return &Error{Kind: ErrTopicMalformed, Topic: t}
		}
	}

	topicKeywords := 0
	for _, t := range topics {
		topicKeywords += t.Len()
	}
	if total := influenced.Total(); topicKeywords != total {
		return &Error{Kind: ErrTopicCoverageIncomplete, Want: total, Got: topicKeywords}
	}

	if len(topics) > k {
		return &Error{Kind: ErrTooManyTopics, Want: k, Got: len(topics)}
	}
	return nil
}

func hasSeed(t, seeds topic.Topic) bool {
	for _, kw := range t {
		if seeds.Contains(kw) {
			return true
		}
	}
	return false
}
