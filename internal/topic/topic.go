// Package topic defines the core domain types for keyword topics and macro-topics.
package topic

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Timeline bounds. Topics are extracted for every year in [FirstYear, LastYear].
const (
	FirstYear = 2000
	LastYear  = 2018
)

// DefaultThreshold is the containment fraction at which two topics are considered similar.
const DefaultThreshold = 0.5

// ErrMissingYear is returned by Map.Validate when a timeline year has no entry.
var ErrMissingYear = errors.New("topic map is missing a timeline year")

// Topic is a set of keywords, stored sorted and without duplicates.
type Topic []string

// NewTopic builds a Topic from keywords, dropping duplicates and sorting.
func NewTopic(keywords ...string) Topic {
	seen := make(map[string]bool, len(keywords))
	t := make(Topic, 0, len(keywords))
	for _, k := range keywords {
		if seen[k] {
			continue
		}
		seen[k] = true
		t = append(t, k)
	}
	sort.Strings(t)
	return t
}

// Len returns the number of keywords in the topic.
func (t Topic) Len() int {
	return len(t)
}

// Contains reports whether the keyword is in the topic.
func (t Topic) Contains(keyword string) bool {
	i := sort.SearchStrings(t, keyword)
	return i < len(t) && t[i] == keyword
}

// Union returns a new topic holding the keywords of both topics.
func (t Topic) Union(other Topic) Topic {
	merged := make([]string, 0, len(t)+len(other))
	merged = append(merged, t...)
	merged = append(merged, other...)
	return NewTopic(merged...)
}

// SubsetOf reports whether every keyword of t is also in other.
func (t Topic) SubsetOf(other Topic) bool {
	if len(t) > len(other) {
		return false
	}
	for _, k := range t {
		if !other.Contains(k) {
			return false
		}
	}
	return true
}

// Equal reports whether both topics hold the same keywords.
func (t Topic) Equal(other Topic) bool {
	return len(t) == len(other) && t.SubsetOf(other)
}

// String formats the topic as a bracketed keyword list.
func (t Topic) String() string {
	return "[" + strings.Join(t, ", ") + "]"
}

// Fraction returns the share of a's keywords that also appear in b.
// An empty a has fraction 0.
func Fraction(a, b Topic) float64 {
	if len(a) == 0 {
		return 0
	}
	shared := 0
	for _, k := range a {
		if b.Contains(k) {
			shared++
		}
	}
	return float64(shared) / float64(len(a))
}

// Similar reports whether either topic contains at least threshold of the other's keywords.
func Similar(a, b Topic, threshold float64) bool {
	return Fraction(a, b) >= threshold || Fraction(b, a) >= threshold
}

// Timeline returns every year from FirstYear to LastYear, ascending.
func Timeline() []int {
	years := make([]int, 0, LastYear-FirstYear+1)
	for y := FirstYear; y <= LastYear; y++ {
		years = append(years, y)
	}
	return years
}

// Map holds the ordered topic list of each timeline year.
type Map map[int][]Topic

// Validate checks that every timeline year has an entry.
// An entry may be an empty list; only an absent key is an error.
func (m Map) Validate() error {
	for _, y := range Timeline() {
		if _, ok := m[y]; !ok {
			return fmt.Errorf("%w: %d", ErrMissingYear, y)
		}
	}
	return nil
}

// Count returns the total number of topics across all years.
func (m Map) Count() int {
	n := 0
	for _, topics := range m {
		n += len(topics)
	}
	return n
}

// Match records a topic found in a later year that was similar to a target topic.
type Match struct {
	Year  int   `json:"year"`
	Topic Topic `json:"topic"`
}

// MacroTopic is a target topic, possibly enlarged with the keywords of matches
// from an unbroken run of years immediately following its origin.
type MacroTopic struct {
	Origin   int   `json:"origin"`
	Keywords Topic `json:"keywords"`
	Absorbed []int `json:"absorbed,omitempty"` // Years whose matches were unioned in
}
