// Package trace follows every topic of the timeline into later years and builds
// macro-topics from the topics that persist in consecutive years.
package trace

import (
	"fmt"

	"github.com/matsen/topictrace/internal/topic"
	"github.com/rs/zerolog"
)

// Block is the tracing record of one target topic.
type Block struct {
	Year    int              `json:"year"`
	Target  topic.Topic      `json:"target"`
	Matches []topic.Match    `json:"matches"`
	Macro   topic.MacroTopic `json:"macro"`
}

// Reporter receives one Block per traced target topic.
type Reporter interface {
	Report(b Block) error
}

type discard struct{}

func (discard) Report(Block) error { return nil }

// Option configures a Tracer.
type Option func(*Tracer)

// WithThreshold sets the similarity threshold.
func WithThreshold(threshold float64) Option {
	return func(t *Tracer) { t.threshold = threshold }
}

// WithMerge enables absorption of consecutive matches, standalone macro-topics
// for the final year, and subsumption dedup.
func WithMerge(merge bool) Option {
	return func(t *Tracer) { t.merge = merge }
}

// WithReporter sets where trace blocks are sent.
func WithReporter(r Reporter) Option {
	return func(t *Tracer) {
		if r != nil {
			t.reporter = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Tracer) { t.logger = logger }
}

// Tracer owns the state of one timeline tracing run.
type Tracer struct {
	topics    topic.Map
	threshold float64
	merge     bool
	reporter  Reporter
	logger    zerolog.Logger

	traced []topic.Match
	macros []topic.MacroTopic
}

// New returns a Tracer over a complete topic map. The map is only read.
func New(topics topic.Map, opts ...Option) *Tracer {
	t := &Tracer{
		topics:    topics,
		threshold: topic.DefaultThreshold,
		reporter:  discard{},
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Trace builds the macro-topics of the timeline.
//
// Every topic of every year but the last is a target. Each later year
// contributes at most its first topic similar to the target. When merging, the
// matches of an unbroken run of years starting right after the target's year
// are unioned into the target; the first gap ends absorption for good.
func (t *Tracer) Trace() ([]topic.MacroTopic, error) {
	if err := t.topics.Validate(); err != nil {
		return nil, err
	}

	t.macros = nil
	targets := 0
	for y := topic.FirstYear; y < topic.LastYear; y++ {
		for _, target := range t.topics[y] {
			targets++
			t.follow(target, y)
			macro := t.absorb(target, y)
			t.macros = append(t.macros, macro)

			block := Block{Year: y, Target: target, Matches: t.traced, Macro: macro}
			if err := t.reporter.Report(block); err != nil {
				return nil, fmt.Errorf("reporting trace of %s (%d): %w", target, y, err)
			}
		}
	}

	removed := 0
	if t.merge {
		for _, tp := range t.topics[topic.LastYear] {
			t.macros = append(t.macros, topic.MacroTopic{Origin: topic.LastYear, Keywords: topic.NewTopic(tp...)})
		}
		t.macros, removed = Dedup(t.macros)
	}

	t.logger.Info().
		Int("targets", targets).
		Int("macro_topics", len(t.macros)).
		Int("subsumed", removed).
		Bool("merge", t.merge).
		Msg("traced timeline")

	return t.macros, nil
}

// follow records the first similar topic of each later year.
func (t *Tracer) follow(target topic.Topic, year int) {
	t.traced = nil
	for i := year + 1; i <= topic.LastYear; i++ {
		for _, cand := range t.topics[i] {
			if topic.Similar(target, cand, t.threshold) {
				t.traced = append(t.traced, topic.Match{Year: i, Topic: cand})
				break
			}
		}
	}
	t.logger.Debug().
		Int("year", year).
		Stringer("target", target).
		Int("matches", len(t.traced)).
		Msg("followed topic")
}

// absorb builds the macro-topic of a target from the recorded matches.
func (t *Tracer) absorb(target topic.Topic, year int) topic.MacroTopic {
	macro := topic.MacroTopic{Origin: year, Keywords: topic.NewTopic(target...)}
	if !t.merge {
		return macro
	}

	expected := year + 1
	for _, m := range t.traced {
		if m.Year != expected {
			break
		}
		macro.Keywords = macro.Keywords.Union(m.Topic)
		macro.Absorbed = append(macro.Absorbed, m.Year)
		expected++
	}
	return macro
}

// Dedup removes every macro-topic whose keywords are a subset of another's in a
// single pass over all pairs. Of two equal sets the later one is removed.
// Order is kept. It returns the survivors and the number removed.
func Dedup(macros []topic.MacroTopic) ([]topic.MacroTopic, int) {
	removed := make([]bool, len(macros))
	for i := range macros {
		for j := i + 1; j < len(macros); j++ {
			if removed[i] || removed[j] {
				continue
			}
			a, b := macros[i].Keywords, macros[j].Keywords
			switch {
			case a.Len() < b.Len() && a.SubsetOf(b):
				removed[i] = true
			case b.Len() < a.Len() && b.SubsetOf(a):
				removed[j] = true
			case a.Equal(b):
				removed[j] = true
			}
		}
	}

	kept := make([]topic.MacroTopic, 0, len(macros))
	for i, m := range macros {
		if !removed[i] {
			kept = append(kept, m)
		}
	}
	return kept, len(macros) - len(kept)
}
