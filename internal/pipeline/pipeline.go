// Package pipeline runs topic extraction for each year of the timeline and
// traces the resulting topics into macro-topics.
//
// One year goes through four stages: the keyword graph is built from the
// cached records, the top-k keywords are ranked as seeds, influence is
// propagated from the seeds, and the influenced keywords are grouped into
// validated topics.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matsen/topictrace/internal/config"
	"github.com/matsen/topictrace/internal/dataset"
	"github.com/matsen/topictrace/internal/extract"
	"github.com/matsen/topictrace/internal/rank"
	"github.com/matsen/topictrace/internal/spread"
	"github.com/matsen/topictrace/internal/topic"
	"github.com/matsen/topictrace/internal/trace"
	"github.com/matsen/topictrace/internal/yeargraph"
	"github.com/rs/zerolog"
)

// Records supplies the ds-1 and ds-2 records of a year.
type Records interface {
	CoCitationsByYear(year int) ([]dataset.CoCitation, error)
	CollaborationsByYear(year int) ([]dataset.Collaboration, error)
}

// ErrNoRecords is returned for a year without any co-citation.
var ErrNoRecords = errors.New("no co-citation records")

// YearResult holds every stage output of one year.
type YearResult struct {
	Year       int               `json:"year"`
	Graph      *yeargraph.Graph  `json:"-"`
	Seeds      []rank.Score      `json:"seeds"`
	Influenced spread.Influenced `json:"influenced"`
	Topics     []topic.Topic     `json:"topics,omitempty"`
}

// Pipeline runs the stages with one configuration.
type Pipeline struct {
	records Records
	cfg     *config.Config
	logger  zerolog.Logger
}

// New creates a Pipeline. cfg is expected to be validated.
func New(records Records, cfg *config.Config, logger zerolog.Logger) *Pipeline {
	return &Pipeline{records: records, cfg: cfg, logger: logger}
}

// Graph builds the keyword graph of a year.
func (p *Pipeline) Graph(year int) (*yeargraph.Graph, error) {
	cocitations, err := p.records.CoCitationsByYear(year)
	if err != nil {
		return nil, err
	}
	if len(cocitations) == 0 {
		return nil, fmt.Errorf("%w for %d", ErrNoRecords, year)
	}

	var collaborations []dataset.Collaboration
	if yeargraph.Weighting(p.cfg.Weights) == yeargraph.WeightFraction {
		collaborations, err = p.records.CollaborationsByYear(year)
		if err != nil {
			return nil, err
		}
	}

	return yeargraph.Build(cocitations, collaborations, yeargraph.Weighting(p.cfg.Weights))
}

// CollaborationGraph builds the ds-2 author graph of a year. A year without
// collaborations yields an empty graph.
func (p *Pipeline) CollaborationGraph(year int) (*yeargraph.Graph, error) {
	collaborations, err := p.records.CollaborationsByYear(year)
	if err != nil {
		return nil, err
	}
	return yeargraph.BuildCollaboration(collaborations), nil
}

// Analyze runs the graph, seed, and propagation stages of a year.
func (p *Pipeline) Analyze(ctx context.Context, year int) (*YearResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g, err := p.Graph(year)
	if err != nil {
		return nil, err
	}

	seeds, err := rank.TopK(g, p.cfg.Metric, p.cfg.K)
	if err != nil {
		return nil, err
	}

	strategy, err := spread.ParseStrategy(p.cfg.ThresholdStrategy)
	if err != nil {
		return nil, err
	}
	// Each year draws from its own stream.
	influenced, err := spread.Run(p.cfg.Model, g, rank.Keywords(seeds), strategy, p.cfg.Seed+uint64(year))
	if err != nil {
		return nil, err
	}

	p.logger.Debug().
		Int("year", year).
		Int("keywords", g.Len()).
		Int("edges", g.EdgeCount()).
		Strs("seeds", rank.Keywords(seeds)).
		Int("influenced", influenced.Total()).
		Msg("analyzed year")

	return &YearResult{Year: year, Graph: g, Seeds: seeds, Influenced: influenced}, nil
}

// ExtractYear runs every stage of a year and returns its validated topics.
// A failed extraction check is returned as an *extract.Error carrying the year.
func (p *Pipeline) ExtractYear(ctx context.Context, year int) (*YearResult, error) {
	res, err := p.Analyze(ctx, year)
	if err != nil {
		return nil, err
	}

	topics, err := extract.Topics[*yeargraph.Graph](res.Graph, res.Influenced, p.cfg.K)
	if err != nil {
		var xerr *extract.Error
		if errors.As(err, &xerr) {
			xerr.Year = year
		}
		return res, err
	}
	res.Topics = topics

	p.logger.Info().
		Int("year", year).
		Int("keywords", res.Graph.Len()).
		Int("influenced", res.Influenced.Total()).
		Int("topics", len(topics)).
		Msg("extracted topics")

	return res, nil
}

// Timeline extracts the topics of every timeline year. The first failing year
// aborts the run.
func (p *Pipeline) Timeline(ctx context.Context) (topic.Map, error) {
	start := time.Now()
	m := make(topic.Map, topic.LastYear-topic.FirstYear+1)

	for _, year := range topic.Timeline() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, err := p.ExtractYear(ctx, year)
		if err != nil {
			var xerr *extract.Error
			if errors.As(err, &xerr) {
				return nil, err
			}
			return nil, fmt.Errorf("year %d: %w", year, err)
		}
		m[year] = res.Topics
	}

	p.logger.Info().
		Int("topics", m.Count()).
		Dur("elapsed", time.Since(start)).
		Msg("extracted timeline")

	return m, nil
}

// Run extracts the timeline and traces it, sending each trace block to r.
func (p *Pipeline) Run(ctx context.Context, r trace.Reporter) ([]topic.MacroTopic, error) {
	m, err := p.Timeline(ctx)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.Trace(m, r)
}

// Trace traces an extracted timeline into macro-topics, sending each trace
// block to r.
func (p *Pipeline) Trace(m topic.Map, r trace.Reporter) ([]topic.MacroTopic, error) {
	tracer := trace.New(m,
		trace.WithThreshold(p.cfg.SimilarityThreshold),
		trace.WithMerge(p.cfg.Merge),
		trace.WithReporter(r),
		trace.WithLogger(p.logger),
	)
	return tracer.Trace()
}
