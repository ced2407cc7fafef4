package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/amishk599/avradar/internal/model"
)

// Scorer attaches relevance scores to a batch of jobs.
type Scorer interface {
	Apply(jobs []model.Job) []model.Job
}

// Options tune the post-fetch stages.
type Options struct {
	MaxResults      int  // 0 means DefaultMaxResults
	DropNonPositive bool // discard jobs scoring zero or below before ranking
}

// Result is the full outcome of one fetch cycle.
type Result struct {
	Jobs     []model.Job          // ranked and truncated, never nil
	Sources  []model.SourceResult // per-source outcome in completion order
	Fetched  int                  // records gathered from all sources
	Unique   int                  // records left after dedup
	Duration time.Duration
}

// FailedSources counts sources that failed as a whole.
func (r Result) FailedSources() int {
	n := 0
	for _, s := range r.Sources {
		if !s.OK() {
			n++
		}
	}
	return n
}

// Pipeline owns one fetch cycle:
// fetch → dedup → score → (drop) → rank → truncate.
type Pipeline struct {
	aggregator *Aggregator
	scorer     Scorer
	opts       Options
	logger     *slog.Logger
}

// New creates a pipeline wired with its dependencies.
func New(aggregator *Aggregator, scorer Scorer, opts Options, logger *slog.Logger) *Pipeline {
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	return &Pipeline{
		aggregator: aggregator,
		scorer:     scorer,
		opts:       opts,
		logger:     logger,
	}
}

// Run executes one cycle and reports per-stage counts alongside the jobs.
func (p *Pipeline) Run(ctx context.Context) Result {
	start := time.Now()

	results := p.aggregator.Collect(ctx)
	fetched := Flatten(results)
	unique := Deduplicate(fetched)
	scored := p.scorer.Apply(unique)
	if p.opts.DropNonPositive {
		scored = dropNonPositive(scored)
	}
	jobs := RankAndTruncate(scored, p.opts.MaxResults)

	res := Result{
		Jobs:     jobs,
		Sources:  results,
		Fetched:  len(fetched),
		Unique:   len(unique),
		Duration: time.Since(start),
	}

	p.logger.Info("fetch cycle complete",
		"fetched", res.Fetched,
		"unique", res.Unique,
		"returned", len(res.Jobs),
		"failed_sources", res.FailedSources(),
		"elapsed", res.Duration.Round(time.Millisecond),
	)
	return res
}

// FetchAllJobs runs one cycle and returns at most MaxResults jobs sorted by
// score. It never fails; the worst case is an empty slice.
func (p *Pipeline) FetchAllJobs(ctx context.Context) []model.Job {
	return p.Run(ctx).Jobs
}
