package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/amishk599/avradar/internal/model"
)

// Aggregator runs every source concurrently and gathers their results.
type Aggregator struct {
	sources []model.Source
	logger  *slog.Logger
}

// NewAggregator creates an aggregator over the given sources.
func NewAggregator(sources []model.Source, logger *slog.Logger) *Aggregator {
	return &Aggregator{sources: sources, logger: logger}
}

// Collect fetches from all sources at once and returns one result per source
// in completion order. A failing or panicking source never cancels the others.
func (a *Aggregator) Collect(ctx context.Context) []model.SourceResult {
	var g errgroup.Group
	results := make(chan model.SourceResult, len(a.sources))

	for _, src := range a.sources {
		g.Go(func() error {
			start := time.Now()
			res := a.safeFetch(ctx, src)
			if !res.OK() {
				a.logger.Warn("source failed", "source", res.Source, "error", res.Err)
			} else {
				a.logger.Debug("source done",
					"source", res.Source,
					"jobs", len(res.Jobs),
					"failed_terms", len(res.Failures),
					"elapsed", time.Since(start).Round(time.Millisecond),
				)
			}
			results <- res
			// best-effort: never cancel siblings
			return nil
		})
	}

	_ = g.Wait()
	close(results)

	out := make([]model.SourceResult, 0, len(a.sources))
	for res := range results {
		out = append(out, res)
	}
	return out
}

func (a *Aggregator) safeFetch(ctx context.Context, src model.Source) (res model.SourceResult) {
	name := src.Name()
	defer func() {
		if r := recover(); r != nil {
			res = model.SourceResult{Source: name, Err: fmt.Errorf("source %s panicked: %v", name, r)}
		}
	}()

	res = src.FetchJobs(ctx)
	if res.Source == "" {
		res.Source = name
	}
	if !res.OK() {
		res.Jobs = nil
	}
	return res
}

// Flatten concatenates the jobs of every result in the given order.
func Flatten(results []model.SourceResult) []model.Job {
	n := 0
	for _, r := range results {
		n += len(r.Jobs)
	}
	jobs := make([]model.Job, 0, n)
	for _, r := range results {
		jobs = append(jobs, r.Jobs...)
	}
	return jobs
}
