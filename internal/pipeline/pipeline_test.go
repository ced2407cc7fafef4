package pipeline

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/avradar/internal/model"
	"github.com/amishk599/avradar/internal/rank"
)

func newTestPipeline(opts Options, sources ...model.Source) *Pipeline {
	return New(
		NewAggregator(sources, discardLogger()),
		rank.NewScorer(rank.DefaultRules()),
		opts,
		discardLogger(),
	)
}

func TestFetchAllJobs_AllEmpty(t *testing.T) {
	p := newTestPipeline(Options{},
		&fakeSource{name: "MyCareersFuture"},
		&fakeSource{name: "Indeed"},
		&fakeSource{name: "LinkedIn"},
		&fakeSource{name: "Career Portals"},
	)

	jobs := p.FetchAllJobs(context.Background())

	assert.NotNil(t, jobs)
	assert.Empty(t, jobs)
}

func TestFetchAllJobs_OneSourcePanics(t *testing.T) {
	p := newTestPipeline(Options{},
		&fakeSource{name: "Indeed", panics: true},
		&fakeSource{name: "MyCareersFuture", jobs: []model.Job{
			job("MyCareersFuture", "Airport Operations Executive", "SATS"),
		}},
		&fakeSource{name: "LinkedIn", jobs: []model.Job{
			job("LinkedIn", "Cargo Officer", "dnata"),
		}},
	)

	res := p.Run(context.Background())

	assert.Len(t, res.Jobs, 2)
	assert.Equal(t, 1, res.FailedSources())
	assert.Len(t, res.Sources, 3)
}

func TestFetchAllJobs_ScoresDedupsAndRanks(t *testing.T) {
	linkedIn := &fakeSource{name: "LinkedIn", jobs: []model.Job{
		job("LinkedIn", "Senior Operations Manager", "Scoot"),
		job("LinkedIn", "Airport Operations Executive", "SATS"),
	}}
	// Indeed finishes later, so the LinkedIn SATS record is seen first.
	indeed := &fakeSource{name: "Indeed", delay: 30 * time.Millisecond, jobs: []model.Job{
		job("Indeed", "airport operations executive", "sats"),
		{Source: "Indeed", Title: "Aviation Project Coordinator", Snippet: "fresh graduate welcome"},
	}}
	p := newTestPipeline(Options{}, indeed, linkedIn)

	res := p.Run(context.Background())

	assert.Equal(t, 4, res.Fetched)
	assert.Equal(t, 3, res.Unique)
	require.Len(t, res.Jobs, 3)

	assert.Equal(t, "Aviation Project Coordinator", res.Jobs[0].Title)
	assert.Equal(t, 10, res.Jobs[0].Score)
	assert.Equal(t, "Airport Operations Executive", res.Jobs[1].Title)
	assert.Equal(t, "LinkedIn", res.Jobs[1].Source)
	assert.Equal(t, 5, res.Jobs[1].Score)
	assert.Equal(t, "Senior Operations Manager", res.Jobs[2].Title)
	assert.Equal(t, -8, res.Jobs[2].Score)
	for _, j := range res.Jobs {
		assert.True(t, j.Scored)
	}
}

func TestFetchAllJobs_BoundedOutput(t *testing.T) {
	var jobs []model.Job
	for i := 0; i < 120; i++ {
		jobs = append(jobs, job("MyCareersFuture", fmt.Sprintf("Airline role %d", i), "SIA"))
	}
	p := newTestPipeline(Options{}, &fakeSource{name: "MyCareersFuture", jobs: jobs})

	out := p.FetchAllJobs(context.Background())

	assert.Len(t, out, DefaultMaxResults)
	assert.Equal(t, "Airline role 0", out[0].Title, "equal scores keep arrival order")
}

func TestFetchAllJobs_DropNonPositive(t *testing.T) {
	src := &fakeSource{name: "LinkedIn", jobs: []model.Job{
		job("LinkedIn", "Senior Operations Manager", "Scoot"),
		job("LinkedIn", "Barista", "Cafe"),
		job("LinkedIn", "Cargo Officer", "dnata"),
	}}

	kept := newTestPipeline(Options{}, src).FetchAllJobs(context.Background())
	assert.Len(t, kept, 3)

	dropped := newTestPipeline(Options{DropNonPositive: true, MaxResults: 10}, src).FetchAllJobs(context.Background())
	require.Len(t, dropped, 1)
	assert.Equal(t, "Cargo Officer", dropped[0].Title)
}
