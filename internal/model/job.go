package model

import (
	"context"
	"strings"
	"time"
)

const (
	// DefaultLocation is used when a source does not report a location.
	DefaultLocation = "Singapore"
	// UntitledPlaceholder replaces an empty title so every record can be displayed.
	UntitledPlaceholder = "Untitled"
)

// Unified representation of a job listing from any source.
type Job struct {
	Source   string // name of the adapter (or portal) that produced the record
	Title    string // display title, never empty after Normalize
	Company  string // may be empty
	Location string // defaults to DefaultLocation
	URL      string // link to the posting, may be empty
	Salary   string // free text, empty when unknown
	Snippet  string // experience hint or eligibility note
	Score    int    // relevance score, meaningful only when Scored is true
	Scored   bool
}

// Normalize trims every field and applies the per-field defaults.
// Adapters call it on each record before returning it.
func (j Job) Normalize() Job {
	j.Source = strings.TrimSpace(j.Source)
	j.Title = strings.TrimSpace(j.Title)
	j.Company = strings.TrimSpace(j.Company)
	j.Location = strings.TrimSpace(j.Location)
	j.URL = strings.TrimSpace(j.URL)
	j.Salary = strings.TrimSpace(j.Salary)
	j.Snippet = strings.TrimSpace(j.Snippet)

	if j.Title == "" {
		j.Title = UntitledPlaceholder
	}
	if j.Location == "" {
		j.Location = DefaultLocation
	}
	return j
}

// TermFailure records a single search term that a source could not serve.
type TermFailure struct {
	Term string
	Err  error
}

// SourceResult is what one source contributes to a fetch cycle.
// Per-term failures are absorbed into Failures; Err is set only when the
// source as a whole failed (its contribution is then empty).
type SourceResult struct {
	Source   string
	Jobs     []Job
	Failures []TermFailure
	Err      error
}

// OK reports whether the source completed without a whole-source failure.
func (r SourceResult) OK() bool {
	return r.Err == nil
}

// Digest is one deliverable batch of ranked jobs.
type Digest struct {
	Jobs        []Job
	Label       string // schedule slot label such as "9:00 AM"; empty for on-demand
	GeneratedAt time.Time
}

// Source fetches job listings from one external site.
// FetchJobs never panics or returns partial state through an error: every
// expected failure is reported inside the SourceResult.
type Source interface {
	Name() string
	FetchJobs(ctx context.Context) SourceResult
}

// JobFilter decides whether a job matches the user's criteria.
type JobFilter interface {
	Match(job Job) bool
}

// Notifier delivers a digest to its audience.
type Notifier interface {
	Notify(ctx context.Context, d Digest) error
}

// SubscriberStore tracks which chats receive scheduled digests.
type SubscriberStore interface {
	Add(chatID int64) (bool, error)
	Remove(chatID int64) (bool, error)
	Has(chatID int64) (bool, error)
	List() ([]int64, error)
	Count() (int, error)
}
