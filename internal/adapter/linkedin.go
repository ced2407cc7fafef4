package adapter

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/avradar/internal/model"
)

const (
	LinkedInSourceName     = "LinkedIn"
	linkedInDefaultBaseURL = "https://www.linkedin.com"
)

// LinkedInConfig configures the LinkedIn adapter.
type LinkedInConfig struct {
	BaseURL    string
	Terms      []string
	Location   string
	MaxPerTerm int
	// PreFilter, when set, drops cards whose title it rejects before they
	// leave the adapter (used for the seniority screen).
	PreFilter model.JobFilter
}

// LinkedInAdapter scrapes the public LinkedIn job search page, restricted to
// postings from the last 24 hours.
type LinkedInAdapter struct {
	baseURL    string
	terms      []string
	location   string
	maxPerTerm int
	preFilter  model.JobFilter
	deps       Deps
}

var _ model.Source = (*LinkedInAdapter)(nil)

// NewLinkedInAdapter creates an adapter for the LinkedIn guest search page.
func NewLinkedInAdapter(cfg LinkedInConfig, deps Deps) *LinkedInAdapter {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = linkedInDefaultBaseURL
	}
	loc := cfg.Location
	if loc == "" {
		loc = model.DefaultLocation
	}
	perTerm := cfg.MaxPerTerm
	if perTerm <= 0 {
		perTerm = defaultCardsPerTerm
	}
	return &LinkedInAdapter{
		baseURL:    base,
		terms:      cfg.Terms,
		location:   loc,
		maxPerTerm: perTerm,
		preFilter:  cfg.PreFilter,
		deps:       deps,
	}
}

func (a *LinkedInAdapter) Name() string { return LinkedInSourceName }

// FetchJobs runs one search per term and applies the local pre-filter.
func (a *LinkedInAdapter) FetchJobs(ctx context.Context) model.SourceResult {
	return runTerms(ctx, LinkedInSourceName, a.terms, a.deps, a.fetchTerm)
}

func (a *LinkedInAdapter) fetchTerm(ctx context.Context, term string) ([]model.Job, error) {
	q := url.Values{}
	q.Set("keywords", term)
	q.Set("location", a.location)
	q.Set("sortBy", "DD")
	q.Set("f_TPR", "r86400")
	searchURL := a.baseURL + "/jobs/search?" + q.Encode()

	body, err := a.deps.Transport.get(ctx, LinkedInSourceName, searchURL)
	if err != nil {
		return nil, err
	}

	base, _ := url.Parse(a.baseURL)
	cards, err := parseLinkedInCards(body, base, a.location, a.maxPerTerm)
	if err != nil {
		return nil, fmt.Errorf("linkedin parse for %q: %w", term, err)
	}

	if a.preFilter == nil {
		return cards, nil
	}
	kept := cards[:0]
	for _, j := range cards {
		if !a.preFilter.Match(j) {
			a.deps.Logger.Debug("pre-filter dropped", "source", LinkedInSourceName, "title", j.Title)
			continue
		}
		kept = append(kept, j)
	}
	return kept, nil
}

// parseLinkedInCards extracts up to limit job cards from a search page.
func parseLinkedInCards(body []byte, base *url.URL, defaultLocation string, limit int) ([]model.Job, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var jobs []model.Job
	doc.Find("div.base-card").EachWithBreak(func(i int, card *goquery.Selection) bool {
		if i >= limit {
			return false
		}

		title := cleanText(card.Find("h3.base-search-card__title").First().Text())
		if title == "" {
			return true
		}

		job := model.Job{
			Title:    title,
			Company:  cleanText(card.Find("h4.base-search-card__subtitle").First().Text()),
			Location: cleanText(card.Find("span.job-search-card__location").First().Text()),
		}
		if job.Location == "" {
			job.Location = defaultLocation
		}
		if href, ok := card.Find("a.base-card__full-link").First().Attr("href"); ok {
			job.URL = resolveURL(base, href)
		}

		jobs = append(jobs, job)
		return true
	})
	return jobs, nil
}
