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
	IndeedSourceName     = "Indeed"
	indeedDefaultBaseURL = "https://sg.indeed.com"
	defaultCardsPerTerm  = 5
)

// IndeedConfig configures the Indeed adapter.
type IndeedConfig struct {
	BaseURL    string
	Terms      []string
	Location   string
	MaxPerTerm int
}

// IndeedAdapter scrapes the Indeed search results page. The markup is not a
// stable contract; cards that lack a title or link are skipped.
type IndeedAdapter struct {
	baseURL    string
	terms      []string
	location   string
	maxPerTerm int
	deps       Deps
}

var _ model.Source = (*IndeedAdapter)(nil)

// NewIndeedAdapter creates an adapter for the Indeed search page.
func NewIndeedAdapter(cfg IndeedConfig, deps Deps) *IndeedAdapter {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = indeedDefaultBaseURL
	}
	loc := cfg.Location
	if loc == "" {
		loc = model.DefaultLocation
	}
	perTerm := cfg.MaxPerTerm
	if perTerm <= 0 {
		perTerm = defaultCardsPerTerm
	}
	return &IndeedAdapter{
		baseURL:    base,
		terms:      cfg.Terms,
		location:   loc,
		maxPerTerm: perTerm,
		deps:       deps,
	}
}

func (a *IndeedAdapter) Name() string { return IndeedSourceName }

// FetchJobs runs one search per term, sorted by date.
func (a *IndeedAdapter) FetchJobs(ctx context.Context) model.SourceResult {
	return runTerms(ctx, IndeedSourceName, a.terms, a.deps, a.fetchTerm)
}

func (a *IndeedAdapter) fetchTerm(ctx context.Context, term string) ([]model.Job, error) {
	q := url.Values{}
	q.Set("q", term)
	q.Set("l", a.location)
	q.Set("sort", "date")
	searchURL := a.baseURL + "/jobs?" + q.Encode()

	body, err := a.deps.Transport.get(ctx, IndeedSourceName, searchURL)
	if err != nil {
		return nil, err
	}

	base, _ := url.Parse(a.baseURL)
	jobs, err := parseIndeedCards(body, base, a.location, a.maxPerTerm)
	if err != nil {
		return nil, fmt.Errorf("indeed parse for %q: %w", term, err)
	}
	return jobs, nil
}

// parseIndeedCards extracts up to limit job cards from a results page.
func parseIndeedCards(body []byte, base *url.URL, defaultLocation string, limit int) ([]model.Job, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var jobs []model.Job
	doc.Find("div.job_seen_beacon").EachWithBreak(func(i int, card *goquery.Selection) bool {
		if i >= limit {
			return false
		}

		title := cleanText(card.Find("h2.jobTitle span").First().Text())
		link := card.Find("h2.jobTitle a").First()
		if title == "" || link.Length() == 0 {
			return true
		}

		job := model.Job{
			Title:    title,
			Company:  cleanText(card.Find("[data-testid='company-name']").First().Text()),
			Location: cleanText(card.Find("[data-testid='text-location']").First().Text()),
		}
		if job.Location == "" {
			job.Location = defaultLocation
		}

		if jk, _ := link.Attr("data-jk"); strings.TrimSpace(jk) != "" {
			job.URL = resolveURL(base, "/viewjob?jk="+url.QueryEscape(strings.TrimSpace(jk)))
		} else {
			href, _ := link.Attr("href")
			job.URL = resolveURL(base, href)
		}

		jobs = append(jobs, job)
		return true
	})
	return jobs, nil
}
