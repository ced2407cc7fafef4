package adapter

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/avradar/internal/model"
)

const (
	PortalsSourceName     = "Career Portals"
	PortalFallbackSnippet = "Check portal for latest openings"

	defaultLinksPerPortal = 3
	minLinkTextLen        = 10
	maxPortalTitleRunes   = 120
)

// Portal is a company careers page with no structured feed.
type Portal struct {
	Name    string // used as the Source of every record from this portal
	Company string
	URL     string
}

// PortalConfig configures the career portal adapter.
type PortalConfig struct {
	Portals        []Portal
	MaxPerPortal   int
	RelevanceMatch model.JobFilter // decides which link labels look like postings
}

// PortalAdapter applies a generic link heuristic to each portal page and
// falls back to a single "visit the portal" record when nothing is found, so
// a portal is never silently empty.
type PortalAdapter struct {
	portals      []Portal
	maxPerPortal int
	relevance    model.JobFilter
	deps         Deps
}

var _ model.Source = (*PortalAdapter)(nil)

// NewPortalAdapter creates an adapter over the given portals.
func NewPortalAdapter(cfg PortalConfig, deps Deps) *PortalAdapter {
	perPortal := cfg.MaxPerPortal
	if perPortal <= 0 {
		perPortal = defaultLinksPerPortal
	}
	return &PortalAdapter{
		portals:      cfg.Portals,
		maxPerPortal: perPortal,
		relevance:    cfg.RelevanceMatch,
		deps:         deps,
	}
}

func (a *PortalAdapter) Name() string { return PortalsSourceName }

// FetchJobs visits every portal sequentially. Portal failures are recorded as
// term failures and replaced by the fallback record.
func (a *PortalAdapter) FetchJobs(ctx context.Context) model.SourceResult {
	res := model.SourceResult{Source: PortalsSourceName}

	for _, p := range a.portals {
		if err := a.deps.wait(ctx, PortalsSourceName); err != nil {
			res.Failures = append(res.Failures, model.TermFailure{Term: p.Name, Err: err})
			a.deps.Logger.Warn("source stopped early", "source", PortalsSourceName, "portal", p.Name, "error", err)
			break
		}

		jobs, err := a.fetchPortal(ctx, p)
		if err != nil {
			res.Failures = append(res.Failures, model.TermFailure{Term: p.Name, Err: err})
			a.deps.Logger.Warn("portal failed, using fallback", "portal", p.Name, "error", err)
			jobs = nil
		}
		if len(jobs) == 0 {
			jobs = []model.Job{fallbackJob(p)}
		}

		for _, j := range jobs {
			res.Jobs = append(res.Jobs, j.Normalize())
		}
		a.deps.Logger.Debug("portal fetched", "portal", p.Name, "jobs", len(jobs))
	}

	return res
}

func (a *PortalAdapter) fetchPortal(ctx context.Context, p Portal) ([]model.Job, error) {
	body, err := a.deps.Transport.get(ctx, p.Name, p.URL)
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(p.URL)
	if err != nil {
		return nil, fmt.Errorf("portal url for %s: %w", p.Name, err)
	}

	links, err := extractJobLinks(body, base, a.relevance, a.maxPerPortal)
	if err != nil {
		return nil, fmt.Errorf("portal parse for %s: %w", p.Name, err)
	}

	jobs := make([]model.Job, 0, len(links))
	for _, l := range links {
		jobs = append(jobs, model.Job{
			Source:   p.Name,
			Title:    l.text,
			Company:  p.Company,
			Location: model.DefaultLocation,
			URL:      l.href,
		})
	}
	return jobs, nil
}

type jobLink struct {
	text string
	href string
}

// extractJobLinks scans anchors whose label is long enough and looks relevant.
func extractJobLinks(body []byte, base *url.URL, relevance model.JobFilter, limit int) ([]jobLink, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var links []jobLink
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		text := cleanText(a.Text())
		if len([]rune(text)) <= minLinkTextLen {
			return true
		}
		if relevance != nil && !relevance.Match(model.Job{Title: text}) {
			return true
		}
		href, _ := a.Attr("href")
		links = append(links, jobLink{
			text: truncateRunes(text, maxPortalTitleRunes),
			href: resolveURL(base, href),
		})
		return len(links) < limit
	})
	return links, nil
}

func fallbackJob(p Portal) model.Job {
	return model.Job{
		Source:   p.Name,
		Title:    fmt.Sprintf("Visit %s careers page", p.Company),
		Company:  p.Company,
		Location: model.DefaultLocation,
		URL:      p.URL,
		Snippet:  PortalFallbackSnippet,
	}
}
