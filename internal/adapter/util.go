package adapter

import (
	"context"
	"net/url"
	"strings"

	"github.com/amishk599/avradar/internal/model"
)

// cleanText collapses runs of whitespace (including non-breaking spaces) into
// single spaces and trims the result.
func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// resolveURL resolves href against base. Absolute hrefs are returned as-is;
// an unparseable href yields "".
func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}

// termFunc fetches and parses one search term.
type termFunc func(ctx context.Context, term string) ([]model.Job, error)

// runTerms runs fetch for each term in order, pacing requests through deps.
// A failed term is logged and recorded, then the loop moves on; only context
// cancellation stops it early.
func runTerms(ctx context.Context, source string, terms []string, deps Deps, fetch termFunc) model.SourceResult {
	res := model.SourceResult{Source: source}

	for _, term := range terms {
		if err := deps.wait(ctx, source); err != nil {
			res.Failures = append(res.Failures, model.TermFailure{Term: term, Err: err})
			deps.Logger.Warn("source stopped early", "source", source, "term", term, "error", err)
			break
		}

		jobs, err := fetch(ctx, term)
		if err != nil {
			res.Failures = append(res.Failures, model.TermFailure{Term: term, Err: err})
			deps.Logger.Warn("term failed", "source", source, "term", term, "error", err)
			continue
		}

		for _, j := range jobs {
			j.Source = source
			res.Jobs = append(res.Jobs, j.Normalize())
		}
		deps.Logger.Debug("term fetched", "source", source, "term", term, "jobs", len(jobs))
	}

	return res
}
