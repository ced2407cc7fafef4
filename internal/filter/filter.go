package filter

import (
	"strings"

	"github.com/amishk599/avradar/internal/model"
)

// SeniorityKeywords marks titles that are too senior for an entry-level audience.
var SeniorityKeywords = []string{
	"senior", "sr.", "director", "lead", "chief", "head of", "principal", "vice president", "vp",
}

// RelevanceKeywords is the portal link heuristic: a link whose text contains
// one of these words is treated as a job posting.
var RelevanceKeywords = []string{
	"manager", "analyst", "operations", "aviation", "airport", "airline",
	"project", "data", "planning", "coordinator", "executive", "officer",
	"logistics", "transport", "fleet", "ground", "cargo", "safety", "compliance",
	"strategy", "business", "commercial", "network", "revenue", "finance",
}

// TitleFilter matches jobs whose title contains any include keyword and none
// of the exclude keywords. Matching is case-insensitive substring matching.
// An empty include list matches every title.
type TitleFilter struct {
	include []string
	exclude []string
}

var _ model.JobFilter = (*TitleFilter)(nil)

// NewTitleFilter returns a filter over lower-cased copies of the keyword lists.
func NewTitleFilter(include []string, exclude []string) *TitleFilter {
	return &TitleFilter{
		include: lowerAll(include),
		exclude: lowerAll(exclude),
	}
}

// NewSeniorityFilter rejects titles carrying any of the given seniority markers.
func NewSeniorityFilter(keywords []string) *TitleFilter {
	return NewTitleFilter(nil, keywords)
}

// Match returns true if the job's title passes both keyword lists.
func (f *TitleFilter) Match(job model.Job) bool {
	return f.MatchText(job.Title)
}

// MatchText applies the filter to free text, e.g. an anchor label.
func (f *TitleFilter) MatchText(text string) bool {
	lower := strings.ToLower(text)

	for _, kw := range f.exclude {
		if strings.Contains(lower, kw) {
			return false
		}
	}

	if len(f.include) == 0 {
		return true
	}
	for _, kw := range f.include {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
