package rank

import (
	"slices"
	"strings"

	"github.com/amishk599/avradar/internal/filter"
	"github.com/amishk599/avradar/internal/model"
)

// KeywordSet is a list of lower-case substrings worth Weight points.
type KeywordSet struct {
	Weight   int
	Keywords []string
}

// Rules are the scoring weights and keyword sets. Title sets score once per
// matching keyword; FreshMarkers (snippet) and Seniority (title) apply at
// most once each. Seniority.Weight is a penalty and is subtracted.
type Rules struct {
	HighValue    KeywordSet
	MediumValue  KeywordSet
	EntryLevel   KeywordSet
	FreshMarkers KeywordSet
	Seniority    KeywordSet
}

// DefaultRules returns the built-in weights tuned for entry-level aviation
// and project roles in Singapore.
func DefaultRules() Rules {
	return Rules{
		HighValue: KeywordSet{Weight: 3, Keywords: []string{
			"aviation", "airline", "airport", "air transport", "flight operations",
			"ground handling", "cargo", "atm", "caas", "changi", "iata",
		}},
		MediumValue: KeywordSet{Weight: 2, Keywords: []string{
			"project", "project manager", "project management", "data analyst",
			"data analysis", "operations manager", "operations analyst",
			"business analyst", "planning", "strategy", "logistics", "supply chain",
		}},
		EntryLevel: KeywordSet{Weight: 2, Keywords: []string{
			"coordinator", "executive", "officer", "assistant", "associate",
			"junior", "trainee", "graduate", "intern",
		}},
		FreshMarkers: KeywordSet{Weight: 3, Keywords: []string{
			"fresh", "graduate", "entry", "no experience",
		}},
		Seniority: KeywordSet{Weight: 10, Keywords: slices.Clone(filter.SeniorityKeywords)},
	}
}

// Rule names reported by Explain.
const (
	RuleHighValue   = "high-value"
	RuleMediumValue = "medium-value"
	RuleEntryLevel  = "entry-level"
	RuleFresh       = "fresh-marker"
	RuleSeniority   = "seniority"
)

// Hit is one rule that contributed to a score.
type Hit struct {
	Rule    string
	Keyword string
	Points  int
}

// Scorer assigns relevance scores from keyword rules. It holds no mutable
// state and is safe for concurrent use.
type Scorer struct {
	rules Rules
}

// NewScorer returns a scorer over lower-cased copies of the rule keywords.
func NewScorer(rules Rules) *Scorer {
	return &Scorer{rules: Rules{
		HighValue:    normalizeSet(rules.HighValue),
		MediumValue:  normalizeSet(rules.MediumValue),
		EntryLevel:   normalizeSet(rules.EntryLevel),
		FreshMarkers: normalizeSet(rules.FreshMarkers),
		Seniority:    normalizeSet(rules.Seniority),
	}}
}

// Score returns the job's score. It depends only on Title and Snippet.
func (s *Scorer) Score(job model.Job) int {
	total := 0
	for _, h := range s.Explain(job) {
		total += h.Points
	}
	return total
}

// Explain lists every rule hit in evaluation order.
func (s *Scorer) Explain(job model.Job) []Hit {
	title := strings.ToLower(job.Title)
	snippet := strings.ToLower(job.Snippet)

	var hits []Hit
	hits = appendEach(hits, RuleHighValue, s.rules.HighValue, title)
	hits = appendEach(hits, RuleMediumValue, s.rules.MediumValue, title)
	hits = appendEach(hits, RuleEntryLevel, s.rules.EntryLevel, title)

	if kw, ok := firstMatch(s.rules.FreshMarkers.Keywords, snippet); ok {
		hits = append(hits, Hit{Rule: RuleFresh, Keyword: kw, Points: s.rules.FreshMarkers.Weight})
	}
	if kw, ok := firstMatch(s.rules.Seniority.Keywords, title); ok {
		hits = append(hits, Hit{Rule: RuleSeniority, Keyword: kw, Points: -s.rules.Seniority.Weight})
	}
	return hits
}

// Apply returns scored copies of jobs. The input slice is not modified.
func (s *Scorer) Apply(jobs []model.Job) []model.Job {
	out := make([]model.Job, len(jobs))
	for i, j := range jobs {
		j.Score = s.Score(j)
		j.Scored = true
		out[i] = j
	}
	return out
}

func appendEach(hits []Hit, rule string, set KeywordSet, text string) []Hit {
	for _, kw := range set.Keywords {
		if strings.Contains(text, kw) {
			hits = append(hits, Hit{Rule: rule, Keyword: kw, Points: set.Weight})
		}
	}
	return hits
}

func firstMatch(keywords []string, text string) (string, bool) {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return kw, true
		}
	}
	return "", false
}

func normalizeSet(set KeywordSet) KeywordSet {
	out := KeywordSet{Weight: set.Weight, Keywords: make([]string, 0, len(set.Keywords))}
	for _, kw := range set.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		out.Keywords = append(out.Keywords, kw)
	}
	return out
}
