package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/amishk599/avradar/internal/model"
)

const (
	MCFSourceName     = "MyCareersFuture"
	mcfDefaultBaseURL = "https://www.mycareersfuture.gov.sg"
	mcfDefaultPage    = 10
)

// mcfResponse is the top-level search response. Results are decoded one by
// one so a single malformed entry does not discard the whole page.
type mcfResponse struct {
	Results []json.RawMessage `json:"results"`
}

type mcfJob struct {
	UUID          string `json:"uuid"`
	Title         string `json:"title"`
	PostedCompany struct {
		Name string `json:"name"`
	} `json:"postedCompany"`
	Salary struct {
		Minimum flexInt `json:"minimum"`
		Maximum flexInt `json:"maximum"`
	} `json:"salary"`
	MinimumYearsExperience flexInt `json:"minimumYearsExperience"`
}

// flexInt accepts a JSON number, a numeric string, or null.
type flexInt struct {
	Value int64
	Valid bool
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = flexInt{}
		return nil
	}
	s := strings.Trim(string(data), `"`)
	if s == "" {
		*f = flexInt{}
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse number %q: %w", s, err)
	}
	*f = flexInt{Value: int64(v), Valid: true}
	return nil
}

// MCFConfig configures the MyCareersFuture adapter.
type MCFConfig struct {
	BaseURL  string
	Terms    []string
	PageSize int
}

// MCFAdapter fetches jobs from the MyCareersFuture public search API.
type MCFAdapter struct {
	baseURL  string
	terms    []string
	pageSize int
	deps     Deps
}

var _ model.Source = (*MCFAdapter)(nil)

// NewMCFAdapter creates an adapter for the MyCareersFuture search API.
func NewMCFAdapter(cfg MCFConfig, deps Deps) *MCFAdapter {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = mcfDefaultBaseURL
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = mcfDefaultPage
	}
	return &MCFAdapter{
		baseURL:  base,
		terms:    cfg.Terms,
		pageSize: pageSize,
		deps:     deps,
	}
}

func (a *MCFAdapter) Name() string { return MCFSourceName }

// FetchJobs runs one search per term, newest postings first.
func (a *MCFAdapter) FetchJobs(ctx context.Context) model.SourceResult {
	return runTerms(ctx, MCFSourceName, a.terms, a.deps, a.fetchTerm)
}

func (a *MCFAdapter) fetchTerm(ctx context.Context, term string) ([]model.Job, error) {
	q := url.Values{}
	q.Set("search", term)
	q.Set("limit", strconv.Itoa(a.pageSize))
	q.Set("page", "0")
	q.Set("sortBy", "new_posting_date")
	searchURL := a.baseURL + "/api/v2/search?" + q.Encode()

	body, err := a.deps.Transport.get(ctx, MCFSourceName, searchURL)
	if err != nil {
		return nil, err
	}

	var resp mcfResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("mcf decode for %q: %w", term, err)
	}

	jobs := make([]model.Job, 0, len(resp.Results))
	for i, raw := range resp.Results {
		var item mcfJob
		if err := json.Unmarshal(raw, &item); err != nil {
			a.deps.Logger.Warn("skipping malformed result", "source", MCFSourceName, "term", term, "index", i, "error", err)
			continue
		}
		jobs = append(jobs, a.toJob(item))
	}
	return jobs, nil
}

func (a *MCFAdapter) toJob(item mcfJob) model.Job {
	job := model.Job{
		Title:    item.Title,
		Company:  item.PostedCompany.Name,
		Location: model.DefaultLocation,
		Salary:   mcfSalary(item.Salary.Minimum, item.Salary.Maximum),
		Snippet:  mcfExperience(item.MinimumYearsExperience),
	}
	if item.UUID != "" {
		job.URL = a.baseURL + "/job/" + url.PathEscape(item.UUID)
	}
	return job
}

// mcfSalary renders a monthly range only when both bounds are known.
func mcfSalary(lo, hi flexInt) string {
	if !lo.Valid || !hi.Valid || lo.Value <= 0 || hi.Value <= 0 {
		return ""
	}
	return fmt.Sprintf("SGD %s – %s/month", humanize.Comma(lo.Value), humanize.Comma(hi.Value))
}

func mcfExperience(years flexInt) string {
	switch {
	case !years.Valid:
		return ""
	case years.Value <= 0:
		return "Fresh graduates welcome"
	case years.Value == 1:
		return "Min 1 year experience"
	default:
		return fmt.Sprintf("Min %d years experience", years.Value)
	}
}
