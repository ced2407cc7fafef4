package adapter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/amishk599/avradar/internal/model"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Airport\n\t Officer ", "Airport Officer"},
		{"SATS Ltd", "SATS Ltd"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := cleanText(tt.in); got != tt.want {
			t.Errorf("cleanText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("Changi 樟宜机场", 8); got != "Changi 樟" {
		t.Errorf("got %q", got)
	}
	if got := truncateRunes("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := truncateRunes("x", 0); got != "" {
		t.Errorf("got %q", got)
	}
}

func TestResolveURL(t *testing.T) {
	base, _ := url.Parse("https://www.example.com/careers/")
	tests := []struct {
		href, want string
	}{
		{"/jobs/1", "https://www.example.com/jobs/1"},
		{"jobs/2", "https://www.example.com/careers/jobs/2"},
		{"https://other.com/x", "https://other.com/x"},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := resolveURL(base, tt.href); got != tt.want {
			t.Errorf("resolveURL(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}

func TestRunTerms_NormalizesAndTagsSource(t *testing.T) {
	fetch := func(ctx context.Context, term string) ([]model.Job, error) {
		if term == "bad" {
			return nil, errors.New("boom")
		}
		return []model.Job{{Title: "  ", Location: ""}}, nil
	}

	res := runTerms(context.Background(), "Test", []string{"good", "bad", "good"}, Deps{Logger: discardLogger()}, fetch)

	if len(res.Jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(res.Jobs))
	}
	for _, j := range res.Jobs {
		if j.Source != "Test" || j.Title != model.UntitledPlaceholder || j.Location != model.DefaultLocation {
			t.Errorf("job not normalized: %+v", j)
		}
	}
	if len(res.Failures) != 1 || res.Failures[0].Term != "bad" {
		t.Errorf("failures = %+v", res.Failures)
	}
}

type blockingPacer struct{}

func (blockingPacer) Wait(ctx context.Context, _ string) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestRunTerms_StopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	calls := 0
	fetch := func(ctx context.Context, term string) ([]model.Job, error) {
		calls++
		return nil, nil
	}

	deps := Deps{Pacer: blockingPacer{}, Logger: discardLogger()}
	res := runTerms(ctx, "Test", []string{"a", "b", "c"}, deps, fetch)

	if calls != 0 {
		t.Errorf("expected no fetches, got %d", calls)
	}
	if len(res.Failures) != 1 || !errors.Is(res.Failures[0].Err, context.DeadlineExceeded) {
		t.Errorf("failures = %+v", res.Failures)
	}
}

// countingPacer records each Wait in the shared event log.
type countingPacer struct {
	mu      *sync.Mutex
	events  *[]string
	sources []string
}

func (p *countingPacer) Wait(_ context.Context, source string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sources = append(p.sources, source)
	*p.events = append(*p.events, "wait")
	return nil
}

func TestRunTerms_PacesEachTerm(t *testing.T) {
	var mu sync.Mutex
	var events []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		events = append(events, "get "+r.URL.Query().Get("search"))
		mu.Unlock()
		w.Write([]byte(`{"results": [{"uuid": "1", "title": "Flight Operations Officer"}]}`))
	}))
	defer srv.Close()

	pacer := &countingPacer{mu: &mu, events: &events}
	deps := testDeps(srv)
	deps.Pacer = pacer

	a := NewMCFAdapter(MCFConfig{BaseURL: srv.URL, Terms: []string{"aviation", "airport", "cargo"}}, deps)
	res := a.FetchJobs(context.Background())
	if !res.OK() || len(res.Jobs) != 3 {
		t.Fatalf("result = %+v", res)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(pacer.sources) != 3 {
		t.Fatalf("expected 3 waits, got %d", len(pacer.sources))
	}
	for _, s := range pacer.sources {
		if s != MCFSourceName {
			t.Errorf("Wait source = %q, want %q", s, MCFSourceName)
		}
	}
	want := []string{"wait", "get aviation", "wait", "get airport", "wait", "get cargo"}
	if len(events) != len(want) {
		t.Fatalf("events = %v", events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("events = %v, want %v", events, want)
			break
		}
	}
}
