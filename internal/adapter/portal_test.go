package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/amishk599/avradar/internal/filter"
)

const portalPage = `<html><body>
<nav><a href="/about">About us</a><a href="/careers">Careers</a></nav>
<ul>
  <li><a href="/jobs/1">Airport Operations Officer (Terminal 3)</a></li>
  <li><a href="https://jobs.example.com/2">Cargo Planning Executive</a></li>
  <li><a href="/jobs/3">Privacy policy and terms of use</a></li>
  <li><a href="/jobs/4">Revenue Management Analyst</a></li>
  <li><a href="/jobs/5">Network Planning Manager</a></li>
</ul>
</body></html>`

func newPortalAdapter(url string, srv *httptest.Server) *PortalAdapter {
	return NewPortalAdapter(PortalConfig{
		Portals:        []Portal{{Name: "SATS Careers", Company: "SATS", URL: url}},
		RelevanceMatch: filter.NewTitleFilter(filter.RelevanceKeywords, nil),
	}, testDeps(srv))
}

func TestPortalFetchJobs_ExtractsRelevantLinks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(portalPage))
	}))
	defer srv.Close()

	a := newPortalAdapter(srv.URL+"/careers", srv)
	res := a.FetchJobs(context.Background())

	if len(res.Failures) != 0 {
		t.Fatalf("unexpected failures: %+v", res.Failures)
	}
	if len(res.Jobs) != 3 {
		t.Fatalf("expected 3 links (capped), got %d: %+v", len(res.Jobs), res.Jobs)
	}

	wantTitles := []string{
		"Airport Operations Officer (Terminal 3)",
		"Cargo Planning Executive",
		"Revenue Management Analyst",
	}
	for i, want := range wantTitles {
		if res.Jobs[i].Title != want {
			t.Errorf("job %d title = %q, want %q", i, res.Jobs[i].Title, want)
		}
		if res.Jobs[i].Source != "SATS Careers" {
			t.Errorf("job %d source = %q", i, res.Jobs[i].Source)
		}
		if res.Jobs[i].Company != "SATS" {
			t.Errorf("job %d company = %q", i, res.Jobs[i].Company)
		}
	}
	if res.Jobs[0].URL != srv.URL+"/jobs/1" {
		t.Errorf("relative link not resolved: %q", res.Jobs[0].URL)
	}
	if res.Jobs[1].URL != "https://jobs.example.com/2" {
		t.Errorf("absolute link changed: %q", res.Jobs[1].URL)
	}
}

func TestPortalFetchJobs_FallbackWhenNothingMatches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<a href="/a">Home</a><a href="/b">Privacy policy and cookies</a>`))
	}))
	defer srv.Close()

	a := newPortalAdapter(srv.URL+"/careers", srv)
	res := a.FetchJobs(context.Background())

	if len(res.Failures) != 0 {
		t.Fatalf("an empty page is not a failure: %+v", res.Failures)
	}
	if len(res.Jobs) != 1 {
		t.Fatalf("expected single fallback record, got %d", len(res.Jobs))
	}
	j := res.Jobs[0]
	if j.Title != "Visit SATS careers page" || j.URL != srv.URL+"/careers" || j.Snippet != PortalFallbackSnippet {
		t.Errorf("fallback = %+v", j)
	}
}

func TestPortalFetchJobs_FallbackOnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := newPortalAdapter(srv.URL+"/careers", srv)
	res := a.FetchJobs(context.Background())

	if !res.OK() {
		t.Fatalf("portal error must not fail the source: %v", res.Err)
	}
	if len(res.Failures) != 1 || res.Failures[0].Term != "SATS Careers" {
		t.Fatalf("failures = %+v", res.Failures)
	}
	if len(res.Jobs) != 1 || !strings.HasPrefix(res.Jobs[0].Title, "Visit SATS") {
		t.Fatalf("expected fallback record, got %+v", res.Jobs)
	}
}

func TestExtractJobLinks_TruncatesLongLabels(t *testing.T) {
	long := "Aviation " + strings.Repeat("x", 200)
	links, err := extractJobLinks([]byte(`<a href="/j">`+long+`</a>`), nil, nil, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(links) != 1 {
		t.Fatalf("expected 1 link, got %d", len(links))
	}
	if n := len([]rune(links[0].text)); n != maxPortalTitleRunes {
		t.Errorf("label length = %d, want %d", n, maxPortalTitleRunes)
	}
}
