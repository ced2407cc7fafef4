package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amishk599/avradar/internal/model"
	"github.com/amishk599/avradar/internal/retry"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleJob(title, company string) model.Job {
	return model.Job{
		Source:   "MyCareersFuture",
		Company:  company,
		Title:    title,
		Location: "Singapore",
		URL:      "https://example.com/apply",
		Snippet:  "Min 1 year experience",
		Score:    5,
	}
}

func newTestSlack(srv *httptest.Server) *SlackNotifier {
	n := NewSlackNotifier(srv.URL, srv.Client(), testOptions(), discardLogger())
	n.SetRetryPolicy(retry.Policy{
		MaxTries:        3,
		InitialInterval: 5 * time.Millisecond,
		MaxInterval:     10 * time.Millisecond,
		MaxElapsed:      5 * time.Second,
	})
	return n
}

func TestSlackNotifier_EmptyDigest(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if err := newTestSlack(srv).Notify(context.Background(), model.Digest{}); err != nil {
		t.Fatalf("Notify() = %v, want nil", err)
	}

	var payload slackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Text != EmptyDigestText {
		t.Errorf("text = %q", payload.Text)
	}
}

func TestSlackNotifier_SingleJob(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := model.Digest{Label: "9:00 AM", Jobs: []model.Job{sampleJob("Airport Executive", "Changi <Airport> & Co")}}
	if err := newTestSlack(srv).Notify(context.Background(), d); err != nil {
		t.Fatalf("Notify() = %v, want nil", err)
	}

	var payload slackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}

	// header, count, job section, actions, divider
	if len(payload.Blocks) != 5 {
		t.Fatalf("expected 5 blocks, got %d", len(payload.Blocks))
	}
	header := payload.Blocks[0]
	if header.Type != "header" || header.Text.Text != "✈️ Aviation & PM Job Listings · 9:00 AM SGT" {
		t.Errorf("header = %+v", header.Text)
	}
	section := payload.Blocks[2].Text.Text
	for _, want := range []string{"🇸🇬 *Airport Executive*", "`+5`", "🔵 1–2 Years Exp", "Changi &lt;Airport&gt; &amp; Co"} {
		if !strings.Contains(section, want) {
			t.Errorf("section missing %q: %q", want, section)
		}
	}
	button := payload.Blocks[3].Elements[0]
	if button.URL != "https://example.com/apply" || button.Style != "primary" {
		t.Errorf("button = %+v", button)
	}
	if payload.Blocks[4].Type != "divider" {
		t.Errorf("block[4] type = %q, want divider", payload.Blocks[4].Type)
	}
}

func TestSlackNotifier_ChunksLargeDigests(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var p slackPayload
		json.NewDecoder(r.Body).Decode(&p)
		if len(p.Blocks) > 50 {
			t.Errorf("payload has %d blocks", len(p.Blocks))
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var jobs []model.Job
	for i := 0; i < 25; i++ {
		jobs = append(jobs, sampleJob(fmt.Sprintf("Role %d", i), "X"))
	}

	if err := newTestSlack(srv).Notify(context.Background(), model.Digest{Jobs: jobs}); err != nil {
		t.Fatalf("Notify() = %v", err)
	}
	if c := calls.Load(); c != 3 {
		t.Errorf("expected 3 messages for 25 jobs, got %d", c)
	}
}

func TestSlackNotifier_ServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := newTestSlack(srv).Notify(context.Background(), model.Digest{Jobs: []model.Job{sampleJob("A", "B")}})
	if err == nil {
		t.Fatal("expected error after retries, got nil")
	}
	if c := calls.Load(); c != 3 {
		t.Errorf("expected 3 attempts, got %d", c)
	}
}

func TestSlackNotifier_BadRequestNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	if err := newTestSlack(srv).Notify(context.Background(), model.Digest{}); err == nil {
		t.Fatal("expected error")
	}
	if c := calls.Load(); c != 1 {
		t.Errorf("expected 1 attempt, got %d", c)
	}
}

func TestSlackNotifier_RateLimited(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := newTestSlack(srv).Notify(context.Background(), model.Digest{Jobs: []model.Job{sampleJob("Rate Limited Job", "Test")}})
	if err != nil {
		t.Fatalf("expected nil after retry, got %v", err)
	}
	if c := calls.Load(); c != 2 {
		t.Errorf("expected 2 HTTP calls (initial + retry), got %d", c)
	}
}

func TestSendTestMessage(t *testing.T) {
	var buf strings.Builder
	n := NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)))
	if err := SendTestMessage(context.Background(), n); err != nil {
		t.Fatalf("SendTestMessage() = %v", err)
	}
	if !strings.Contains(buf.String(), "Integration Verified") {
		t.Errorf("test job not delivered: %s", buf.String())
	}
}
