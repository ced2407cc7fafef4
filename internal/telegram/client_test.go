package telegram

import (
	"context"
	"errors"
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

func newTestClient(srv *httptest.Server) *Client {
	c := NewClient(srv.URL, "123:secret", srv.Client(), discardLogger())
	c.SetRetryPolicy(retry.Policy{
		MaxTries:        3,
		InitialInterval: 5 * time.Millisecond,
		MaxInterval:     10 * time.Millisecond,
		MaxElapsed:      5 * time.Second,
	})
	return c
}

func TestSendMessage_Payload(t *testing.T) {
	var path, chatID, text, parseMode, preview string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		chatID = r.FormValue("chat_id")
		text = r.FormValue("text")
		parseMode = r.FormValue("parse_mode")
		preview = r.FormValue("disable_web_page_preview")
		w.Write([]byte(`{"ok":true,"result":{"message_id":1,"chat":{"id":42,"type":"private"}}}`))
	}))
	defer srv.Close()

	if err := newTestClient(srv).SendMessage(context.Background(), 42, "hello"); err != nil {
		t.Fatalf("SendMessage() = %v", err)
	}
	if path != "/bot123:secret/sendMessage" {
		t.Errorf("path = %q", path)
	}
	if chatID != "42" || text != "hello" || parseMode != "MarkdownV2" || preview != "true" {
		t.Errorf("payload = chat_id %q text %q parse_mode %q preview %q", chatID, text, parseMode, preview)
	}
}

func TestSendMessage_RetriesOnRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"ok":false,"error_code":429,"description":"Too Many Requests: retry after 1","parameters":{"retry_after":1}}`))
			return
		}
		w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	defer srv.Close()

	start := time.Now()
	if err := newTestClient(srv).SendMessage(context.Background(), 1, "x"); err != nil {
		t.Fatalf("SendMessage() = %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
	if time.Since(start) < 900*time.Millisecond {
		t.Errorf("retry_after was not honoured")
	}
}

func TestSendMessage_PermanentError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`))
	}))
	defer srv.Close()

	err := newTestClient(srv).SendMessage(context.Background(), 7, "x")
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 403 {
		t.Fatalf("expected HTTPError 403, got %v", err)
	}
	if !strings.Contains(err.Error(), "blocked") {
		t.Errorf("error should carry the API description: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected no retries, got %d calls", calls.Load())
	}
}

func TestGetUpdates(t *testing.T) {
	var offset, timeout, allowed string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/getUpdates") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		offset = r.FormValue("offset")
		timeout = r.FormValue("timeout")
		allowed = r.FormValue("allowed_updates")
		w.Write([]byte(`{"ok":true,"result":[
			{"update_id":10,"message":{"message_id":1,"chat":{"id":555,"type":"private"},"text":"/start"}},
			{"update_id":11}
		]}`))
	}))
	defer srv.Close()

	updates, err := newTestClient(srv).GetUpdates(context.Background(), 9, 30*time.Second)
	if err != nil {
		t.Fatalf("GetUpdates() = %v", err)
	}
	if offset != "9" || timeout != "30" || allowed != `["message"]` {
		t.Errorf("request = offset %q timeout %q allowed_updates %q", offset, timeout, allowed)
	}
	if len(updates) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(updates))
	}
	if updates[0].Message == nil || updates[0].Message.Chat.ID != 555 || updates[0].Message.Text != "/start" {
		t.Errorf("first update = %+v", updates[0])
	}
	if updates[1].Message != nil {
		t.Errorf("expected nil message on non-message update")
	}
}

func TestGetUpdates_MessageFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true,"result":[
			{"update_id":3,"message":{"message_id":8,"from":{"id":99,"is_bot":false,"first_name":"A","username":"crew"},"chat":{"id":-100,"type":"group"},"text":"/status"}}
		]}`))
	}))
	defer srv.Close()

	updates, err := newTestClient(srv).GetUpdates(context.Background(), 0, time.Second)
	if err != nil {
		t.Fatalf("GetUpdates() = %v", err)
	}
	if len(updates) != 1 || updates[0].Message == nil {
		t.Fatalf("updates = %+v", updates)
	}
	m := updates[0].Message
	if updates[0].UpdateID != 3 || m.MessageID != 8 || m.Chat.ID != -100 || m.Chat.Type != "group" {
		t.Errorf("message = %+v", m)
	}
	if m.From == nil || m.From.ID != 99 || m.From.Username != "crew" {
		t.Errorf("from = %+v", m.From)
	}
}

func TestGetUpdates_ReturnsOnCancel(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write([]byte(`{"ok":true,"result":[]}`))
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestClient(srv).GetUpdates(ctx, 0, 30*time.Second)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestCall_RedactsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c := newTestClient(srv)
	srv.Close()

	_, err := c.GetUpdates(context.Background(), 0, time.Second)
	if err == nil {
		t.Fatal("expected error from closed server")
	}
	if strings.Contains(err.Error(), "secret") {
		t.Errorf("token leaked in error: %v", err)
	}
}

func TestCall_NonJSONErrorBodyIsRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	err := newTestClient(srv).SendMessage(context.Background(), 1, "x")
	if err == nil {
		t.Fatal("expected error for non-JSON body")
	}
	if strings.Contains(err.Error(), "secret") {
		t.Errorf("token leaked in error: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", calls.Load())
	}
}
