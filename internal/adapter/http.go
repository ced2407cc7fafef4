package adapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/amishk599/avradar/internal/model"
)

const (
	// DefaultUserAgent mimics a desktop browser; several boards refuse bare Go clients.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultAcceptLanguage = "en-US,en;q=0.9"

	maxBodyBytes = 4 << 20
)

// NewHTTPClient returns the pooled client shared by every source.
// timeout bounds each individual request, not a whole fetch cycle.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     30 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return errors.New("stopped after 10 redirects")
			}
			return nil
		},
	}
}

// Transport is the shared, read-only request capability: one client plus the
// static headers sent with every request.
type Transport struct {
	client         *http.Client
	userAgent      string
	acceptLanguage string
}

// NewTransport wraps client with static headers. Empty header values fall
// back to the defaults.
func NewTransport(client *http.Client, userAgent, acceptLanguage string) *Transport {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if acceptLanguage == "" {
		acceptLanguage = DefaultAcceptLanguage
	}
	return &Transport{
		client:         client,
		userAgent:      userAgent,
		acceptLanguage: acceptLanguage,
	}
}

// get issues a GET and returns the body of a 2xx response.
// Non-2xx responses become *model.HTTPError.
func (t *Transport) get(ctx context.Context, source, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", source, err)
	}
	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set("Accept-Language", t.acceptLanguage)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: model.ParseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("%s request: unexpected status %d", source, resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%s read body: %w", source, err)
	}
	return body, nil
}

// Deps are the collaborators every adapter shares.
type Deps struct {
	Transport *Transport
	Pacer     Pacer // may be nil: no pacing
	Logger    *slog.Logger
}

// Pacer spaces successive requests to the same source.
type Pacer interface {
	Wait(ctx context.Context, source string) error
}

func (d Deps) wait(ctx context.Context, source string) error {
	if d.Pacer == nil {
		return ctx.Err()
	}
	return d.Pacer.Wait(ctx, source)
}
