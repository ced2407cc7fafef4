package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// SourcePacer enforces a minimum delay between consecutive requests to the
// same source. Each source gets its own limiter, so sources never block each
// other; a single source's requests are spaced by its configured pause.
type SourcePacer struct {
	mu        sync.Mutex
	limiters  map[string]*rate.Limiter // key: source name
	minDelay  time.Duration
	overrides map[string]time.Duration
}

// NewSourcePacer creates a pacer that spaces requests to the same source by
// minDelay. overrides may set a different delay per source name.
func NewSourcePacer(minDelay time.Duration, overrides map[string]time.Duration) *SourcePacer {
	return &SourcePacer{
		limiters:  make(map[string]*rate.Limiter),
		minDelay:  minDelay,
		overrides: overrides,
	}
}

// DelayFor returns the pause applied to the given source.
func (p *SourcePacer) DelayFor(source string) time.Duration {
	if d, ok := p.overrides[source]; ok {
		return d
	}
	return p.minDelay
}

func (p *SourcePacer) limiterFor(source string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if lim, ok := p.limiters[source]; ok {
		return lim
	}
	// Burst 1: the first request goes out immediately, every later one waits
	// a full interval after the previous.
	lim := rate.NewLimiter(rate.Every(p.DelayFor(source)), 1)
	p.limiters[source] = lim
	return lim
}

// Wait blocks until the next request to source may be sent.
// Returns an error if the context is cancelled while waiting.
func (p *SourcePacer) Wait(ctx context.Context, source string) error {
	if err := p.limiterFor(source).Wait(ctx); err != nil {
		return fmt.Errorf("pacing wait for %s: %w", source, err)
	}
	return nil
}
