package poller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amishk599/avradar/internal/model"
)

// JobFetcher runs one fetch cycle and returns the ranked, truncated jobs.
type JobFetcher interface {
	FetchAllJobs(ctx context.Context) []model.Job
}

// SubscriberCounter reports how many chats would receive a push.
type SubscriberCounter interface {
	Count() (int, error)
}

// DigestPoller owns one scheduled push:
// check audience → fetch cycle → build digest → notify.
type DigestPoller struct {
	fetcher     JobFetcher
	subscribers SubscriberCounter
	notifier    model.Notifier
	now         func() time.Time
	logger      *slog.Logger
}

// NewDigestPoller creates a poller wired with all its dependencies.
// A nil subscribers counter means the notifier has a fixed audience
// (Slack, log) and every push runs.
func NewDigestPoller(
	fetcher JobFetcher,
	subscribers SubscriberCounter,
	notifier model.Notifier,
	logger *slog.Logger,
) *DigestPoller {
	return &DigestPoller{
		fetcher:     fetcher,
		subscribers: subscribers,
		notifier:    notifier,
		now:         time.Now,
		logger:      logger,
	}
}

// Push runs one fetch cycle and delivers the result as a digest labelled
// with the schedule slot. It skips the fetch when nobody is subscribed.
func (p *DigestPoller) Push(ctx context.Context, label string) error {
	if p.subscribers != nil {
		n, err := p.subscribers.Count()
		if err != nil {
			return fmt.Errorf("push %s: counting subscribers: %w", label, err)
		}
		if n == 0 {
			p.logger.Info("no subscribers, skipping push", "slot", label)
			return nil
		}
	}

	start := p.now()
	jobs := p.fetcher.FetchAllJobs(ctx)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("push %s: %w", label, err)
	}

	d := model.Digest{Jobs: jobs, Label: label, GeneratedAt: p.now()}
	if err := p.notifier.Notify(ctx, d); err != nil {
		return fmt.Errorf("push %s: notifying: %w", label, err)
	}

	p.logger.Info("pushed digest",
		"slot", label,
		"jobs", len(jobs),
		"elapsed", p.now().Sub(start).Round(time.Millisecond),
	)
	return nil
}
