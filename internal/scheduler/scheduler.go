package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"
)

// Pusher delivers one scheduled digest.
type Pusher interface {
	Push(ctx context.Context, label string) error
}

// Scheduler owns the main loop: it sleeps until the next daily slot and runs
// one push per slot.
type Scheduler struct {
	pusher     Pusher
	hours      []int
	loc        *time.Location
	runOnStart bool
	now        func() time.Time
	logger     *slog.Logger
}

// NewScheduler creates a scheduler that pushes at the given hours of the day
// in loc. Hours are sorted and deduplicated.
func NewScheduler(pusher Pusher, hours []int, loc *time.Location, runOnStart bool, logger *slog.Logger) *Scheduler {
	h := slices.Clone(hours)
	slices.Sort(h)
	h = slices.Compact(h)
	return &Scheduler{
		pusher:     pusher,
		hours:      h,
		loc:        loc,
		runOnStart: runOnStart,
		now:        time.Now,
		logger:     logger,
	}
}

// Labels returns the slot labels in firing order, e.g. "9:00 AM".
func (s *Scheduler) Labels() []string {
	labels := make([]string, len(s.hours))
	for i, h := range s.hours {
		labels[i] = SlotLabel(h)
	}
	return labels
}

// Run starts the push loop. It returns nil when ctx is cancelled (graceful shutdown).
func (s *Scheduler) Run(ctx context.Context) error {
	if len(s.hours) == 0 {
		return fmt.Errorf("scheduler: no slots configured")
	}

	s.logger.Info("starting scheduler",
		"slots", s.Labels(),
		"timezone", s.loc.String(),
	)

	if s.runOnStart {
		s.push(ctx, "")
	}

	for {
		next := NextSlot(s.now(), s.hours, s.loc)
		label := SlotLabel(next.Hour())
		wait := next.Sub(s.now())
		s.logger.Debug("next push scheduled", "slot", label, "in", wait.Round(time.Second))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("shutting down scheduler")
			return nil
		case <-timer.C:
			s.push(ctx, label)
		}
	}
}

func (s *Scheduler) push(ctx context.Context, label string) {
	if err := s.pusher.Push(ctx, label); err != nil {
		s.logger.Error("scheduled push failed", "slot", label, "error", err)
	}
}

// NextSlot returns the first slot strictly after now, in loc. hours must be
// sorted and non-empty.
func NextSlot(now time.Time, hours []int, loc *time.Location) time.Time {
	t := now.In(loc)
	y, m, d := t.Date()
	for _, h := range hours {
		slot := time.Date(y, m, d, h, 0, 0, 0, loc)
		if slot.After(t) {
			return slot
		}
	}
	return time.Date(y, m, d+1, hours[0], 0, 0, 0, loc)
}

// SlotLabel renders an hour of the day as a 12-hour clock label.
func SlotLabel(hour int) string {
	return time.Date(2000, 1, 1, hour, 0, 0, 0, time.UTC).Format("3:04 PM")
}
