package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"
)

// --- Mock implementations ---

type recordingPusher struct {
	mu     sync.Mutex
	labels []string
	err    error
}

func (p *recordingPusher) Push(_ context.Context, label string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.labels = append(p.labels, label)
	return p.err
}

func (p *recordingPusher) Labels() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.labels)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var sgt = time.FixedZone("SGT", 8*3600)

// --- Tests ---

func TestNextSlot(t *testing.T) {
	hours := []int{9, 12, 15}
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"early morning", time.Date(2026, 3, 2, 6, 30, 0, 0, sgt), time.Date(2026, 3, 2, 9, 0, 0, 0, sgt)},
		{"exactly on slot", time.Date(2026, 3, 2, 9, 0, 0, 0, sgt), time.Date(2026, 3, 2, 12, 0, 0, 0, sgt)},
		{"between slots", time.Date(2026, 3, 2, 12, 0, 1, 0, sgt), time.Date(2026, 3, 2, 15, 0, 0, 0, sgt)},
		{"after last slot", time.Date(2026, 3, 2, 18, 0, 0, 0, sgt), time.Date(2026, 3, 3, 9, 0, 0, 0, sgt)},
		{"month rollover", time.Date(2026, 3, 31, 23, 0, 0, 0, sgt), time.Date(2026, 4, 1, 9, 0, 0, 0, sgt)},
		// 02:00 UTC is 10:00 SGT.
		{"input in another zone", time.Date(2026, 3, 2, 2, 0, 0, 0, time.UTC), time.Date(2026, 3, 2, 12, 0, 0, 0, sgt)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextSlot(tt.now, hours, sgt)
			if !got.Equal(tt.want) {
				t.Errorf("NextSlot(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestSlotLabel(t *testing.T) {
	tests := map[int]string{
		0:  "12:00 AM",
		9:  "9:00 AM",
		12: "12:00 PM",
		15: "3:00 PM",
		23: "11:00 PM",
	}
	for hour, want := range tests {
		if got := SlotLabel(hour); got != want {
			t.Errorf("SlotLabel(%d) = %q, want %q", hour, got, want)
		}
	}
}

func TestNewScheduler_SortsHours(t *testing.T) {
	s := NewScheduler(&recordingPusher{}, []int{15, 9, 12, 9}, sgt, false, discardLogger())
	want := []string{"9:00 AM", "12:00 PM", "3:00 PM"}
	if got := s.Labels(); !slices.Equal(got, want) {
		t.Errorf("Labels() = %v, want %v", got, want)
	}
}

func TestRun_CancelReturnsPromptly(t *testing.T) {
	s := NewScheduler(&recordingPusher{}, []int{9}, sgt, false, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil error on cancel, got: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not return within 2s after cancel")
	}
}

func TestRun_RunOnStart(t *testing.T) {
	pusher := &recordingPusher{}
	s := NewScheduler(pusher, []int{9}, sgt, true, discardLogger())
	// Pin the clock well away from the slot so only the startup push fires.
	s.now = func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, sgt) }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	if got := pusher.Labels(); !slices.Equal(got, []string{""}) {
		t.Errorf("pushes = %q, want one unlabelled startup push", got)
	}
}

func TestRun_FiresSlotWithLabel(t *testing.T) {
	pusher := &recordingPusher{err: errors.New("push failed")}
	s := NewScheduler(pusher, []int{12}, sgt, false, discardLogger())
	// 50ms before noon; the frozen clock makes every wait 50ms.
	s.now = func() time.Time { return time.Date(2026, 3, 2, 11, 59, 59, 950_000_000, sgt) }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	time.Sleep(130 * time.Millisecond)
	cancel()
	<-done

	got := pusher.Labels()
	if len(got) < 1 {
		t.Fatal("expected the noon slot to fire")
	}
	for _, l := range got {
		if l != "12:00 PM" {
			t.Errorf("label = %q, want 12:00 PM", l)
		}
	}
}

func TestRun_NoSlots(t *testing.T) {
	s := NewScheduler(&recordingPusher{}, nil, sgt, false, discardLogger())
	if err := s.Run(context.Background()); err == nil {
		t.Fatal("expected error with no slots configured")
	}
}
