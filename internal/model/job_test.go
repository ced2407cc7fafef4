package model

import (
	"errors"
	"testing"
	"time"
)

func TestNormalize_AppliesDefaults(t *testing.T) {
	j := Job{Source: " Indeed ", Title: "   ", Company: " SATS "}.Normalize()

	if j.Title != UntitledPlaceholder {
		t.Errorf("Title = %q, want %q", j.Title, UntitledPlaceholder)
	}
	if j.Location != DefaultLocation {
		t.Errorf("Location = %q, want %q", j.Location, DefaultLocation)
	}
	if j.Source != "Indeed" || j.Company != "SATS" {
		t.Errorf("fields not trimmed: %+v", j)
	}
	if j.Scored {
		t.Error("Normalize must not mark a job as scored")
	}
}

func TestNormalize_KeepsPresentValues(t *testing.T) {
	in := Job{Source: "LinkedIn", Title: "Ramp Officer", Location: "Changi", URL: "https://x/1", Salary: "SGD 3,000"}
	got := in.Normalize()
	if got != in {
		t.Errorf("Normalize() = %+v, want %+v", got, in)
	}
}

func TestHTTPError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &HTTPError{StatusCode: 503, Err: inner}
	if !errors.Is(err, inner) {
		t.Error("expected errors.Is to find wrapped error")
	}
	if err.Error() != "HTTP 503: boom" {
		t.Errorf("Error() = %q", err.Error())
	}
	if (&HTTPError{StatusCode: 404}).Error() != "HTTP 404" {
		t.Error("unexpected message for bare status")
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"5", 5 * time.Second},
		{"-1", 0},
		{"Wed, 21 Oct 2015 07:28:00 GMT", 0},
	}
	for _, tt := range tests {
		if got := ParseRetryAfter(tt.in); got != tt.want {
			t.Errorf("ParseRetryAfter(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
