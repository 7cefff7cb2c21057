package tui

import (
	"testing"
	"time"
)

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		price float64
		want  string
	}{
		{0, "$0.00"},
		{5, "$5.00"},
		{19.99, "$19.99"},
		{250, "$250.00"},
		{1234, "$1,234.00"},
		{1234567.5, "$1,234,567.50"},
		{999999999.99, "$999,999,999.99"},
	}
	for _, tc := range tests {
		if got := formatPrice(tc.price); got != tc.want {
			t.Errorf("formatPrice(%v) = %q, want %q", tc.price, got, tc.want)
		}
	}
}

func TestFormatRating(t *testing.T) {
	tests := []struct {
		rating float64
		want   string
	}{
		{0, "☆☆☆☆☆"},
		{2.2, "★★☆☆☆"},
		{3.5, "★★★★☆"},
		{5, "★★★★★"},
		{7, "★★★★★"},
	}
	for _, tc := range tests {
		if got := formatRating(tc.rating); got != tc.want {
			t.Errorf("formatRating(%v) = %q, want %q", tc.rating, got, tc.want)
		}
	}
}

func TestFormatTime(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"zero", time.Time{}, ""},
		{"seconds", now.Add(-30 * time.Second), "just now"},
		{"minutes", now.Add(-5 * time.Minute), "5m ago"},
		{"hours", now.Add(-3 * time.Hour), "3h ago"},
		{"days", now.Add(-48 * time.Hour), "2d ago"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := formatTime(tc.t); got != tc.want {
				t.Errorf("formatTime() = %q, want %q", got, tc.want)
			}
		})
	}

	old := time.Date(2023, time.March, 14, 12, 0, 0, 0, time.UTC)
	if got := formatTime(old); got != "Mar 14 2023" {
		t.Errorf("formatTime(old) = %q, want %q", got, "Mar 14 2023")
	}
}

func TestTruncStr(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly-10", 10, "exactly-10"},
		{"this is too long", 10, "this is t…"},
		{"ünïcödé titles", 8, "ünïcödé…"},
	}
	for _, tc := range tests {
		if got := truncStr(tc.in, tc.maxLen); got != tc.want {
			t.Errorf("truncStr(%q, %d) = %q, want %q", tc.in, tc.maxLen, got, tc.want)
		}
	}
}
