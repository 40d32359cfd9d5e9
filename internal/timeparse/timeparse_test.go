package timeparse

import (
	"errors"
	"testing"
	"time"
)

func TestParse_ClockTimes(t *testing.T) {
	t.Parallel()

	// 2024-01-01 15:00 UTC.
	ref := time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		text string
		ref  time.Time
		want time.Time
	}{
		{
			name: "later today stays today",
			text: "4pm",
			ref:  ref,
			want: time.Date(2024, 1, 1, 16, 0, 0, 0, time.UTC),
		},
		{
			name: "already past rolls to tomorrow",
			text: "4pm",
			ref:  time.Date(2024, 1, 1, 16, 30, 0, 0, time.UTC),
			want: time.Date(2024, 1, 2, 16, 0, 0, 0, time.UTC),
		},
		{
			name: "exactly now rolls to tomorrow",
			text: "3pm",
			ref:  ref,
			want: time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC),
		},
		{
			name: "12-hour with minutes and space",
			text: "4:30 pm",
			ref:  ref,
			want: time.Date(2024, 1, 1, 16, 30, 0, 0, time.UTC),
		},
		{
			name: "12-hour with minutes no space",
			text: "4:30pm",
			ref:  ref,
			want: time.Date(2024, 1, 1, 16, 30, 0, 0, time.UTC),
		},
		{
			name: "bare hour with meridiem",
			text: "9 am",
			ref:  ref,
			want: time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "uppercase meridiem",
			text: "4PM",
			ref:  ref,
			want: time.Date(2024, 1, 1, 16, 0, 0, 0, time.UTC),
		},
		{
			name: "24-hour form",
			text: "16:00",
			ref:  ref,
			want: time.Date(2024, 1, 1, 16, 0, 0, 0, time.UTC),
		},
		{
			name: "bare 24-hour",
			text: "23",
			ref:  ref,
			want: time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC),
		},
		{
			name: "clock without meridiem reads as written",
			text: "4:30",
			ref:  ref,
			want: time.Date(2024, 1, 2, 4, 30, 0, 0, time.UTC),
		},
		{
			name: "midnight",
			text: "12:00 am",
			ref:  ref,
			want: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "tomorrow with clock",
			text: "tomorrow 9:00",
			ref:  ref,
			want: time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "tomorrow with later time is still tomorrow",
			text: "tomorrow 11pm",
			ref:  ref,
			want: time.Date(2024, 1, 2, 23, 0, 0, 0, time.UTC),
		},
		{
			name: "bare tomorrow defaults to morning",
			text: "tomorrow",
			ref:  ref,
			want: time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "surrounding whitespace",
			text: "  4 pm  ",
			ref:  ref,
			want: time.Date(2024, 1, 1, 16, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := Parse(tc.text, tc.ref)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tc.text, err)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("Parse(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}

func TestParse_RelativeDurations(t *testing.T) {
	t.Parallel()

	ref := time.Date(2024, 1, 1, 23, 50, 0, 0, time.UTC)

	cases := []struct {
		text string
		want time.Duration
	}{
		{"in 20 minutes", 20 * time.Minute},
		{"in 1 minute", time.Minute},
		{"in 90 mins", 90 * time.Minute},
		{"in 5m", 5 * time.Minute},
		{"in 2 hours", 2 * time.Hour},
		{"in 1 hr", time.Hour},
		{"in 3h", 3 * time.Hour},
		{"in 45 seconds", 45 * time.Second},
		{"in 30s", 30 * time.Second},
	}

	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			t.Parallel()

			got, err := Parse(tc.text, ref)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tc.text, err)
			}
			// Exactly ref + duration, even across midnight: relative
			// input is never rolled forward.
			if want := ref.Add(tc.want); !got.Equal(want) {
				t.Fatalf("Parse(%q) = %v, want %v", tc.text, got, want)
			}
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()

	ref := time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)

	cases := []string{
		"",
		"   ",
		"soonish",
		"25:00",
		"13pm",
		"4:75",
		"in",
		"in minutes",
		"in -5 minutes",
		"in 0 minutes",
		"in 5 fortnights",
		"in twenty minutes",
		"tomorrow maybe",
		"half past four",
	}

	for _, text := range cases {
		t.Run("malformed/"+text, func(t *testing.T) {
			t.Parallel()

			_, err := Parse(text, ref)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want ParseError", text)
			}

			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Parse(%q) error = %v, want *ParseError", text, err)
			}
			if pe.Text != text {
				t.Fatalf("ParseError.Text = %q, want %q", pe.Text, text)
			}
		})
	}
}

func TestParse_HugeDurationsFailInsteadOfWrapping(t *testing.T) {
	t.Parallel()

	ref := time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)

	// Values whose product with the unit overflows time.Duration; a
	// wrapped negative duration would land before the reference time.
	cases := []string{
		"in 9223372036854775807 minutes",
		"in 9223372036854775807 seconds",
		"in 5000000000000 hours",
	}

	for _, text := range cases {
		got, err := Parse(text, ref)
		if err == nil {
			t.Fatalf("Parse(%q) = %v, want *ParseError", text, got)
		}

		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("Parse(%q) error = %v, want *ParseError", text, err)
		}
	}
}

func TestParse_Deterministic(t *testing.T) {
	t.Parallel()

	ref := time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)

	a, err := Parse("4pm", ref)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	b, err := Parse("4pm", ref)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if !a.Equal(b) {
		t.Fatalf("Parse is not deterministic: %v vs %v", a, b)
	}
}

func TestParse_RespectsReferenceLocation(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+2", 2*60*60)
	ref := time.Date(2024, 1, 1, 15, 0, 0, 0, loc)

	got, err := Parse("4pm", ref)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	want := time.Date(2024, 1, 1, 16, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("Parse(4pm) = %v, want %v", got, want)
	}
}
