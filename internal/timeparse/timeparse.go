// Package timeparse turns loosely written time expressions ("4pm",
// "in 20 minutes", "tomorrow 9:00") into absolute timestamps.
package timeparse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseError reports time text that could not be understood.
type ParseError struct {
	Text string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unrecognized time expression %q", e.Text)
}

// Clock-only layouts probed in order, 12-hour forms first.
var clockLayouts = []string{
	"3:04 pm",
	"3:04pm",
	"3 pm",
	"3pm",
	"3:04",
	"15:04",
	"15",
}

// parsed is the intermediate tagged form: either a clock time still
// needing a date, or a duration relative to the reference time.
type parsed struct {
	relative bool
	duration time.Duration
	hour     int
	minute   int
	tomorrow bool
}

// Parse resolves text against ref and returns the absolute fire time.
// It is pure: the same (text, ref) pair always yields the same result,
// and failures are always a *ParseError, never a past or default time.
func Parse(text string, ref time.Time) (time.Time, error) {
	p, ok := scan(text)
	if !ok {
		return time.Time{}, &ParseError{Text: text}
	}
	return resolve(p, ref), nil
}

func scan(text string) (parsed, bool) {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return parsed{}, false
	}

	if rest, ok := strings.CutPrefix(s, "in "); ok {
		d, ok := scanDuration(rest)
		if !ok {
			return parsed{}, false
		}
		return parsed{relative: true, duration: d}, true
	}

	tomorrow := false
	if rest, ok := strings.CutPrefix(s, "tomorrow"); ok {
		tomorrow = true
		s = strings.TrimSpace(rest)
		if s == "" {
			// Bare "tomorrow" means tomorrow morning.
			return parsed{tomorrow: true, hour: 9}, true
		}
	}

	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return parsed{tomorrow: tomorrow, hour: t.Hour(), minute: t.Minute()}, true
	}
	return parsed{}, false
}

func scanDuration(s string) (time.Duration, bool) {
	fields := strings.Fields(s)
	var num, unit string
	switch len(fields) {
	case 1:
		// "20min", "2h"
		i := 0
		for i < len(fields[0]) && fields[0][i] >= '0' && fields[0][i] <= '9' {
			i++
		}
		num, unit = fields[0][:i], fields[0][i:]
	case 2:
		num, unit = fields[0], fields[1]
	default:
		return 0, false
	}

	n, err := strconv.Atoi(num)
	if err != nil || n <= 0 {
		return 0, false
	}

	switch unit {
	case "second", "seconds", "sec", "secs", "s":
		return mulDuration(n, time.Second)
	case "minute", "minutes", "min", "mins", "m":
		return mulDuration(n, time.Minute)
	case "hour", "hours", "hr", "hrs", "h":
		return mulDuration(n, time.Hour)
	}
	return 0, false
}

// mulDuration rejects products that overflow time.Duration; a wrapped
// negative duration would resolve to a time before the reference.
func mulDuration(n int, unit time.Duration) (time.Duration, bool) {
	d := time.Duration(n) * unit
	if d/unit != time.Duration(n) {
		return 0, false
	}
	return d, true
}

// resolve applies the roll-forward policy: a clock-only time at or
// before the reference's time-of-day lands on the next calendar day.
// Relative durations add to the reference and are never rolled.
func resolve(p parsed, ref time.Time) time.Time {
	if p.relative {
		return ref.Add(p.duration)
	}

	t := time.Date(ref.Year(), ref.Month(), ref.Day(), p.hour, p.minute, 0, 0, ref.Location())
	if p.tomorrow {
		return t.AddDate(0, 0, 1)
	}
	if !t.After(ref) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}
