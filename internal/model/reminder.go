package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adhocore/gronx"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusFired     Status = "fired"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusFired, StatusCancelled:
		return true
	}
	return false
}

// canTransition reports whether a status change is legal.
// pending may fire or be cancelled; a fired recurring reminder
// is re-armed back to pending. cancelled is terminal.
// The SQL stores enforce this machine with conditional updates; this
// is the package-local statement of it.
func canTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusFired || to == StatusCancelled
	case StatusFired:
		return to == StatusPending
	}
	return false
}

type RecurrenceKind string

const (
	RecurNone   RecurrenceKind = ""
	RecurDaily  RecurrenceKind = "daily"
	RecurWeekly RecurrenceKind = "weekly"
	RecurEvery  RecurrenceKind = "every"
	RecurCron   RecurrenceKind = "cron"
)

// Recurrence is the rule by which a fired reminder is re-armed.
// The zero value means one-shot.
type Recurrence struct {
	Kind     RecurrenceKind
	Interval time.Duration // every kind only
	Cron     string        // cron kind only
}

// InvalidRecurrenceError reports a recurrence form that could not be
// parsed.
type InvalidRecurrenceError struct {
	Text string
	Err  error
}

func (e *InvalidRecurrenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid recurrence %q: %v", e.Text, e.Err)
	}
	return fmt.Sprintf("invalid recurrence %q", e.Text)
}

func (e *InvalidRecurrenceError) Unwrap() error {
	return e.Err
}

// ParseRecurrence parses the serialized recurrence form:
// "" or "none", "daily", "weekly", "every:<duration>", "cron:<expr>".
// Failures are always an *InvalidRecurrenceError.
func ParseRecurrence(s string) (Recurrence, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "" || s == "none":
		return Recurrence{}, nil
	case s == string(RecurDaily):
		return Recurrence{Kind: RecurDaily}, nil
	case s == string(RecurWeekly):
		return Recurrence{Kind: RecurWeekly}, nil
	case strings.HasPrefix(s, "every:"):
		d, err := time.ParseDuration(strings.TrimPrefix(s, "every:"))
		if err != nil {
			return Recurrence{}, &InvalidRecurrenceError{Text: s, Err: err}
		}
		if d <= 0 {
			return Recurrence{}, &InvalidRecurrenceError{Text: s, Err: errors.New("interval must be > 0")}
		}
		return Recurrence{Kind: RecurEvery, Interval: d}, nil
	case strings.HasPrefix(s, "cron:"):
		expr := strings.TrimPrefix(s, "cron:")
		if !gronx.New().IsValid(expr) {
			return Recurrence{}, &InvalidRecurrenceError{Text: s, Err: errors.New("bad cron expression")}
		}
		return Recurrence{Kind: RecurCron, Cron: expr}, nil
	}
	return Recurrence{}, &InvalidRecurrenceError{Text: s}
}

func (r Recurrence) IsZero() bool {
	return r.Kind == RecurNone
}

func (r Recurrence) String() string {
	switch r.Kind {
	case RecurDaily, RecurWeekly:
		return string(r.Kind)
	case RecurEvery:
		return "every:" + r.Interval.String()
	case RecurCron:
		return "cron:" + r.Cron
	}
	return ""
}

func (r Recurrence) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Recurrence) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseRecurrence(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// NextAfter returns the first occurrence strictly after both fireAt and
// now. Interval kinds advance from fireAt, keeping the schedule anchored
// to the original fire time; occurrences missed while the process was
// down are skipped, never fired as a backlog burst.
func (r Recurrence) NextAfter(fireAt, now time.Time) (time.Time, error) {
	switch r.Kind {
	case RecurDaily, RecurWeekly, RecurEvery:
		step := r.Interval
		if r.Kind == RecurDaily {
			step = 24 * time.Hour
		} else if r.Kind == RecurWeekly {
			step = 7 * 24 * time.Hour
		}
		next := fireAt.Add(step)
		for !next.After(now) {
			next = next.Add(step)
		}
		return next, nil
	case RecurCron:
		after := fireAt
		if now.After(after) {
			after = now
		}
		return gronx.NextTickAfter(r.Cron, after, false)
	}
	return time.Time{}, fmt.Errorf("reminder is not recurring")
}

// Reminder is a scheduled notification. IDs are assigned once at
// creation and never reused, so references to past reminders stay valid.
type Reminder struct {
	ID          string     `json:"id"`
	Message     string     `json:"message"`
	FireAt      time.Time  `json:"fireAt"`
	Recurrence  Recurrence `json:"recurrence"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastFiredAt *time.Time `json:"lastFiredAt,omitempty"`
}
