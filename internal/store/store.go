// Package store persists reminder records. All status changes are
// single conditional updates so concurrent callers never interleave a
// read-modify-write on the same record.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kattacharan/Task-Automation-Bot/internal/model"
)

var ErrNotFound = errors.New("reminder not found")

// InvalidTransitionError reports an attempted illegal status change,
// such as re-activating a cancelled reminder.
type InvalidTransitionError struct {
	ID   string
	From model.Status
	To   model.Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("reminder %s: illegal transition %s -> %s", e.ID, e.From, e.To)
}

type Filter struct {
	// Status limits the listing to one status when set.
	Status model.Status
}

// ReminderStore is the single shared mutable resource of the system.
// Implementations must be safe for concurrent use by the front-end
// handlers and the scheduler.
type ReminderStore interface {
	// Create assigns a fresh id and persists the record before
	// returning. No partial record is ever visible to readers.
	Create(ctx context.Context, message string, fireAt time.Time, rec model.Recurrence) (model.Reminder, error)

	Get(ctx context.Context, id string) (model.Reminder, error)

	// List returns reminders ordered by fire time ascending, ties
	// broken by id.
	List(ctx context.Context, f Filter) ([]model.Reminder, error)

	// Due returns pending reminders with fire_at <= now, in the same
	// order as List.
	Due(ctx context.Context, now time.Time) ([]model.Reminder, error)

	// MarkFired commits pending -> fired. The update is conditional on
	// the record still being pending, so a cancellation that landed
	// first wins and the call reports InvalidTransitionError.
	MarkFired(ctx context.Context, id string, firedAt time.Time) error

	// Rearm commits a recurring firing: the record stays pending with
	// the next fire time and the firing recorded in last_fired_at.
	// Conditional on the record still being pending, like MarkFired.
	Rearm(ctx context.Context, id string, nextFireAt, firedAt time.Time) error

	// Cancel commits pending -> cancelled.
	Cancel(ctx context.Context, id string) error

	// Delete removes a record in any status.
	Delete(ctx context.Context, id string) error

	Close() error
}

// explain resolves a failed conditional update into ErrNotFound or an
// InvalidTransitionError carrying the record's actual status.
func explain(ctx context.Context, s ReminderStore, id string, to model.Status) error {
	r, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return &InvalidTransitionError{ID: id, From: r.Status, To: to}
}
