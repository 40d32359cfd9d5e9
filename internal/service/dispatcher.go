// Package service holds the assistant's command surface and the
// dispatcher that the scheduler drives each poll cycle.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/kattacharan/Task-Automation-Bot/internal/cache"
	"github.com/kattacharan/Task-Automation-Bot/internal/model"
	"github.com/kattacharan/Task-Automation-Bot/internal/notify"
	"github.com/kattacharan/Task-Automation-Bot/internal/store"
)

// Dispatcher processes due reminders. It assumes a single active
// scheduler worker; the store's conditional commits make a second
// worker harmless but duplicate deliveries would be possible, so
// deployments must run one.
type Dispatcher struct {
	store store.ReminderStore
	sink  notify.Sink
	fired cache.FiredCache // optional
	clk   clock.Clock
}

func NewDispatcher(st store.ReminderStore, sink notify.Sink, clk clock.Clock) *Dispatcher {
	if clk == nil {
		clk = clock.New()
	}
	return &Dispatcher{store: st, sink: sink, clk: clk}
}

// WithFiredCache records successful firings in a cache for front-ends
// to show as a recent-activity feed. Cache failures never affect the
// firing itself.
func (d *Dispatcher) WithFiredCache(c cache.FiredCache) *Dispatcher {
	d.fired = c
	return d
}

// RunCycle executes one poll cycle: claim due reminders in fire-time
// order and fire each one. Per-reminder failures are logged and
// isolated; a cycle never returns an error to the scheduler loop.
func (d *Dispatcher) RunCycle(ctx context.Context) {
	now := d.clk.Now()
	due, err := d.store.Due(ctx, now)
	if err != nil {
		slog.Error("poll cycle: listing due reminders failed", "error", err)
		return
	}

	for _, r := range due {
		if err := d.fire(ctx, r, now); err != nil {
			slog.Error("poll cycle: firing failed", "id", r.ID, "error", err)
		}
	}
}

// fire delivers the reminder, then commits the status change. The
// order matters: if delivery fails the record stays pending and is
// retried next cycle, so a notification can be duplicated but never
// dropped.
func (d *Dispatcher) fire(ctx context.Context, r model.Reminder, now time.Time) error {
	if err := d.sink.Deliver(ctx, r); err != nil {
		var te *notify.TransientError
		if errors.As(err, &te) {
			slog.Warn("delivery failed, will retry next cycle", "id", r.ID, "error", err)
			return nil
		}
		return err
	}

	if r.Recurrence.IsZero() {
		err := d.commit(r, d.store.MarkFired(ctx, r.ID, now))
		if err != nil {
			return err
		}
	} else {
		next, err := r.Recurrence.NextAfter(r.FireAt, now)
		if err != nil {
			return err
		}
		if err := d.commit(r, d.store.Rearm(ctx, r.ID, next, now)); err != nil {
			return err
		}
		slog.Info("reminder re-armed", "id", r.ID, "nextFireAt", next)
	}

	if d.fired != nil {
		if err := d.fired.RecordFired(ctx, r, now); err != nil {
			slog.Warn("recording fired reminder failed", "id", r.ID, "error", err)
		}
	}
	return nil
}

// commit resolves the conditional status update. A failed transition
// means a cancel or delete won the race after delivery started; the
// in-flight firing was allowed to complete, and there is nothing to
// record.
func (d *Dispatcher) commit(r model.Reminder, err error) error {
	var it *store.InvalidTransitionError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &it), errors.Is(err, store.ErrNotFound):
		slog.Info("reminder changed underneath an in-flight firing, not committed", "id", r.ID)
		return nil
	default:
		return err
	}
}
