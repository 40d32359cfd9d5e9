package service

import (
	"context"
	"fmt"

	"github.com/benbjohnson/clock"

	"github.com/kattacharan/Task-Automation-Bot/internal/command"
	"github.com/kattacharan/Task-Automation-Bot/internal/model"
	"github.com/kattacharan/Task-Automation-Bot/internal/store"
	"github.com/kattacharan/Task-Automation-Bot/internal/timeparse"
)

// Assistant is the command surface the voice loop and the web UI call
// into. Parse failures are reported to the caller and never reach the
// store.
type Assistant struct {
	store store.ReminderStore
	clk   clock.Clock
}

func NewAssistant(st store.ReminderStore, clk clock.Clock) *Assistant {
	if clk == nil {
		clk = clock.New()
	}
	return &Assistant{store: st, clk: clk}
}

// CreateReminder resolves timeText against the current time and
// persists the reminder. recurrence is the serialized recurrence form
// ("" for one-shot).
func (a *Assistant) CreateReminder(ctx context.Context, task, timeText, recurrence string) (model.Reminder, error) {
	rec, err := model.ParseRecurrence(recurrence)
	if err != nil {
		return model.Reminder{}, err
	}

	fireAt, err := timeparse.Parse(timeText, a.clk.Now())
	if err != nil {
		return model.Reminder{}, err
	}

	return a.store.Create(ctx, task, fireAt, rec)
}

// CreateFromText handles assistant-style free text like "remind me at
// 4pm to water the plants".
func (a *Assistant) CreateFromText(ctx context.Context, text string) (model.Reminder, error) {
	cmd, err := command.Parse(text)
	if err != nil {
		return model.Reminder{}, err
	}
	if cmd.Kind != command.KindSetReminder {
		return model.Reminder{}, fmt.Errorf("%q is not a set-reminder command", text)
	}
	return a.CreateReminder(ctx, cmd.Task, cmd.TimeText, "")
}

// ListReminders returns reminders ordered by fire time, optionally
// filtered by status.
func (a *Assistant) ListReminders(ctx context.Context, status model.Status) ([]model.Reminder, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("unknown status %q", status)
	}
	return a.store.List(ctx, store.Filter{Status: status})
}

func (a *Assistant) GetReminder(ctx context.Context, id string) (model.Reminder, error) {
	return a.store.Get(ctx, id)
}

// CancelReminder suppresses all future firings of a pending reminder.
// A firing already in flight on the scheduler is allowed to complete.
func (a *Assistant) CancelReminder(ctx context.Context, id string) (model.Reminder, error) {
	if err := a.store.Cancel(ctx, id); err != nil {
		return model.Reminder{}, err
	}
	return a.store.Get(ctx, id)
}

func (a *Assistant) DeleteReminder(ctx context.Context, id string) error {
	return a.store.Delete(ctx, id)
}
