package notify

import (
	"context"
	"log/slog"

	"github.com/kattacharan/Task-Automation-Bot/internal/model"
)

// ConsoleSink announces reminders on the process log. It stands in for
// the spoken alert when no webhook endpoint is configured.
type ConsoleSink struct{}

var _ Sink = ConsoleSink{}

func (ConsoleSink) Deliver(ctx context.Context, r model.Reminder) error {
	slog.Info("REMINDER", "message", r.Message, "id", r.ID, "scheduledFor", r.FireAt)
	return nil
}
