package cache

import (
	"context"
	"time"

	"github.com/kattacharan/Task-Automation-Bot/internal/model"
)

// FiredCache keeps a short-lived record of recently fired reminders
// for front-ends to show as an activity feed.
type FiredCache interface {
	RecordFired(ctx context.Context, r model.Reminder, firedAt time.Time) error
}
