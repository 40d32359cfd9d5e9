// Package notify delivers fired reminders to the user.
package notify

import (
	"context"
	"fmt"

	"github.com/kattacharan/Task-Automation-Bot/internal/model"
)

// Sink delivers one fired reminder. Delivery happens before the store
// commit, so a failing sink means the reminder stays pending and is
// retried on the next poll cycle.
type Sink interface {
	Deliver(ctx context.Context, r model.Reminder) error
}

// TransientError marks a delivery failure that should be retried.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient delivery failure: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}
