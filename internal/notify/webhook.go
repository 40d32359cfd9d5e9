package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kattacharan/Task-Automation-Bot/internal/model"
)

// WebhookSink posts fired reminders to an external notification
// endpoint (a desktop notifier, a chat bridge, the web UI's push
// channel). Every failure is transient: the endpoint being down is no
// reason to drop a reminder.
type WebhookSink struct {
	url    string
	client *http.Client
}

var _ Sink = (*WebhookSink)(nil)

func NewWebhookSink(url string) *WebhookSink {
	return &WebhookSink{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type deliverRequest struct {
	ID      string    `json:"id"`
	Message string    `json:"message"`
	FireAt  time.Time `json:"fireAt"`
}

func (s *WebhookSink) Deliver(ctx context.Context, r model.Reminder) error {
	reqBody, err := json.Marshal(deliverRequest{
		ID:      r.ID,
		Message: r.Message,
		FireAt:  r.FireAt,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return &TransientError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &TransientError{
			Err: fmt.Errorf("unexpected status code: %d body=%q", resp.StatusCode, string(body)),
		}
	}
	return nil
}
