// Package command extracts assistant intents from free-form text, the
// same phrasing the voice front-end produces ("remind me at 4pm to
// water the plants").
package command

import (
	"fmt"
	"strings"
)

type Kind string

const (
	KindSetReminder    Kind = "set_reminder"
	KindListReminders  Kind = "list_reminders"
	KindCancelReminder Kind = "cancel_reminder"
)

type Command struct {
	Kind Kind

	// Set reminder fields.
	TimeText string
	Task     string

	// Cancel field: reminder id or id prefix.
	Ref string
}

// UnknownCommandError reports text no intent could be extracted from.
type UnknownCommandError struct {
	Text string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("could not understand command %q", e.Text)
}

var (
	timeKeywords = []string{" at ", " on ", " by "}
	taskKeywords = []string{" to ", " about ", " that "}
)

// Parse extracts an intent from free text. Reminder phrases accept the
// time and task halves in either order: "remind me at 4pm to water the
// plants" or "remind me to water the plants at 4pm".
func Parse(text string) (Command, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return Command{}, &UnknownCommandError{Text: text}
	}

	switch {
	case strings.Contains(s, "remind"):
		if strings.Contains(s, "list") || strings.Contains(s, "show") {
			return Command{Kind: KindListReminders}, nil
		}
		if ref, ok := cancelRef(s); ok {
			return Command{Kind: KindCancelReminder, Ref: ref}, nil
		}
		if timeText, task, ok := splitReminder(s); ok {
			return Command{Kind: KindSetReminder, TimeText: timeText, Task: task}, nil
		}
	}
	return Command{}, &UnknownCommandError{Text: text}
}

// cancelRef matches "<verb> ... reminder <ref>" with the reference as
// the last word. A cancel verb inside the task text ("remind me at 5pm
// to cancel the subscription") is not a cancellation.
func cancelRef(s string) (string, bool) {
	fields := strings.Fields(s)
	for i, f := range fields {
		switch f {
		case "cancel", "delete", "remove":
		default:
			continue
		}
		for j := i + 1; j < len(fields)-1; j++ {
			if strings.HasPrefix(fields[j], "reminder") {
				return fields[len(fields)-1], true
			}
		}
	}
	return "", false
}

func splitReminder(s string) (timeText, task string, ok bool) {
	// Time half first: "remind me at 4pm to water the plants".
	for _, tk := range timeKeywords {
		before, after, found := strings.Cut(s, tk)
		if !found {
			continue
		}
		for _, wk := range taskKeywords {
			if t, rest, found := strings.Cut(after, wk); found {
				return strings.TrimSpace(t), strings.TrimSpace(rest), true
			}
		}
		// Task half first: "remind me to water the plants at 4pm".
		for _, wk := range taskKeywords {
			if _, rest, found := strings.Cut(before, wk); found {
				return strings.TrimSpace(after), strings.TrimSpace(rest), true
			}
		}
	}
	return "", "", false
}
