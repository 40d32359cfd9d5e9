package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kattacharan/Task-Automation-Bot/internal/command"
	"github.com/kattacharan/Task-Automation-Bot/internal/model"
	"github.com/kattacharan/Task-Automation-Bot/internal/scheduler"
	"github.com/kattacharan/Task-Automation-Bot/internal/service"
	"github.com/kattacharan/Task-Automation-Bot/internal/store"
	"github.com/kattacharan/Task-Automation-Bot/internal/timeparse"
)

type Handler struct {
	sched     *scheduler.Scheduler
	assistant *service.Assistant
}

func NewHandler(s *scheduler.Scheduler, a *service.Assistant) *Handler {
	return &Handler{sched: s, assistant: a}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) SchedulerStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"running": h.sched.IsRunning()})
}

func (h *Handler) SchedulerStart(w http.ResponseWriter, r *http.Request) {
	h.sched.Start()
	writeJSON(w, http.StatusOK, map[string]any{"running": h.sched.IsRunning()})
}

func (h *Handler) SchedulerStop(w http.ResponseWriter, r *http.Request) {
	h.sched.Stop()
	writeJSON(w, http.StatusOK, map[string]any{"running": h.sched.IsRunning()})
}

type createReminderRequest struct {
	// Structured form.
	Message    string `json:"message"`
	When       string `json:"when"`
	Recurrence string `json:"recurrence"`

	// Free-text form, e.g. "remind me at 4pm to water the plants".
	Text string `json:"text"`
}

func (h *Handler) CreateReminder(w http.ResponseWriter, r *http.Request) {
	var req createReminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var (
		rem model.Reminder
		err error
	)
	switch {
	case req.Text != "":
		rem, err = h.assistant.CreateFromText(r.Context(), req.Text)
	case req.Message != "" && req.When != "":
		rem, err = h.assistant.CreateReminder(r.Context(), req.Message, req.When, req.Recurrence)
	default:
		writeError(w, http.StatusBadRequest, errors.New("either text, or message and when, must be set"))
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, rem)
}

func (h *Handler) ListReminders(w http.ResponseWriter, r *http.Request) {
	status := model.Status(r.URL.Query().Get("status"))

	items, err := h.assistant.ListReminders(r.Context(), status)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) GetReminder(w http.ResponseWriter, r *http.Request) {
	rem, err := h.assistant.GetReminder(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rem)
}

func (h *Handler) CancelReminder(w http.ResponseWriter, r *http.Request) {
	rem, err := h.assistant.CancelReminder(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rem)
}

func (h *Handler) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	if err := h.assistant.DeleteReminder(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeDomainError maps the error taxonomy onto HTTP statuses: bad
// input is 400, a missing record 404, an illegal transition 409.
func writeDomainError(w http.ResponseWriter, err error) {
	var (
		parseErr   *timeparse.ParseError
		recErr     *model.InvalidRecurrenceError
		cmdErr     *command.UnknownCommandError
		transition *store.InvalidTransitionError
	)
	switch {
	case errors.As(err, &parseErr), errors.As(err, &recErr), errors.As(err, &cmdErr):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.As(err, &transition):
		writeError(w, http.StatusConflict, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
