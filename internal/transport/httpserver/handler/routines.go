package handler

import (
	"errors"
	"net/http"

	routinedomain "alianca-go/internal/domain/routine"
	"alianca-go/internal/transport/httpserver/middleware"
	"alianca-go/pkg/calendar"
	"github.com/go-chi/chi/v5"
)

type createRoutineRequest struct {
	Title        string                 `json:"title"`
	Description  *string                `json:"description"`
	Time         string                 `json:"time"`
	Icon         string                 `json:"icon"`
	Priority     string                 `json:"priority"`
	Frequency    string                 `json:"frequency"`
	WeekDays     routinedomain.WeekDays `json:"week_days"`
	SpecificDate *calendar.Date         `json:"specific_date"`
}

type updateRoutineRequest struct {
	Title        *string                 `json:"title"`
	Description  *string                 `json:"description"`
	Time         *string                 `json:"time"`
	Icon         *string                 `json:"icon"`
	Priority     *string                 `json:"priority"`
	Frequency    *string                 `json:"frequency"`
	WeekDays     *routinedomain.WeekDays `json:"week_days"`
	SpecificDate *calendar.Date          `json:"specific_date"`
}

// toggleRoutineRequest carries the completion state the client saw for
// the date.
type toggleRoutineRequest struct {
	Date      calendar.Date `json:"date"`
	Completed bool          `json:"completed"`
}

type routinesForDateResponse struct {
	Date     calendar.Date          `json:"date"`
	Routines []routinedomain.Status `json:"routines"`
	Progress routinedomain.Progress `json:"progress"`
}

type toggleRoutineResponse struct {
	RoutineID string        `json:"routine_id"`
	Date      calendar.Date `json:"date"`
	Completed bool          `json:"completed"`
}

func (h *Handlers) ListRoutines(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	date, err := h.parseDateParam(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "date must be YYYY-MM-DD")
		return
	}

	statuses, err := h.Routines.RoutinesForDate(r.Context(), user.ID, date)
	if err != nil {
		h.writeRoutineError(w, "routines.list", err, user.ID, "date", date)
		return
	}

	writeJSON(w, http.StatusOK, routinesForDateResponse{
		Date:     date,
		Routines: statuses,
		Progress: routinedomain.ProgressOf(statuses),
	})
}

func (h *Handlers) CreateRoutine(w http.ResponseWriter, r *http.Request) {
	var req createRoutineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	result, err := h.Routines.CreateRoutine(r.Context(), user.ID, routinedomain.Input{
		Title:        req.Title,
		Description:  req.Description,
		Time:         req.Time,
		Icon:         req.Icon,
		Priority:     req.Priority,
		Frequency:    req.Frequency,
		WeekDays:     req.WeekDays,
		SpecificDate: req.SpecificDate,
	})
	if err != nil {
		h.writeRoutineError(w, "routines.create", err, user.ID)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (h *Handlers) UpdateRoutine(w http.ResponseWriter, r *http.Request) {
	var req updateRoutineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	id := chi.URLParam(r, "id")

	result, err := h.Routines.UpdateRoutine(r.Context(), user.ID, id, routinedomain.UpdateInput{
		Title:        req.Title,
		Description:  req.Description,
		Time:         req.Time,
		Icon:         req.Icon,
		Priority:     req.Priority,
		Frequency:    req.Frequency,
		WeekDays:     req.WeekDays,
		SpecificDate: req.SpecificDate,
	})
	if err != nil {
		h.writeRoutineError(w, "routines.update", err, user.ID, "routine_id", id)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) DeleteRoutine(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	id := chi.URLParam(r, "id")

	if err := h.Routines.DeleteRoutine(r.Context(), user.ID, id); err != nil {
		h.writeRoutineError(w, "routines.delete", err, user.ID, "routine_id", id)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ListCompletions(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	query := r.URL.Query()
	date, err := h.parseDateParam(query.Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "date must be YYYY-MM-DD")
		return
	}
	ids := parseCSV(query.Get("ids"))

	result, err := h.Routines.GetGroupCompletions(r.Context(), user.ID, ids, date)
	if err != nil {
		h.writeRoutineError(w, "routines.completions", err, user.ID, "date", date)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) RoutineStreak(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	count, err := h.Routines.GetStreak(r.Context(), user.ID)
	if err != nil {
		h.writeRoutineError(w, "routines.streak", err, user.ID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"streak": count})
}

func (h *Handlers) ToggleRoutine(w http.ResponseWriter, r *http.Request) {
	var req toggleRoutineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	id := chi.URLParam(r, "id")
	if req.Date.IsZero() {
		req.Date = calendar.Today(h.now(), h.loc)
	}

	completed, err := h.Routines.ToggleCompletion(r.Context(), id, user.ID, req.Date, req.Completed)
	if err != nil {
		h.writeRoutineError(w, "routines.toggle", err, user.ID, "routine_id", id, "date", req.Date)
		return
	}

	writeJSON(w, http.StatusOK, toggleRoutineResponse{RoutineID: id, Date: req.Date, Completed: completed})
}

func (h *Handlers) writeRoutineError(w http.ResponseWriter, op string, err error, userID string, args ...any) {
	switch {
	case errors.Is(err, routinedomain.ErrRoutineNotFound):
		h.log.BusinessError(op+": routine not found", err, append([]any{"user_id", userID}, args...)...)
		writeError(w, http.StatusNotFound, "routine_not_found", "routine not found")
	case errors.Is(err, routinedomain.ErrCompletionExists):
		h.log.BusinessError(op+": completion exists", err, append([]any{"user_id", userID}, args...)...)
		writeError(w, http.StatusConflict, "already_completed", "routine already completed for date")
	case errors.Is(err, routinedomain.ErrCompletionNotFound):
		h.log.BusinessError(op+": completion not found", err, append([]any{"user_id", userID}, args...)...)
		writeError(w, http.StatusNotFound, "completion_not_found", "routine completion not found")
	case errors.Is(err, routinedomain.ErrInvalidRoutine):
		h.log.BusinessError(op+": invalid routine", err, append([]any{"user_id", userID}, args...)...)
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		h.writeGroupError(w, op, err, userID, args...)
	}
}
