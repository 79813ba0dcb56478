package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	activitydomain "alianca-go/internal/domain/activity"
	"alianca-go/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
)

type addActivityRequest struct {
	Category string          `json:"category"`
	Name     string          `json:"name"`
	Meta     json.RawMessage `json:"meta"`
}

type updateActivityRequest struct {
	Name      *string         `json:"name"`
	Completed *bool           `json:"completed"`
	Meta      json.RawMessage `json:"meta"`
}

// toggleActivityRequest carries the completion state the client saw.
type toggleActivityRequest struct {
	Completed bool `json:"completed"`
}

type activityResponse struct {
	activitydomain.Item
	Meta activitydomain.Meta `json:"meta"`
}

func toActivityResponse(item activitydomain.Item) activityResponse {
	return activityResponse{Item: item, Meta: item.DecodedMeta()}
}

func toActivityResponses(items []activitydomain.Item) []activityResponse {
	out := make([]activityResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toActivityResponse(item))
	}
	return out
}

func (h *Handlers) ListActivities(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	category := r.URL.Query().Get("category")

	items, err := h.Activities.GetItems(r.Context(), user.ID, category)
	if err != nil {
		h.writeActivityError(w, "activities.list", err, user.ID, "category", category)
		return
	}

	writeJSON(w, http.StatusOK, toActivityResponses(items))
}

func (h *Handlers) RecentActivities(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	limit, err := parseIntParam(r.URL.Query().Get("limit"), activitydomain.DefaultRecentLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "limit must be a non-negative integer")
		return
	}

	items, err := h.Activities.GetRecentActivity(r.Context(), user.ID, limit)
	if err != nil {
		h.writeActivityError(w, "activities.recent", err, user.ID)
		return
	}

	writeJSON(w, http.StatusOK, toActivityResponses(items))
}

func (h *Handlers) AddActivity(w http.ResponseWriter, r *http.Request) {
	var req addActivityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	item, err := h.Activities.AddItem(r.Context(), user.ID, activitydomain.AddInput{
		Category: req.Category,
		Name:     req.Name,
		Meta:     req.Meta,
	})
	if err != nil {
		h.writeActivityError(w, "activities.add", err, user.ID, "category", req.Category)
		return
	}

	writeJSON(w, http.StatusCreated, toActivityResponse(*item))
}

func (h *Handlers) ToggleActivity(w http.ResponseWriter, r *http.Request) {
	var req toggleActivityRequest
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

	item, err := h.Activities.ToggleItem(r.Context(), user.ID, id, req.Completed)
	if err != nil {
		h.writeActivityError(w, "activities.toggle", err, user.ID, "item_id", id)
		return
	}

	writeJSON(w, http.StatusOK, toActivityResponse(*item))
}

func (h *Handlers) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	var req updateActivityRequest
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

	item, err := h.Activities.UpdateItem(r.Context(), user.ID, id, activitydomain.UpdateInput{
		Name:      req.Name,
		Completed: req.Completed,
		Meta:      req.Meta,
	})
	if err != nil {
		h.writeActivityError(w, "activities.update", err, user.ID, "item_id", id)
		return
	}

	writeJSON(w, http.StatusOK, toActivityResponse(*item))
}

func (h *Handlers) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	id := chi.URLParam(r, "id")

	if err := h.Activities.DeleteItem(r.Context(), user.ID, id); err != nil {
		h.writeActivityError(w, "activities.delete", err, user.ID, "item_id", id)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) writeActivityError(w http.ResponseWriter, op string, err error, userID string, args ...any) {
	switch {
	case errors.Is(err, activitydomain.ErrItemNotFound):
		h.log.BusinessError(op+": item not found", err, append([]any{"user_id", userID}, args...)...)
		writeError(w, http.StatusNotFound, "item_not_found", "item not found")
	case errors.Is(err, activitydomain.ErrInvalidItem), errors.Is(err, activitydomain.ErrInvalidMeta):
		h.log.BusinessError(op+": invalid item", err, append([]any{"user_id", userID}, args...)...)
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		h.writeGroupError(w, op, err, userID, args...)
	}
}
