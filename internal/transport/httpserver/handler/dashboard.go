package handler

import (
	"errors"
	"net/http"

	routinedomain "alianca-go/internal/domain/routine"
	"alianca-go/internal/transport/httpserver/middleware"
)

func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
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

	view, err := h.Dashboard.Build(r.Context(), user.ID, date)
	if err != nil {
		if errors.Is(err, routinedomain.ErrInvalidRoutine) {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		h.writeGroupError(w, "dashboard.get", err, user.ID, "date", date)
		return
	}

	writeJSON(w, http.StatusOK, view)
}
