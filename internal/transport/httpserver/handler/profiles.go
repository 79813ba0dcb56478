package handler

import (
	"errors"
	"net/http"

	profiledomain "alianca-go/internal/domain/profile"
	"alianca-go/internal/transport/httpserver/middleware"
	"alianca-go/pkg/calendar"
)

type onboardRequest struct {
	Name         string         `json:"name"`
	Email        *string        `json:"email"`
	Age          *int           `json:"age"`
	City         *string        `json:"city"`
	State        *string        `json:"state"`
	DatingSince  *calendar.Date `json:"dating_since"`
	MarriedSince *calendar.Date `json:"married_since"`
}

type updateProfileRequest struct {
	Name         *string        `json:"name"`
	Age          *int           `json:"age"`
	City         *string        `json:"city"`
	State        *string        `json:"state"`
	DatingSince  *calendar.Date `json:"dating_since"`
	MarriedSince *calendar.Date `json:"married_since"`
}

func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	result, err := h.Profiles.Get(r.Context(), user.ID)
	if err != nil {
		h.writeProfileError(w, "profiles.get", err, user.ID)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) OnboardProfile(w http.ResponseWriter, r *http.Request) {
	var req onboardRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	email := req.Email
	if email == nil && user.Email != "" {
		email = &user.Email
	}

	result, err := h.Profiles.Onboard(r.Context(), user.ID, profiledomain.OnboardInput{
		Name:         req.Name,
		Email:        email,
		Age:          req.Age,
		City:         req.City,
		State:        req.State,
		DatingSince:  req.DatingSince,
		MarriedSince: req.MarriedSince,
	})
	if err != nil {
		h.writeProfileError(w, "profiles.onboard", err, user.ID)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	result, err := h.Profiles.Update(r.Context(), user.ID, profiledomain.UpdateInput{
		Name:         req.Name,
		Age:          req.Age,
		City:         req.City,
		State:        req.State,
		DatingSince:  req.DatingSince,
		MarriedSince: req.MarriedSince,
	})
	if err != nil {
		h.writeProfileError(w, "profiles.update", err, user.ID)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) UploadProfileAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	file, err := readUpload(w, r)
	if err != nil {
		h.log.BusinessError("profiles.avatar: bad upload", err, "user_id", user.ID)
		writeError(w, http.StatusBadRequest, "invalid_upload", "multipart field \"file\" with an image is required")
		return
	}

	result, err := h.Profiles.UploadAvatar(r.Context(), user.ID, profiledomain.Upload{
		Filename:    file.filename,
		ContentType: file.contentType,
		Data:        file.data,
	})
	if err != nil {
		h.writeProfileError(w, "profiles.avatar", err, user.ID)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) writeProfileError(w http.ResponseWriter, op string, err error, userID string) {
	switch {
	case errors.Is(err, profiledomain.ErrProfileNotFound):
		h.log.BusinessError(op+": profile not found", err, "user_id", userID)
		writeError(w, http.StatusNotFound, "profile_not_found", "profile not found")
	case errors.Is(err, profiledomain.ErrInvalidProfile):
		h.log.BusinessError(op+": invalid profile", err, "user_id", userID)
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, profiledomain.ErrStorageDisabled):
		h.log.BusinessError(op+": storage disabled", err, "user_id", userID)
		writeError(w, http.StatusServiceUnavailable, "storage_disabled", "avatar storage not configured")
	case errors.Is(err, profiledomain.ErrNoUser):
		writeUnauthorized(w)
	default:
		h.log.InternalError(op+": failed", err, "user_id", userID)
		writeInternal(w)
	}
}
