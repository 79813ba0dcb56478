package handler

import (
	"errors"
	"net/http"
	"strings"

	groupdomain "alianca-go/internal/domain/group"
	"alianca-go/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
)

type createGroupRequest struct {
	Name string `json:"name"`
}

type joinGroupRequest struct {
	Code string `json:"code"`
}

type updateGroupRequest struct {
	Name *string `json:"name"`
}

type updateMemberRequest struct {
	Role string `json:"role"`
}

func (h *Handlers) GetGroupMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	result, err := h.Groups.ResolveGroup(r.Context(), user.ID)
	if err != nil {
		h.writeGroupError(w, "groups.get_me", err, user.ID)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "name is required")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	result, err := h.Groups.CreateGroup(r.Context(), user.ID, req.Name)
	if err != nil {
		h.writeGroupError(w, "groups.create", err, user.ID)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (h *Handlers) JoinGroup(w http.ResponseWriter, r *http.Request) {
	var req joinGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	req.Code = strings.TrimSpace(req.Code)
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "code is required")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	result, err := h.Groups.JoinGroup(r.Context(), user.ID, req.Code)
	if err != nil {
		h.writeGroupError(w, "groups.join", err, user.ID, "code", req.Code)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) GetGroupByCode(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	code := chi.URLParam(r, "code")

	result, err := h.Groups.GetGroupByCode(r.Context(), code)
	if err != nil {
		h.writeGroupError(w, "groups.get_by_code", err, user.ID, "code", code)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) GetGroupDetails(w http.ResponseWriter, r *http.Request) {
	user, groupID, ok := h.currentGroup(w, r, "groups.details")
	if !ok {
		return
	}

	result, err := h.Groups.GetGroupDetails(r.Context(), groupID)
	if err != nil {
		h.writeGroupError(w, "groups.details", err, user.ID, "group_id", groupID)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	var req updateGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	user, groupID, ok := h.currentGroup(w, r, "groups.update")
	if !ok {
		return
	}

	result, err := h.Groups.UpdateGroup(r.Context(), user.ID, groupID, groupdomain.UpdateInput{Name: req.Name})
	if err != nil {
		h.writeGroupError(w, "groups.update", err, user.ID, "group_id", groupID)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	user, groupID, ok := h.currentGroup(w, r, "groups.delete")
	if !ok {
		return
	}

	if err := h.Groups.DeleteGroup(r.Context(), user.ID, groupID); err != nil {
		h.writeGroupError(w, "groups.delete", err, user.ID, "group_id", groupID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) LeaveGroup(w http.ResponseWriter, r *http.Request) {
	user, groupID, ok := h.currentGroup(w, r, "groups.leave")
	if !ok {
		return
	}

	if err := h.Groups.LeaveGroup(r.Context(), user.ID, groupID); err != nil {
		h.writeGroupError(w, "groups.leave", err, user.ID, "group_id", groupID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) UpdateGroupMember(w http.ResponseWriter, r *http.Request) {
	var req updateMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	user, groupID, ok := h.currentGroup(w, r, "groups.update_member")
	if !ok {
		return
	}
	memberID := chi.URLParam(r, "user_id")

	result, err := h.Groups.UpdateMemberRole(r.Context(), user.ID, groupID, memberID, req.Role)
	if err != nil {
		h.writeGroupError(w, "groups.update_member", err, user.ID, "group_id", groupID, "member_id", memberID)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) RemoveGroupMember(w http.ResponseWriter, r *http.Request) {
	user, groupID, ok := h.currentGroup(w, r, "groups.remove_member")
	if !ok {
		return
	}
	memberID := chi.URLParam(r, "user_id")

	if err := h.Groups.RemoveMember(r.Context(), user.ID, groupID, memberID); err != nil {
		h.writeGroupError(w, "groups.remove_member", err, user.ID, "group_id", groupID, "member_id", memberID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) UploadGroupAvatar(w http.ResponseWriter, r *http.Request) {
	user, groupID, ok := h.currentGroup(w, r, "groups.avatar")
	if !ok {
		return
	}

	file, err := readUpload(w, r)
	if err != nil {
		h.log.BusinessError("groups.avatar: bad upload", err, "user_id", user.ID)
		writeError(w, http.StatusBadRequest, "invalid_upload", "multipart field \"file\" with an image is required")
		return
	}

	result, err := h.Groups.UploadGroupAvatar(r.Context(), user.ID, groupID, groupdomain.Upload{
		Filename:    file.filename,
		ContentType: file.contentType,
		Data:        file.data,
	})
	if err != nil {
		h.writeGroupError(w, "groups.avatar", err, user.ID, "group_id", groupID)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// currentGroup resolves the caller's group and writes the error response
// itself when that fails.
func (h *Handlers) currentGroup(w http.ResponseWriter, r *http.Request, op string) (middleware.User, string, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return middleware.User{}, "", false
	}

	groupID, err := h.Groups.ResolveGroupID(r.Context(), user.ID)
	if err != nil {
		h.writeGroupError(w, op, err, user.ID)
		return middleware.User{}, "", false
	}
	return user, groupID, true
}

// writeGroupError maps group errors. The other domain handlers route
// through it first because every group-scoped operation resolves a group.
func (h *Handlers) writeGroupError(w http.ResponseWriter, op string, err error, userID string, args ...any) {
	args = append([]any{"user_id", userID}, args...)
	switch {
	case errors.Is(err, groupdomain.ErrNoUser):
		writeUnauthorized(w)
	case errors.Is(err, groupdomain.ErrNoGroup), errors.Is(err, groupdomain.ErrGroupNotFound):
		h.log.BusinessError(op+": group not found", err, args...)
		writeError(w, http.StatusNotFound, "group_not_found", "group not found")
	case errors.Is(err, groupdomain.ErrGroupCodeNotFound):
		h.log.BusinessError(op+": group code not found", err, args...)
		writeError(w, http.StatusNotFound, "group_code_not_found", "group code not found")
	case errors.Is(err, groupdomain.ErrMemberNotFound):
		h.log.BusinessError(op+": member not found", err, args...)
		writeError(w, http.StatusNotFound, "member_not_found", "member not found")
	case errors.Is(err, groupdomain.ErrAlreadyMember):
		h.log.BusinessError(op+": already member", err, args...)
		writeError(w, http.StatusConflict, "already_member", "already a member of this group")
	case errors.Is(err, groupdomain.ErrAlreadyInGroup):
		h.log.BusinessError(op+": already in group", err, args...)
		writeError(w, http.StatusConflict, "already_in_group", "already in another group")
	case errors.Is(err, groupdomain.ErrGroupFull):
		h.log.BusinessError(op+": group full", err, args...)
		writeError(w, http.StatusConflict, "group_full", "group is full")
	case errors.Is(err, groupdomain.ErrLastAdmin):
		h.log.BusinessError(op+": last admin", err, args...)
		writeError(w, http.StatusConflict, "last_admin", "group needs at least one admin")
	case errors.Is(err, groupdomain.ErrNotAdmin):
		h.log.BusinessError(op+": not admin", err, args...)
		writeError(w, http.StatusForbidden, "not_admin", "only admins can do this")
	case errors.Is(err, groupdomain.ErrCannotRemoveSelf):
		h.log.BusinessError(op+": cannot remove self", err, args...)
		writeError(w, http.StatusBadRequest, "cannot_remove_self", "use leave to exit the group")
	case errors.Is(err, groupdomain.ErrInvalidRole), errors.Is(err, groupdomain.ErrInvalidGroup):
		h.log.BusinessError(op+": invalid request", err, args...)
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, groupdomain.ErrStorageDisabled):
		h.log.BusinessError(op+": storage disabled", err, args...)
		writeError(w, http.StatusServiceUnavailable, "storage_disabled", "avatar storage not configured")
	default:
		h.log.InternalError(op+": failed", err, args...)
		writeInternal(w)
	}
}
