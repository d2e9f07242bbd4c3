package httpx

import (
	"errors"
	"net/http"
	"strings"

	"github.com/loomhq/loom-admin/internal/data"
	domainauth "github.com/loomhq/loom-admin/internal/domain/auth"
	"github.com/loomhq/loom-admin/internal/domain/model"
	"github.com/loomhq/loom-admin/internal/service"
)

// ProfileHandlers provides HTTP handlers for platform profile operations.
type ProfileHandlers struct {
	Svc *service.ProfileService
}

const maxProfileListLimit = 100

// List handles HTTP requests to list profiles with filters and pagination.
func (h *ProfileHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, 50, maxProfileListLimit)
	opts := model.ProfileListOptions{
		Limit:  limit,
		Offset: offset,
		Sort:   r.URL.Query().Get("sort"),
		Dir:    r.URL.Query().Get("dir"),
	}

	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		opts.Q = &q
	}
	if roleParam := r.URL.Query().Get("role"); roleParam != "" {
		role := domainauth.Role(roleParam)
		if !role.Valid() {
			WriteError(w, ErrorParams{
				Code:    http.StatusBadRequest,
				ErrCode: "invalid_role",
				Err:     errors.New("role must be one of: admin, moderator, editor, user"),
			})
			return
		}
		opts.Role = &role
	}
	if active, ok := parseBoolQuery(r, "active"); ok {
		opts.Active = &active
	}
	if blocked, ok := parseBoolQuery(r, "blocked"); ok {
		opts.Blocked = &blocked
	}

	profiles, err := h.Svc.List(r.Context(), opts)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "list_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"profiles": profiles,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetByID handles HTTP requests to get a profile by user id.
func (h *ProfileHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("user id is required")},
		)
		return
	}

	profile, err := h.Svc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, data.ErrProfileNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "profile_not_found", Err: err})
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "get_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, profile)
}

// Update handles HTTP requests to change a profile's role, status, or
// permission overrides.
func (h *ProfileHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("user id is required")},
		)
		return
	}

	var req model.UpdateProfileRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	profile, err := h.Svc.Update(r.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrProfileNotFound):
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "profile_not_found", Err: err})
		case isRequestValidation(err):
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err})
		default:
			WriteAppError(w, err, "update_failed")
		}
		return
	}

	WriteJSON(w, http.StatusOK, profile)
}

// Delete handles HTTP requests to delete a profile.
func (h *ProfileHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("user id is required")},
		)
		return
	}

	ok, err := h.Svc.Delete(r.Context(), id)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "delete_failed", Err: err})
		return
	}
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusNotFound,
			ErrCode: "profile_not_found",
			Err:     errors.New("profile not found"),
		})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
