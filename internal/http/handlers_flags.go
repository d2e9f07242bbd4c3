package httpx

import (
	"errors"
	"net/http"

	"github.com/loomhq/loom-admin/internal/data"
	"github.com/loomhq/loom-admin/internal/domain/model"
	"github.com/loomhq/loom-admin/internal/service"
)

// FlagHandlers provides HTTP handlers for content flags and flag rules.
type FlagHandlers struct {
	Svc *service.ModerationService
}

const maxFlagListLimit = 100

// ListFlags handles HTTP requests to list content flags.
func (h *FlagHandlers) ListFlags(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, 50, maxFlagListLimit)
	opts := model.FlagListOptions{
		Limit:  limit,
		Offset: offset,
		Sort:   r.URL.Query().Get("sort"),
		Dir:    r.URL.Query().Get("dir"),
	}

	if kindParam := r.URL.Query().Get("target_kind"); kindParam != "" {
		kind := model.FlagTargetKind(kindParam)
		if !kind.Valid() {
			WriteError(w, ErrorParams{
				Code:    http.StatusBadRequest,
				ErrCode: "invalid_target_kind",
				Err:     errors.New("target_kind must be one of: post, comment"),
			})
			return
		}
		opts.TargetKind = &kind
	}
	if statusParam := r.URL.Query().Get("status"); statusParam != "" {
		status := model.FlagStatus(statusParam)
		if !status.Valid() {
			WriteError(w, ErrorParams{
				Code:    http.StatusBadRequest,
				ErrCode: "invalid_status",
				Err:     errors.New("status must be one of: open, resolved, dismissed"),
			})
			return
		}
		opts.Status = &status
	}

	flags, err := h.Svc.ListFlags(r.Context(), opts)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "list_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"flags":  flags,
		"limit":  limit,
		"offset": offset,
	})
}

// GetFlag handles HTTP requests to get a content flag by id.
func (h *FlagHandlers) GetFlag(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("flag id is required")},
		)
		return
	}

	flag, err := h.Svc.GetFlag(r.Context(), id)
	if err != nil {
		if errors.Is(err, data.ErrFlagNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "flag_not_found", Err: err})
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "get_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, flag)
}

type createFlagRequest struct {
	TargetKind model.FlagTargetKind `json:"target_kind"`
	TargetID   string               `json:"target_id"`
	Reason     string               `json:"reason"`
}

// CreateFlag handles HTTP requests to raise a manual flag.
func (h *FlagHandlers) CreateFlag(w http.ResponseWriter, r *http.Request) {
	var req createFlagRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	flag, err := h.Svc.FlagManually(r.Context(), req.TargetKind, req.TargetID, req.Reason)
	if err != nil {
		WriteAppError(w, err, "create_failed")
		return
	}

	WriteJSON(w, http.StatusCreated, flag)
}

type resolveFlagRequest struct {
	Status model.FlagStatus `json:"status"`
}

// ResolveFlag handles HTTP requests to close an open flag as resolved or
// dismissed. The reviewer is taken from the session.
func (h *FlagHandlers) ResolveFlag(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("flag id is required")},
		)
		return
	}

	var req resolveFlagRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "unauthenticated", Err: errNoSession})
		return
	}

	flag, err := h.Svc.ResolveFlag(r.Context(), id, req.Status, session.UserID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrFlagNotFound):
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "flag_not_found", Err: err})
		default:
			WriteAppError(w, err, "resolve_failed")
		}
		return
	}

	WriteJSON(w, http.StatusOK, flag)
}

// ListRules handles HTTP requests to list flag rules.
func (h *FlagHandlers) ListRules(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, 50, maxFlagListLimit)

	rules, err := h.Svc.ListRules(r.Context(), limit, offset)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "list_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"rules":  rules,
		"limit":  limit,
		"offset": offset,
	})
}

// GetRule handles HTTP requests to get a flag rule by id.
func (h *FlagHandlers) GetRule(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("rule id is required")},
		)
		return
	}

	rule, err := h.Svc.GetRule(r.Context(), id)
	if err != nil {
		if errors.Is(err, data.ErrFlagRuleNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "rule_not_found", Err: err})
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "get_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, rule)
}

// CreateRule handles HTTP requests to create a flag rule.
func (h *FlagHandlers) CreateRule(w http.ResponseWriter, r *http.Request) {
	var req model.CreateFlagRuleRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	rule, err := h.Svc.CreateRule(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrFlagRuleNameExists):
			WriteError(w, ErrorParams{Code: http.StatusConflict, ErrCode: "name_conflict", Err: err})
		default:
			WriteAppError(w, err, "create_failed")
		}
		return
	}

	WriteJSON(w, http.StatusCreated, rule)
}

// UpdateRule handles HTTP requests to update a flag rule.
func (h *FlagHandlers) UpdateRule(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("rule id is required")},
		)
		return
	}

	var req model.UpdateFlagRuleRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	rule, err := h.Svc.UpdateRule(r.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrFlagRuleNotFound):
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "rule_not_found", Err: err})
		case errors.Is(err, data.ErrFlagRuleNameExists):
			WriteError(w, ErrorParams{Code: http.StatusConflict, ErrCode: "name_conflict", Err: err})
		default:
			WriteAppError(w, err, "update_failed")
		}
		return
	}

	WriteJSON(w, http.StatusOK, rule)
}

// DeleteRule handles HTTP requests to delete a flag rule.
func (h *FlagHandlers) DeleteRule(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("rule id is required")},
		)
		return
	}

	ok, err := h.Svc.DeleteRule(r.Context(), id)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "delete_failed", Err: err})
		return
	}
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusNotFound,
			ErrCode: "rule_not_found",
			Err:     errors.New("flag rule not found"),
		})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
