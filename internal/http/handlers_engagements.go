package httpx

import (
	"errors"
	"net/http"

	"github.com/loomhq/loom-admin/internal/domain/model"
	"github.com/loomhq/loom-admin/internal/service"
)

// EngagementHandlers provides HTTP handlers for likes, bookmarks, and
// follower relationships.
type EngagementHandlers struct {
	Svc *service.EngagementService
}

const maxEngagementListLimit = 200

// ListEngagements handles HTTP requests to list likes and bookmarks.
func (h *EngagementHandlers) ListEngagements(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, 50, maxEngagementListLimit)
	opts := model.EngagementListOptions{Limit: limit, Offset: offset}

	if userID := r.URL.Query().Get("user_id"); userID != "" {
		opts.UserID = &userID
	}
	if postID := r.URL.Query().Get("post_id"); postID != "" {
		opts.PostID = &postID
	}
	if kindParam := r.URL.Query().Get("kind"); kindParam != "" {
		kind, ok := model.ParseEngagementKind(kindParam)
		if !ok {
			WriteError(w, ErrorParams{
				Code:    http.StatusBadRequest,
				ErrCode: "invalid_kind",
				Err:     errors.New("kind must be one of: like, bookmark"),
			})
			return
		}
		opts.Kind = &kind
	}

	engagements, err := h.Svc.ListEngagements(r.Context(), opts)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "list_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"engagements": engagements,
		"limit":       limit,
		"offset":      offset,
	})
}

// RemoveEngagement handles HTTP requests to delete one like or bookmark.
// DELETE /api/engagements/{user_id}/{post_id}/{kind}.
func (h *EngagementHandlers) RemoveEngagement(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	postID := r.PathValue("post_id")
	kind, _ := model.ParseEngagementKind(r.PathValue("kind"))

	ok, err := h.Svc.RemoveEngagement(r.Context(), userID, postID, kind)
	if err != nil {
		WriteAppError(w, err, "delete_failed")
		return
	}
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusNotFound,
			ErrCode: "engagement_not_found",
			Err:     errors.New("engagement not found"),
		})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListFollows handles HTTP requests to list follow edges.
func (h *EngagementHandlers) ListFollows(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, 50, maxEngagementListLimit)
	opts := model.FollowListOptions{Limit: limit, Offset: offset}

	if follower := r.URL.Query().Get("follower_id"); follower != "" {
		opts.FollowerID = &follower
	}
	if followee := r.URL.Query().Get("followee_id"); followee != "" {
		opts.FolloweeID = &followee
	}

	follows, err := h.Svc.ListFollows(r.Context(), opts)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "list_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"follows": follows,
		"limit":   limit,
		"offset":  offset,
	})
}

// RemoveFollow handles HTTP requests to delete a follow edge.
// DELETE /api/follows/{follower_id}/{followee_id}.
func (h *EngagementHandlers) RemoveFollow(w http.ResponseWriter, r *http.Request) {
	followerID := r.PathValue("follower_id")
	followeeID := r.PathValue("followee_id")

	ok, err := h.Svc.RemoveFollow(r.Context(), followerID, followeeID)
	if err != nil {
		WriteAppError(w, err, "delete_failed")
		return
	}
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusNotFound,
			ErrCode: "follow_not_found",
			Err:     errors.New("follow not found"),
		})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
