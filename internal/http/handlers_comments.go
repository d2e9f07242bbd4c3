package httpx

import (
	"errors"
	"net/http"

	"github.com/loomhq/loom-admin/internal/data"
	"github.com/loomhq/loom-admin/internal/domain/model"
	"github.com/loomhq/loom-admin/internal/service"
)

// CommentHandlers provides HTTP handlers for platform comment operations.
type CommentHandlers struct {
	Svc *service.CommentService
}

const maxCommentListLimit = 100

// List handles HTTP requests to list comments with filters and pagination.
func (h *CommentHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, 50, maxCommentListLimit)
	opts := model.CommentListOptions{
		Limit:  limit,
		Offset: offset,
		Sort:   r.URL.Query().Get("sort"),
		Dir:    r.URL.Query().Get("dir"),
	}

	if postID := r.URL.Query().Get("post_id"); postID != "" {
		opts.PostID = &postID
	}
	if author := r.URL.Query().Get("author_id"); author != "" {
		opts.AuthorID = &author
	}
	if statusParam := r.URL.Query().Get("status"); statusParam != "" {
		status, ok := model.ParseCommentStatus(statusParam)
		if !ok {
			WriteError(w, ErrorParams{
				Code:    http.StatusBadRequest,
				ErrCode: "invalid_status",
				Err:     errors.New("status must be one of: visible, hidden, removed"),
			})
			return
		}
		opts.Status = &status
	}

	comments, err := h.Svc.List(r.Context(), opts)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "list_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"comments": comments,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetByID handles HTTP requests to get a comment by id.
func (h *CommentHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("comment id is required")},
		)
		return
	}

	comment, err := h.Svc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, data.ErrCommentNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "comment_not_found", Err: err})
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "get_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, comment)
}

// Update handles HTTP requests to change a comment's moderation status.
func (h *CommentHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("comment id is required")},
		)
		return
	}

	var req model.UpdateCommentRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	comment, err := h.Svc.Update(r.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrCommentNotFound):
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "comment_not_found", Err: err})
		case isRequestValidation(err):
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err})
		default:
			WriteAppError(w, err, "update_failed")
		}
		return
	}

	WriteJSON(w, http.StatusOK, comment)
}

// Delete handles HTTP requests to delete a comment.
func (h *CommentHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("comment id is required")},
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
			ErrCode: "comment_not_found",
			Err:     errors.New("comment not found"),
		})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
