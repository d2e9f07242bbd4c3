package httpx

import (
	"errors"
	"net/http"
	"strings"

	"github.com/loomhq/loom-admin/internal/data"
	"github.com/loomhq/loom-admin/internal/domain/model"
	"github.com/loomhq/loom-admin/internal/service"
)

// PostHandlers provides HTTP handlers for platform post operations.
type PostHandlers struct {
	Svc *service.PostService
}

const maxPostListLimit = 100

// List handles HTTP requests to list posts with filters and pagination.
func (h *PostHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, 50, maxPostListLimit)
	opts := model.PostListOptions{
		Limit:  limit,
		Offset: offset,
		Sort:   r.URL.Query().Get("sort"),
		Dir:    r.URL.Query().Get("dir"),
	}

	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		opts.Q = &q
	}
	if author := r.URL.Query().Get("author_id"); author != "" {
		opts.AuthorID = &author
	}
	if statusParam := r.URL.Query().Get("status"); statusParam != "" {
		status, ok := model.ParsePostStatus(statusParam)
		if !ok {
			WriteError(w, ErrorParams{
				Code:    http.StatusBadRequest,
				ErrCode: "invalid_status",
				Err:     errors.New("status must be one of: draft, published, removed"),
			})
			return
		}
		opts.Status = &status
	}

	posts, err := h.Svc.List(r.Context(), opts)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "list_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"posts":  posts,
		"limit":  limit,
		"offset": offset,
	})
}

// GetByID handles HTTP requests to get a post by id.
func (h *PostHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("post id is required")},
		)
		return
	}

	post, err := h.Svc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, data.ErrPostNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "post_not_found", Err: err})
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "get_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, post)
}

// Update handles HTTP requests to edit a post's content or status.
func (h *PostHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("post id is required")},
		)
		return
	}

	var req model.UpdatePostRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	post, err := h.Svc.Update(r.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrPostNotFound):
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "post_not_found", Err: err})
		case isRequestValidation(err):
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err})
		default:
			WriteAppError(w, err, "update_failed")
		}
		return
	}

	WriteJSON(w, http.StatusOK, post)
}

// Delete handles HTTP requests to delete a post and its dependent rows.
func (h *PostHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("post id is required")},
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
			ErrCode: "post_not_found",
			Err:     errors.New("post not found"),
		})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
