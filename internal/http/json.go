package httpx

import (
	"bytes"
	"encoding/json"
	"net/http"

	apperrors "github.com/loomhq/loom-admin/internal/errors"
)

// DecodeJSON decodes JSON from the request body into the destination and handles errors.
// Returns true if successful, false if there was an error (error response already written).
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Err: err})
		return false
	}

	return true
}

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Response writer errors (e.g., client disconnect) can't be recovered from here.
		return
	}
}

// ErrorParams groups parameters for WriteError to adhere to the ≤3 params guideline.
type ErrorParams struct {
	Code    int
	ErrCode string
	Err     error
}

// WriteError writes a JSON error response using ErrorParams.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	WriteJSON(w, p.Code, map[string]string{"error": p.ErrCode, "message": p.Err.Error()})
}

// WriteAppError maps a typed application error onto an HTTP status and error
// code. Unknown errors become 500 with the given fallback code.
func WriteAppError(w http.ResponseWriter, err error, fallbackCode string) {
	switch {
	case apperrors.IsValidation(err):
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err})
	case apperrors.IsNotFound(err):
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: err})
	case apperrors.IsConflict(err):
		WriteError(w, ErrorParams{Code: http.StatusConflict, ErrCode: "conflict", Err: err})
	case apperrors.IsUnauthenticated(err), apperrors.IsAuthFailed(err):
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "unauthenticated", Err: err})
	case apperrors.IsForbidden(err), apperrors.IsPolicyViolation(err):
		WriteError(w, ErrorParams{Code: http.StatusForbidden, ErrCode: "forbidden", Err: err})
	default:
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: fallbackCode, Err: err})
	}
}
