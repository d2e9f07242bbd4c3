package httpx

import (
	"net/http"
	"strconv"
	"strings"
)

// validationErrorPatterns holds common validation error substrings to classify 400 vs 5xx.
// Request Validate methods return plain errors; this bridges them until typed
// validation errors are adopted across the request types.
var validationErrorPatterns = []string{ //nolint:gochecknoglobals // read-only cache of patterns to avoid per-call allocations
	"is required",
	"cannot be empty",
	"cannot exceed",
	"must be one of:",
}

// isRequestValidation checks for common validation error patterns to decide 400 vs 5xx.
func isRequestValidation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, p := range validationErrorPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// parseIntQuery returns the integer value of a query param or a default.
// It is tolerant of missing/invalid values.
func parseIntQuery(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

// parseBoolQuery returns the bool value of a query param and whether it was
// present and valid.
func parseBoolQuery(r *http.Request, key string) (bool, bool) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}

// ParseLimitOffset parses common pagination params and clamps to sane bounds.
// - defLimit: default limit when not specified
// - maxLimit: maximum allowed limit (values > maxLimit are clamped to maxLimit).
func ParseLimitOffset(r *http.Request, defLimit, maxLimit int) (int, int) {
	if maxLimit < 1 {
		maxLimit = 1
	}

	lim := parseIntQuery(r, "limit", defLimit)
	off := parseIntQuery(r, "offset", 0)
	if lim < 1 {
		lim = 1
	}
	if lim > maxLimit {
		lim = maxLimit
	}
	if off < 0 {
		off = 0
	}
	return lim, off
}
