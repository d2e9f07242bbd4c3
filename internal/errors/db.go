package errors

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Regular expressions for parsing PgError.Detail messages.
var (
	// reKeyField extracts field name from unique violation detail: "Key (field)=(value) already exists.".
	reKeyField = regexp.MustCompile(`Key \(([^)]+)\)=`)
	// reReferencedFrom detects parent deletion: "... is still referenced from table ...".
	reReferencedFrom = regexp.MustCompile(`is still referenced from table "?([^"]+)"?`)
	// reNotPresent detects missing parent: "... is not present in table ...".
	reNotPresent = regexp.MustCompile(`is not present in table "?([^"]+)"?`)
)

// MapDBError maps database errors to AppError instances:
// pgx.ErrNoRows → NotFound, unique violations → Conflict, foreign key /
// check / not-null violations → Validation, context errors → Timeout or
// Canceled. Unrecognized errors are returned unchanged.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &AppError{Code: ErrCodeTimeout, Message: "Request timed out. Please try again.", Cause: err}
	}
	if errors.Is(err, context.Canceled) {
		return &AppError{Code: ErrCodeCanceled, Message: "Request was canceled.", Cause: err}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return &AppError{Code: ErrCodeNotFound, Message: "Resource not found", Cause: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return mapPgError(pgErr)
	}

	return err
}

// mapPgError maps PostgreSQL-specific errors to AppError instances.
func mapPgError(pgErr *pgconn.PgError) error {
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return mapUniqueViolation(pgErr)
	case pgerrcode.ForeignKeyViolation:
		return mapForeignKeyViolation(pgErr)
	case pgerrcode.CheckViolation, pgerrcode.NotNullViolation:
		return mapConstraintViolation(pgErr)
	default:
		return &AppError{
			Code:    ErrCodeInternal,
			Message: "A database error occurred. Please try again.",
			Cause:   pgErr,
		}
	}
}

// mapUniqueViolation maps unique constraint violations to Conflict errors.
func mapUniqueViolation(pgErr *pgconn.PgError) error {
	field := pgErr.ColumnName

	// Fallback: parse Detail for "Key (field)=(value) already exists."
	if field == "" && pgErr.Detail != "" {
		if m := reKeyField.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
			field = m[1]
		}
	}

	return &AppError{
		Code:    ErrCodeConflict,
		Message: "This value already exists. Please choose a different one.",
		Field:   field,
		Cause:   pgErr,
	}
}

// mapForeignKeyViolation maps foreign key constraint violations to
// Validation errors with a message naming the related record.
func mapForeignKeyViolation(pgErr *pgconn.PgError) error {
	var message string

	if pgErr.Detail != "" {
		if m := reReferencedFrom.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
			message = "Cannot delete because this item is in use by " + mapTableToDomain(m[1]) + "."
		} else if m := reNotPresent.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
			message = "Cannot complete operation because the referenced " + mapTableToDomain(m[1]) + " does not exist."
		}
	}
	if message == "" && pgErr.TableName != "" {
		message = "Cannot complete operation because this item is in use by " + mapTableToDomain(pgErr.TableName) + "."
	}
	if message == "" {
		message = "Cannot complete operation because this item is in use."
	}

	return &AppError{Code: ErrCodeValidation, Message: message, Cause: pgErr}
}

// mapConstraintViolation maps CHECK and NOT NULL violations to Validation errors.
func mapConstraintViolation(pgErr *pgconn.PgError) error {
	if pgErr.ColumnName != "" {
		return &AppError{
			Code:    ErrCodeValidation,
			Message: "This field has an invalid value.",
			Field:   pgErr.ColumnName,
			Cause:   pgErr,
		}
	}
	return &AppError{
		Code:    ErrCodeValidation,
		Message: "Invalid data. Please check your input.",
		Cause:   pgErr,
	}
}

// mapTableToDomain maps platform table names to user-friendly domain names.
func mapTableToDomain(tableName string) string {
	tableName = strings.ToLower(strings.TrimSpace(tableName))

	domainMap := map[string]string{
		"profiles":      "Profile",
		"posts":         "Post",
		"comments":      "Comment",
		"engagements":   "Like or Bookmark",
		"follows":       "Follow",
		"content_flags": "Content Flag",
		"flag_rules":    "Flag Rule",
	}
	if domainName, ok := domainMap[tableName]; ok {
		return domainName
	}

	return capitalizeFirst(strings.ReplaceAll(tableName, "_", " "))
}

// capitalizeFirst capitalizes the first letter of each word in a string.
func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	words := strings.Split(s, " ")
	for i, word := range words {
		if len(word) > 0 && word[0] >= 'a' && word[0] <= 'z' {
			words[i] = string(word[0]-32) + word[1:]
		}
	}
	return strings.Join(words, " ")
}
