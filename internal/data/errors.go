package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	ErrProfileNotFound  = errors.New("profile not found")
	ErrPostNotFound     = errors.New("post not found")
	ErrCommentNotFound  = errors.New("comment not found")
	ErrFlagNotFound     = errors.New("content flag not found")
	ErrFlagRuleNotFound = errors.New("flag rule not found")
	// ErrFlagRuleNameExists is returned when creating/updating a flag rule
	// with a duplicate name.
	ErrFlagRuleNameExists = errors.New("flag rule name already exists")
)
