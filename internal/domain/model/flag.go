//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const maxFlagRuleNameLen = 255

// FlagTargetKind identifies what kind of content a flag points at.
type FlagTargetKind string

const (
	FlagTargetPost    FlagTargetKind = "post"
	FlagTargetComment FlagTargetKind = "comment"
)

// Valid reports whether the flag target kind is supported.
func (k FlagTargetKind) Valid() bool {
	switch k {
	case FlagTargetPost, FlagTargetComment:
		return true
	default:
		return false
	}
}

// FlagStatus tracks the review lifecycle of a content flag.
type FlagStatus string

const (
	FlagStatusOpen      FlagStatus = "open"
	FlagStatusResolved  FlagStatus = "resolved"
	FlagStatusDismissed FlagStatus = "dismissed"
)

// Valid reports whether the flag status is supported.
func (s FlagStatus) Valid() bool {
	switch s {
	case FlagStatusOpen, FlagStatusResolved, FlagStatusDismissed:
		return true
	default:
		return false
	}
}

// ContentFlag marks a post or comment for moderator review. Flags are
// raised either by a flag rule match or manually by a moderator.
type ContentFlag struct {
	ID         string         `json:"id"                    db:"id"`
	TargetKind FlagTargetKind `json:"target_kind"           db:"target_kind"`
	TargetID   string         `json:"target_id"             db:"target_id"`
	RuleID     *string        `json:"rule_id,omitempty"     db:"rule_id"`
	Reason     string         `json:"reason"                db:"reason"`
	Status     FlagStatus     `json:"status"                db:"status"`
	ResolvedBy *string        `json:"resolved_by,omitempty" db:"resolved_by"`
	CreatedAt  time.Time      `json:"created_at"            db:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"            db:"updated_at"`
}

// FlagRule is an admin-defined rule that auto-flags content. Expression is
// a JMESPath expression evaluated against the JSON form of the target; a
// truthy result raises a flag.
type FlagRule struct {
	ID         string         `json:"id"          db:"id"`
	Name       string         `json:"name"        db:"name"`
	TargetKind FlagTargetKind `json:"target_kind" db:"target_kind"`
	Expression string         `json:"expression"  db:"expression"`
	Reason     string         `json:"reason"      db:"reason"`
	Enabled    bool           `json:"enabled"     db:"enabled"`
	CreatedAt  time.Time      `json:"created_at"  db:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"  db:"updated_at"`
}

// FlagListOptions controls paging and filtering for listing content flags.
type FlagListOptions struct {
	Limit      int
	Offset     int
	TargetKind *FlagTargetKind // exact match
	Status     *FlagStatus     // exact match
	Sort       string          // allowed: "created_at"
	Dir        string          // allowed: "asc", "desc"
}

// CreateFlagRuleRequest represents parameters to create a FlagRule.
type CreateFlagRuleRequest struct {
	Name       string         `json:"name"`
	TargetKind FlagTargetKind `json:"target_kind"`
	Expression string         `json:"expression"`
	Reason     string         `json:"reason"`
	Enabled    *bool          `json:"enabled,omitempty"`
}

// UpdateFlagRuleRequest represents parameters to update a FlagRule.
type UpdateFlagRuleRequest struct {
	Name       *string `json:"name,omitempty"`
	Expression *string `json:"expression,omitempty"`
	Reason     *string `json:"reason,omitempty"`
	Enabled    *bool   `json:"enabled,omitempty"`
}

// Validate validates CreateFlagRuleRequest. Expression syntax is checked by
// the moderation service, which owns the evaluator.
func (r *CreateFlagRuleRequest) Validate() error {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return errors.New("name is required and cannot be empty")
	}
	if utf8.RuneCountInString(name) > maxFlagRuleNameLen {
		return errors.New("name cannot exceed 255 characters")
	}
	if !r.TargetKind.Valid() {
		return errors.New("target_kind must be one of: post, comment")
	}
	if strings.TrimSpace(r.Expression) == "" {
		return errors.New("expression is required")
	}
	if strings.TrimSpace(r.Reason) == "" {
		return errors.New("reason is required")
	}
	return nil
}

// Validate validates UpdateFlagRuleRequest.
func (r *UpdateFlagRuleRequest) Validate() error {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return errors.New("name cannot be empty")
	}
	if r.Expression != nil && strings.TrimSpace(*r.Expression) == "" {
		return errors.New("expression cannot be empty")
	}
	return nil
}
