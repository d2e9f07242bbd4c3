package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/loomhq/loom-admin/internal/core"
	"github.com/loomhq/loom-admin/internal/domain/model"
	apperrors "github.com/loomhq/loom-admin/internal/errors"
)

// RuleEvaluator abstracts JMESPath operations for testability.
type RuleEvaluator interface {
	Validate(expr string) error
	Evaluate(expr string, data any) (any, error)
}

// jmespathEvaluator implements RuleEvaluator using go-jmespath.
type jmespathEvaluator struct{}

func (jmespathEvaluator) Validate(expr string) error {
	_, err := jmespath.Compile(expr)
	return err
}

func (jmespathEvaluator) Evaluate(expr string, data any) (any, error) {
	return jmespath.Search(expr, data)
}

// ModerationServiceOptions groups dependencies for ModerationService.
type ModerationServiceOptions struct {
	Flags     core.FlagRepository
	Rules     core.FlagRuleRepository
	Evaluator RuleEvaluator // defaults to the JMESPath evaluator
	Logger    *slog.Logger
}

// ModerationService owns content flags and the admin-defined flag rules.
// Rules are JMESPath expressions evaluated against the JSON form of a post
// or comment; a truthy result raises an open flag for moderator review.
type ModerationService struct {
	flags  core.FlagRepository
	rules  core.FlagRuleRepository
	eval   RuleEvaluator
	logger *slog.Logger
}

// NewModerationService constructs a new ModerationService.
func NewModerationService(opts ModerationServiceOptions) *ModerationService {
	eval := opts.Evaluator
	if eval == nil {
		eval = jmespathEvaluator{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ModerationService{
		flags:  opts.Flags,
		rules:  opts.Rules,
		eval:   eval,
		logger: logger.With("component", "moderation_service"),
	}
}

// CreateRule validates and stores a flag rule. The expression must compile.
func (s *ModerationService) CreateRule(ctx context.Context, req *model.CreateFlagRuleRequest) (*model.FlagRule, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if err := s.eval.Validate(req.Expression); err != nil {
		return nil, apperrors.ValidationField("expression", fmt.Sprintf("invalid expression: %v", err))
	}
	return s.rules.Create(ctx, req)
}

// UpdateRule validates and applies changes to a flag rule.
func (s *ModerationService) UpdateRule(ctx context.Context, id string, req model.UpdateFlagRuleRequest) (*model.FlagRule, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if req.Expression != nil {
		if err := s.eval.Validate(*req.Expression); err != nil {
			return nil, apperrors.ValidationField("expression", fmt.Sprintf("invalid expression: %v", err))
		}
	}
	return s.rules.Update(ctx, id, req)
}

// GetRule retrieves a flag rule by id.
func (s *ModerationService) GetRule(ctx context.Context, id string) (*model.FlagRule, error) {
	return s.rules.GetByID(ctx, id)
}

// ListRules returns a page of flag rules.
func (s *ModerationService) ListRules(ctx context.Context, limit, offset int) ([]*model.FlagRule, error) {
	return s.rules.List(ctx, limit, offset)
}

// DeleteRule removes a flag rule.
func (s *ModerationService) DeleteRule(ctx context.Context, id string) (bool, error) {
	return s.rules.Delete(ctx, id)
}

// FlagManually raises a flag outside the rule pipeline (moderator action).
func (s *ModerationService) FlagManually(
	ctx context.Context,
	kind model.FlagTargetKind,
	targetID, reason string,
) (*model.ContentFlag, error) {
	if !kind.Valid() {
		return nil, apperrors.ValidationField("target_kind", "target_kind must be one of: post, comment")
	}
	if targetID == "" {
		return nil, apperrors.ValidationField("target_id", "target_id is required")
	}
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.ValidationField("reason", "reason is required")
	}
	return s.flags.Create(ctx, core.CreateFlagParams{
		TargetKind: kind,
		TargetID:   targetID,
		Reason:     strings.TrimSpace(reason),
	})
}

// ListFlags returns a page of content flags.
func (s *ModerationService) ListFlags(ctx context.Context, opts model.FlagListOptions) ([]*model.ContentFlag, error) {
	return s.flags.List(ctx, opts)
}

// GetFlag retrieves a content flag by id.
func (s *ModerationService) GetFlag(ctx context.Context, id string) (*model.ContentFlag, error) {
	return s.flags.GetByID(ctx, id)
}

// ResolveFlag closes an open flag as resolved or dismissed.
func (s *ModerationService) ResolveFlag(
	ctx context.Context,
	id string,
	status model.FlagStatus,
	resolvedBy string,
) (*model.ContentFlag, error) {
	if status != model.FlagStatusResolved && status != model.FlagStatusDismissed {
		return nil, apperrors.ValidationField("status", "status must be one of: resolved, dismissed")
	}
	if resolvedBy == "" {
		return nil, apperrors.ValidationField("resolved_by", "resolved_by is required")
	}
	return s.flags.Resolve(ctx, id, status, resolvedBy)
}

// ScanPost evaluates all enabled post rules against a post and raises one
// flag per match. Evaluation failures of individual rules are logged and
// skipped; a broken rule must not block content edits.
func (s *ModerationService) ScanPost(ctx context.Context, post *model.Post) ([]*model.ContentFlag, error) {
	return s.scan(ctx, model.FlagTargetPost, post.ID, post)
}

// ScanComment evaluates all enabled comment rules against a comment.
func (s *ModerationService) ScanComment(ctx context.Context, comment *model.Comment) ([]*model.ContentFlag, error) {
	return s.scan(ctx, model.FlagTargetComment, comment.ID, comment)
}

func (s *ModerationService) scan(
	ctx context.Context,
	kind model.FlagTargetKind,
	targetID string,
	target any,
) ([]*model.ContentFlag, error) {
	rules, err := s.rules.ListEnabled(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("list enabled rules: %w", err)
	}
	if len(rules) == 0 {
		return nil, nil
	}

	// Round-trip through JSON so expressions see the wire field names.
	data, err := toJSONValue(target)
	if err != nil {
		return nil, fmt.Errorf("encode %s for evaluation: %w", kind, err)
	}

	var raised []*model.ContentFlag
	for _, rule := range rules {
		result, evalErr := s.eval.Evaluate(rule.Expression, data)
		if evalErr != nil {
			s.logger.WarnContext(ctx, "flag rule evaluation failed",
				"rule_id", rule.ID, "rule_name", rule.Name, "err", evalErr)
			continue
		}
		if !truthy(result) {
			continue
		}

		ruleID := rule.ID
		flag, createErr := s.flags.Create(ctx, core.CreateFlagParams{
			TargetKind: kind,
			TargetID:   targetID,
			RuleID:     &ruleID,
			Reason:     rule.Reason,
		})
		if createErr != nil {
			return raised, fmt.Errorf("create flag for rule %s: %w", rule.Name, createErr)
		}
		raised = append(raised, flag)
	}
	return raised, nil
}

func toJSONValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// truthy mirrors JMESPath truthiness: false, null, empty string, empty
// collection, and zero are all false.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case float64:
		return val != 0
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}
