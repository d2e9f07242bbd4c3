package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/loomhq/loom-admin/internal/data/pgxutil"
	"github.com/loomhq/loom-admin/internal/domain/model"
)

// FlagRuleRepo provides database operations for auto-flagging rules.
type FlagRuleRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewFlagRuleRepo creates a new FlagRuleRepo with real time provider.
func NewFlagRuleRepo(db *sql.DB) *FlagRuleRepo {
	return &FlagRuleRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewFlagRuleRepoWithTimeProvider creates a new FlagRuleRepo with a custom time provider (useful for tests).
func NewFlagRuleRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *FlagRuleRepo {
	return &FlagRuleRepo{DB: db, timeProvider: tp}
}

const flagRuleColumns = `
	id, name, target_kind, expression, reason, enabled, created_at, updated_at`

const flagRuleInsertQuery = `
	INSERT INTO flag_rules (id, name, target_kind, expression, reason, enabled, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	RETURNING` + flagRuleColumns

// Create inserts a new flag rule. Rules default to enabled unless the
// request says otherwise.
func (r *FlagRuleRepo) Create(ctx context.Context, req *model.CreateFlagRuleRequest) (*model.FlagRule, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	now := r.timeProvider.Now().UTC()
	id := uuid.New().String()

	var rule model.FlagRule
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, flagRuleInsertQuery,
			id, strings.TrimSpace(req.Name), req.TargetKind,
			strings.TrimSpace(req.Expression), strings.TrimSpace(req.Reason), enabled, now)
		if err != nil {
			return err
		}
		defer rows.Close()
		rule, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.FlagRule])
		return err
	})
	if err != nil {
		return nil, mapFlagRuleWriteErr(err, "create")
	}
	return &rule, nil
}

// GetByID retrieves a flag rule by id.
func (r *FlagRuleRepo) GetByID(ctx context.Context, id string) (*model.FlagRule, error) {
	var rule model.FlagRule
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT`+flagRuleColumns+` FROM flag_rules WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		rule, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.FlagRule])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFlagRuleNotFound
		}
		return nil, fmt.Errorf("failed to get flag rule by ID: %w", err)
	}
	return &rule, nil
}

// ListEnabled retrieves enabled rules for one target kind, in name order.
// The moderation service evaluates these against incoming content.
func (r *FlagRuleRepo) ListEnabled(ctx context.Context, kind model.FlagTargetKind) ([]*model.FlagRule, error) {
	query := `SELECT` + flagRuleColumns + ` FROM flag_rules
		WHERE enabled = TRUE AND target_kind = $1
		ORDER BY name ASC`

	var rowsOut []model.FlagRule
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, kind)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.FlagRule])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list enabled flag rules: %w", err)
	}

	res := make([]*model.FlagRule, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// List retrieves flag rules with pagination, in name order.
func (r *FlagRuleRepo) List(ctx context.Context, limit, offset int) ([]*model.FlagRule, error) {
	if limit <= 0 {
		limit = 50
	}
	offset = max(offset, 0)

	query := `SELECT` + flagRuleColumns + ` FROM flag_rules
		ORDER BY name ASC
		LIMIT $1 OFFSET $2`

	var rowsOut []model.FlagRule
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.FlagRule])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list flag rules: %w", err)
	}

	res := make([]*model.FlagRule, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Update updates fields of a flag rule.
func (r *FlagRuleRepo) Update(ctx context.Context, id string, req model.UpdateFlagRuleRequest) (*model.FlagRule, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	setParts := make([]string, 0, 5)
	args := make([]any, 0, 5)
	nextIdx := func() int { return len(args) + 1 }

	if req.Name != nil {
		setParts = append(setParts, fmt.Sprintf("name = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Name))
	}
	if req.Expression != nil {
		setParts = append(setParts, fmt.Sprintf("expression = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Expression))
	}
	if req.Reason != nil {
		setParts = append(setParts, fmt.Sprintf("reason = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Reason))
	}
	if req.Enabled != nil {
		setParts = append(setParts, fmt.Sprintf("enabled = $%d", nextIdx()))
		args = append(args, *req.Enabled)
	}
	if len(setParts) == 0 {
		return r.GetByID(ctx, id)
	}
	setParts = append(setParts, fmt.Sprintf("updated_at = $%d", nextIdx()))
	args = append(args, r.timeProvider.Now().UTC())

	args = append(args, id)
	query := "UPDATE flag_rules SET " + strings.Join(setParts, ", ") +
		" WHERE id = $" + strconv.Itoa(len(args)) +
		" RETURNING" + flagRuleColumns

	var out model.FlagRule
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.FlagRule])
		return e
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFlagRuleNotFound
		}
		return nil, mapFlagRuleWriteErr(err, "update")
	}
	return &out, nil
}

// Delete deletes a flag rule by id. Existing flags keep their rule_id via
// ON DELETE SET NULL so review history survives rule cleanup.
func (r *FlagRuleRepo) Delete(ctx context.Context, id string) (bool, error) {
	var rows int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM flag_rules WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete flag rule: %w", err)
	}
	return rows > 0, nil
}

// mapFlagRuleWriteErr converts unique violations on the rule name into the
// package sentinel so callers can surface a conflict.
func mapFlagRuleWriteErr(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return ErrFlagRuleNameExists
	}
	return fmt.Errorf("failed to %s flag rule: %w", op, err)
}
