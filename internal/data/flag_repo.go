package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/loomhq/loom-admin/internal/core"
	"github.com/loomhq/loom-admin/internal/data/pgxutil"
	"github.com/loomhq/loom-admin/internal/domain/model"
)

// FlagRepo provides database operations for content flags.
type FlagRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewFlagRepo creates a new FlagRepo with real time provider.
func NewFlagRepo(db *sql.DB) *FlagRepo {
	return &FlagRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewFlagRepoWithTimeProvider creates a new FlagRepo with a custom time provider (useful for tests).
func NewFlagRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *FlagRepo {
	return &FlagRepo{DB: db, timeProvider: tp}
}

const flagColumns = `
	id, target_kind, target_id, rule_id, reason, status, resolved_by, created_at, updated_at`

const flagInsertQuery = `
	INSERT INTO content_flags (id, target_kind, target_id, rule_id, reason, status, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, 'open', $6, $6)
	RETURNING` + flagColumns

// Create raises a new flag in the open state.
func (r *FlagRepo) Create(ctx context.Context, params core.CreateFlagParams) (*model.ContentFlag, error) {
	now := r.timeProvider.Now().UTC()
	id := uuid.New().String()

	var flag model.ContentFlag
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, flagInsertQuery,
			id, params.TargetKind, params.TargetID, params.RuleID, params.Reason, now)
		if err != nil {
			return err
		}
		defer rows.Close()
		flag, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.ContentFlag])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create content flag: %w", err)
	}
	return &flag, nil
}

// GetByID retrieves a content flag by id.
func (r *FlagRepo) GetByID(ctx context.Context, id string) (*model.ContentFlag, error) {
	var flag model.ContentFlag
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT`+flagColumns+` FROM content_flags WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		flag, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.ContentFlag])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFlagNotFound
		}
		return nil, fmt.Errorf("failed to get content flag by ID: %w", err)
	}
	return &flag, nil
}

// List retrieves content flags with optional filters.
func (r *FlagRepo) List(ctx context.Context, opts model.FlagListOptions) ([]*model.ContentFlag, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(opts.Offset, 0)

	conds := make([]string, 0, 2)
	args := make([]any, 0, 4)
	nextIdx := func() int { return len(args) + 1 }

	if opts.TargetKind != nil {
		conds = append(conds, fmt.Sprintf("target_kind = $%d", nextIdx()))
		args = append(args, *opts.TargetKind)
	}
	if opts.Status != nil {
		conds = append(conds, fmt.Sprintf("status = $%d", nextIdx()))
		args = append(args, *opts.Status)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	sortDir := sortDirDesc
	if validDir, ok := allowedDirs()[strings.ToLower(strings.TrimSpace(opts.Dir))]; ok {
		sortDir = validDir
	}

	args = append(args, limit, offset)
	query := `SELECT` + flagColumns + ` FROM content_flags` + where +
		" ORDER BY created_at " + sortDir +
		" LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args))

	var rowsOut []model.ContentFlag
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.ContentFlag])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list content flags: %w", err)
	}

	res := make([]*model.ContentFlag, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Resolve transitions an open flag to resolved or dismissed and records the
// reviewer. Resolving an already-closed flag is a no-op conflict reported as
// not found by the WHERE status = 'open' guard.
func (r *FlagRepo) Resolve(
	ctx context.Context,
	id string,
	status model.FlagStatus,
	resolvedBy string,
) (*model.ContentFlag, error) {
	if status != model.FlagStatusResolved && status != model.FlagStatusDismissed {
		return nil, fmt.Errorf("invalid resolution status %q", status)
	}

	query := `
		UPDATE content_flags
		SET status = $1, resolved_by = $2, updated_at = $3
		WHERE id = $4 AND status = 'open'
		RETURNING` + flagColumns

	var out model.ContentFlag
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, status, resolvedBy, r.timeProvider.Now().UTC(), id)
		if err != nil {
			return err
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.ContentFlag])
		return e
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFlagNotFound
		}
		return nil, fmt.Errorf("failed to resolve content flag: %w", err)
	}
	return &out, nil
}
