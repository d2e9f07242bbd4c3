package data

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/loomhq/loom-admin/internal/data/pgxutil"
	"github.com/loomhq/loom-admin/internal/domain/model"
)

// EngagementRepo provides database operations for likes and bookmarks.
// Engagements have a composite key (user_id, post_id, kind); the console
// only lists and removes them, creation happens on the platform side.
type EngagementRepo struct {
	DB *sql.DB
}

// NewEngagementRepo creates a new EngagementRepo.
func NewEngagementRepo(db *sql.DB) *EngagementRepo {
	return &EngagementRepo{DB: db}
}

const engagementColumns = `user_id, post_id, kind, created_at`

// List retrieves engagements with optional filters, newest first.
func (r *EngagementRepo) List(ctx context.Context, opts model.EngagementListOptions) ([]*model.Engagement, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(opts.Offset, 0)

	conds := make([]string, 0, 3)
	args := make([]any, 0, 5)
	nextIdx := func() int { return len(args) + 1 }

	if opts.UserID != nil {
		conds = append(conds, fmt.Sprintf("user_id = $%d", nextIdx()))
		args = append(args, *opts.UserID)
	}
	if opts.PostID != nil {
		conds = append(conds, fmt.Sprintf("post_id = $%d", nextIdx()))
		args = append(args, *opts.PostID)
	}
	if opts.Kind != nil {
		conds = append(conds, fmt.Sprintf("kind = $%d", nextIdx()))
		args = append(args, *opts.Kind)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	args = append(args, limit, offset)
	query := `SELECT ` + engagementColumns + ` FROM engagements` + where +
		" ORDER BY created_at DESC" +
		" LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args))

	var rowsOut []model.Engagement
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Engagement])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list engagements: %w", err)
	}

	res := make([]*model.Engagement, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Delete removes one engagement record. Returns false when no record matched.
func (r *EngagementRepo) Delete(ctx context.Context, userID, postID string, kind model.EngagementKind) (bool, error) {
	var rows int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx,
			`DELETE FROM engagements WHERE user_id = $1 AND post_id = $2 AND kind = $3`,
			userID, postID, kind)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete engagement: %w", err)
	}
	return rows > 0, nil
}
