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

// FollowRepo provides database operations for follower relationships.
type FollowRepo struct {
	DB *sql.DB
}

// NewFollowRepo creates a new FollowRepo.
func NewFollowRepo(db *sql.DB) *FollowRepo {
	return &FollowRepo{DB: db}
}

const followColumns = `follower_id, followee_id, created_at`

// List retrieves follow edges with optional filters, newest first.
func (r *FollowRepo) List(ctx context.Context, opts model.FollowListOptions) ([]*model.Follow, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(opts.Offset, 0)

	conds := make([]string, 0, 2)
	args := make([]any, 0, 4)
	nextIdx := func() int { return len(args) + 1 }

	if opts.FollowerID != nil {
		conds = append(conds, fmt.Sprintf("follower_id = $%d", nextIdx()))
		args = append(args, *opts.FollowerID)
	}
	if opts.FolloweeID != nil {
		conds = append(conds, fmt.Sprintf("followee_id = $%d", nextIdx()))
		args = append(args, *opts.FolloweeID)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	args = append(args, limit, offset)
	query := `SELECT ` + followColumns + ` FROM follows` + where +
		" ORDER BY created_at DESC" +
		" LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args))

	var rowsOut []model.Follow
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Follow])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list follows: %w", err)
	}

	res := make([]*model.Follow, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Delete removes a follow edge. Returns false when no edge matched.
func (r *FollowRepo) Delete(ctx context.Context, followerID, followeeID string) (bool, error) {
	var rows int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx,
			`DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`,
			followerID, followeeID)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete follow: %w", err)
	}
	return rows > 0, nil
}
