package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/loomhq/loom-admin/internal/data/pgxutil"
	"github.com/loomhq/loom-admin/internal/domain/model"
)

// CommentRepo provides database operations for platform comments.
type CommentRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewCommentRepo creates a new CommentRepo with real time provider.
func NewCommentRepo(db *sql.DB) *CommentRepo {
	return &CommentRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewCommentRepoWithTimeProvider creates a new CommentRepo with a custom time provider (useful for tests).
func NewCommentRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *CommentRepo {
	return &CommentRepo{DB: db, timeProvider: tp}
}

const commentColumns = `
	id, post_id, author_id, body, status, created_at, updated_at`

const commentGetByIDQuery = `
	SELECT` + commentColumns + `
	FROM comments
	WHERE id = $1`

// GetByID retrieves a comment by id.
func (r *CommentRepo) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	var comment model.Comment
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, commentGetByIDQuery, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		comment, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Comment])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to get comment by ID: %w", err)
	}
	return &comment, nil
}

// List retrieves comments with optional filters, newest first by default.
func (r *CommentRepo) List(ctx context.Context, opts model.CommentListOptions) ([]*model.Comment, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(opts.Offset, 0)

	conds := make([]string, 0, 3)
	args := make([]any, 0, 5)
	nextIdx := func() int { return len(args) + 1 }

	if opts.PostID != nil {
		conds = append(conds, fmt.Sprintf("post_id = $%d", nextIdx()))
		args = append(args, *opts.PostID)
	}
	if opts.AuthorID != nil {
		conds = append(conds, fmt.Sprintf("author_id = $%d", nextIdx()))
		args = append(args, *opts.AuthorID)
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
	query := `SELECT` + commentColumns + ` FROM comments` + where +
		" ORDER BY created_at " + sortDir +
		" LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args))

	var rowsOut []model.Comment
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Comment])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	res := make([]*model.Comment, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Update updates the moderation status of a comment.
func (r *CommentRepo) Update(ctx context.Context, id string, req model.UpdateCommentRequest) (*model.Comment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Status == nil {
		return r.GetByID(ctx, id)
	}

	query := `
		UPDATE comments SET status = $1, updated_at = $2
		WHERE id = $3
		RETURNING` + commentColumns

	var out model.Comment
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, *req.Status, r.timeProvider.Now().UTC(), id)
		if err != nil {
			return err
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Comment])
		return e
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	return &out, nil
}

// Delete deletes a comment by id.
func (r *CommentRepo) Delete(ctx context.Context, id string) (bool, error) {
	var rows int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete comment: %w", err)
	}
	return rows > 0, nil
}
