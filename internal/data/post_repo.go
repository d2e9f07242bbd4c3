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

// PostRepo provides database operations for platform posts.
type PostRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewPostRepo creates a new PostRepo with real time provider.
func NewPostRepo(db *sql.DB) *PostRepo {
	return &PostRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewPostRepoWithTimeProvider creates a new PostRepo with a custom time provider (useful for tests).
func NewPostRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *PostRepo {
	return &PostRepo{DB: db, timeProvider: tp}
}

// Engagement counts are denormalized onto posts and maintained by triggers,
// so list screens never fan out per row.
const postColumns = `
	id, author_id, title, body, status,
	like_count, comment_count, bookmark_count,
	created_at, updated_at`

const postGetByIDQuery = `
	SELECT` + postColumns + `
	FROM posts
	WHERE id = $1`

// GetByID retrieves a post by id.
func (r *PostRepo) GetByID(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, postGetByIDQuery, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		post, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Post])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post by ID: %w", err)
	}
	return &post, nil
}

// List retrieves posts with optional filters and sorting.
func (r *PostRepo) List(ctx context.Context, opts model.PostListOptions) ([]*model.Post, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(opts.Offset, 0)

	conds := make([]string, 0, 3)
	args := make([]any, 0, 5)
	nextIdx := func() int { return len(args) + 1 }

	if opts.Q != nil && strings.TrimSpace(*opts.Q) != "" {
		conds = append(conds, fmt.Sprintf("title ILIKE $%d", nextIdx()))
		args = append(args, "%"+strings.TrimSpace(*opts.Q)+"%")
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
	sortCol, sortDir := validatePostSort(opts.Sort, opts.Dir)

	args = append(args, limit, offset)
	query := `SELECT` + postColumns + ` FROM posts` + where +
		" ORDER BY " + sortCol + " " + sortDir +
		" LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args))

	var rowsOut []model.Post
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Post])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	res := make([]*model.Post, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Update updates console-editable fields of a post.
func (r *PostRepo) Update(ctx context.Context, id string, req model.UpdatePostRequest) (*model.Post, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	setParts := make([]string, 0, 4)
	args := make([]any, 0, 4)
	nextIdx := func() int { return len(args) + 1 }

	if req.Title != nil {
		setParts = append(setParts, fmt.Sprintf("title = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Title))
	}
	if req.Body != nil {
		setParts = append(setParts, fmt.Sprintf("body = $%d", nextIdx()))
		args = append(args, *req.Body)
	}
	if req.Status != nil {
		setParts = append(setParts, fmt.Sprintf("status = $%d", nextIdx()))
		args = append(args, *req.Status)
	}
	if len(setParts) == 0 {
		return r.GetByID(ctx, id)
	}
	setParts = append(setParts, fmt.Sprintf("updated_at = $%d", nextIdx()))
	args = append(args, r.timeProvider.Now().UTC())

	args = append(args, id)
	query := "UPDATE posts SET " + strings.Join(setParts, ", ") +
		" WHERE id = $" + strconv.Itoa(len(args)) +
		" RETURNING" + postColumns

	var out model.Post
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Post])
		return e
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	return &out, nil
}

// Delete deletes a post by id. Comments and engagements cascade in the schema.
func (r *PostRepo) Delete(ctx context.Context, id string) (bool, error) {
	var rows int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete post: %w", err)
	}
	return rows > 0, nil
}

// validatePostSort validates and returns safe sort column and direction.
func validatePostSort(sort, dir string) (string, string) {
	sortCol := "created_at"
	sortDir := sortDirDesc

	allowedSorts := map[string]string{
		"created_at":    "created_at",
		"like_count":    "like_count",
		"comment_count": "comment_count",
	}
	if validSort, ok := allowedSorts[strings.ToLower(strings.TrimSpace(sort))]; ok {
		sortCol = validSort
	}
	if validDir, ok := allowedDirs()[strings.ToLower(strings.TrimSpace(dir))]; ok {
		sortDir = validDir
	}
	return sortCol, sortDir
}
