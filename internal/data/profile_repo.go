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
	domainauth "github.com/loomhq/loom-admin/internal/domain/auth"
	"github.com/loomhq/loom-admin/internal/domain/model"
)

// ProfileRepo provides database operations for platform profiles.
type ProfileRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewProfileRepo creates a new ProfileRepo with real time provider.
func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewProfileRepoWithTimeProvider creates a new ProfileRepo with a custom time provider (useful for tests).
func NewProfileRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *ProfileRepo {
	return &ProfileRepo{DB: db, timeProvider: tp}
}

// profiles.permissions is nullable; COALESCE keeps the scan into a map simple.
const profileColumns = `
	user_id, email, role, is_active, blocked,
	COALESCE(permissions, '{}'::jsonb) AS permissions,
	display_name, bio, avatar_url, website, created_at, updated_at`

const profileGetByIDQuery = `
	SELECT` + profileColumns + `
	FROM profiles
	WHERE user_id = $1`

// GetByID retrieves a profile by user id.
func (r *ProfileRepo) GetByID(ctx context.Context, userID string) (*domainauth.Profile, error) {
	var profile domainauth.Profile
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, profileGetByIDQuery, userID)
		if err != nil {
			return err
		}
		defer rows.Close()
		profile, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[domainauth.Profile])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile by ID: %w", err)
	}
	return &profile, nil
}

// List retrieves profiles with optional filters and sorting.
func (r *ProfileRepo) List(ctx context.Context, opts model.ProfileListOptions) ([]*domainauth.Profile, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(opts.Offset, 0)

	where, args := r.buildListWhere(opts)
	sortCol, sortDir := validateProfileSort(opts.Sort, opts.Dir)

	args = append(args, limit, offset)
	query := `SELECT` + profileColumns + ` FROM profiles` + where +
		" ORDER BY " + sortCol + " " + sortDir +
		" LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args))

	var rowsOut []domainauth.Profile
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[domainauth.Profile])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	res := make([]*domainauth.Profile, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Update updates fields of a profile.
func (r *ProfileRepo) Update(
	ctx context.Context,
	userID string,
	req model.UpdateProfileRequest,
) (*domainauth.Profile, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	setClause, args := r.buildUpdateClause(req)
	if setClause == "" {
		return r.GetByID(ctx, userID)
	}

	args = append(args, userID)
	query := "UPDATE profiles SET " + setClause +
		" WHERE user_id = $" + strconv.Itoa(len(args)) +
		" RETURNING" + profileColumns

	var out domainauth.Profile
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[domainauth.Profile])
		return e
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return &out, nil
}

// Delete deletes a profile by user id.
func (r *ProfileRepo) Delete(ctx context.Context, userID string) (bool, error) {
	var rows int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM profiles WHERE user_id = $1`, userID)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete profile: %w", err)
	}
	return rows > 0, nil
}

// buildListWhere builds the WHERE clause and args for listing profiles.
func (r *ProfileRepo) buildListWhere(opts model.ProfileListOptions) (string, []any) {
	conds := make([]string, 0, 4)
	args := make([]any, 0, 4)
	nextIdx := func() int { return len(args) + 1 }

	if opts.Q != nil && strings.TrimSpace(*opts.Q) != "" {
		q := "%" + strings.TrimSpace(*opts.Q) + "%"
		conds = append(conds, fmt.Sprintf("(display_name ILIKE $%d OR email ILIKE $%d)", nextIdx(), nextIdx()))
		args = append(args, q)
	}
	if opts.Role != nil {
		conds = append(conds, fmt.Sprintf("role = $%d", nextIdx()))
		args = append(args, *opts.Role)
	}
	if opts.Active != nil {
		conds = append(conds, fmt.Sprintf("is_active = $%d", nextIdx()))
		args = append(args, *opts.Active)
	}
	if opts.Blocked != nil {
		conds = append(conds, fmt.Sprintf("blocked = $%d", nextIdx()))
		args = append(args, *opts.Blocked)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// buildUpdateClause builds the SQL SET clause and args for updating a profile.
func (r *ProfileRepo) buildUpdateClause(req model.UpdateProfileRequest) (string, []any) {
	setParts := make([]string, 0, 8)
	args := make([]any, 0, 8)
	nextIdx := func() int { return len(args) + 1 }

	if req.Role != nil {
		setParts = append(setParts, fmt.Sprintf("role = $%d", nextIdx()))
		args = append(args, *req.Role)
	}
	if req.IsActive != nil {
		setParts = append(setParts, fmt.Sprintf("is_active = $%d", nextIdx()))
		args = append(args, *req.IsActive)
	}
	if req.Blocked != nil {
		setParts = append(setParts, fmt.Sprintf("blocked = $%d", nextIdx()))
		args = append(args, *req.Blocked)
	}
	if req.Permissions != nil {
		setParts = append(setParts, fmt.Sprintf("permissions = $%d", nextIdx()))
		args = append(args, req.Permissions)
	}
	if req.DisplayName != nil {
		setParts = append(setParts, fmt.Sprintf("display_name = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.DisplayName))
	}
	if req.Bio != nil {
		setParts = append(setParts, fmt.Sprintf("bio = $%d", nextIdx()))
		args = append(args, *req.Bio)
	}
	if req.AvatarURL != nil {
		setParts = append(setParts, fmt.Sprintf("avatar_url = $%d", nextIdx()))
		args = append(args, *req.AvatarURL)
	}
	if req.Website != nil {
		setParts = append(setParts, fmt.Sprintf("website = $%d", nextIdx()))
		args = append(args, *req.Website)
	}

	if len(setParts) == 0 {
		return "", nil
	}
	setParts = append(setParts, fmt.Sprintf("updated_at = $%d", nextIdx()))
	args = append(args, r.timeProvider.Now().UTC())
	return strings.Join(setParts, ", "), args
}

// validateProfileSort validates and returns safe sort column and direction.
func validateProfileSort(sort, dir string) (string, string) {
	sortCol := "created_at"
	sortDir := sortDirDesc

	allowedSorts := map[string]string{
		"created_at":   "created_at",
		"display_name": "display_name",
	}
	if validSort, ok := allowedSorts[strings.ToLower(strings.TrimSpace(sort))]; ok {
		sortCol = validSort
	}
	if validDir, ok := allowedDirs()[strings.ToLower(strings.TrimSpace(dir))]; ok {
		sortDir = validDir
	}
	return sortCol, sortDir
}
