package data

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/loomhq/loom-admin/internal/domain/auth"
	"github.com/loomhq/loom-admin/internal/domain/model"
	"github.com/loomhq/loom-admin/internal/testutil"
)

func TestProfileRepo_Get_List_Update_Delete(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewProfileRepo(db)

		suffix := time.Now().UnixNano()
		adminID := testutil.SeedProfile(t, db, testutil.SeedProfileParams{
			UserID:      fmt.Sprintf("admin-%d", suffix),
			Role:        "admin",
			DisplayName: "Console Admin",
		})
		editorID := testutil.SeedProfile(t, db, testutil.SeedProfileParams{
			UserID:      fmt.Sprintf("editor-%d", suffix),
			Role:        "editor",
			DisplayName: "Site Editor",
		})
		blockedID := testutil.SeedProfile(t, db, testutil.SeedProfileParams{
			UserID:  fmt.Sprintf("blocked-%d", suffix),
			Role:    "user",
			Blocked: true,
		})

		// get by id
		got, err := repo.GetByID(ctx, adminID)
		require.NoError(t, err)
		assert.Equal(t, domainauth.RoleAdmin, got.Role)
		assert.True(t, got.IsActive)
		assert.NotNil(t, got.Permissions, "null permissions must scan as an empty map")

		_, err = repo.GetByID(ctx, "nope")
		assert.ErrorIs(t, err, ErrProfileNotFound)

		// list with role filter
		role := domainauth.RoleEditor
		lst, err := repo.List(ctx, model.ProfileListOptions{Role: &role})
		require.NoError(t, err)
		require.Len(t, lst, 1)
		assert.Equal(t, editorID, lst[0].UserID)

		// list blocked only
		blocked := true
		lst, err = repo.List(ctx, model.ProfileListOptions{Blocked: &blocked})
		require.NoError(t, err)
		require.Len(t, lst, 1)
		assert.Equal(t, blockedID, lst[0].UserID)

		// substring search on display name
		q := "site edit"
		lst, err = repo.List(ctx, model.ProfileListOptions{Q: &q})
		require.NoError(t, err)
		require.Len(t, lst, 1)
		assert.Equal(t, editorID, lst[0].UserID)

		// update - demote admin, block, grant an override
		newRole := domainauth.RoleUser
		updated, err := repo.Update(ctx, adminID, model.UpdateProfileRequest{
			Role:        &newRole,
			Blocked:     testutil.BoolPtr(true),
			Permissions: map[string]bool{"view_analytics": true},
		})
		require.NoError(t, err)
		assert.Equal(t, domainauth.RoleUser, updated.Role)
		assert.True(t, updated.Blocked)
		assert.True(t, updated.Permissions["view_analytics"])

		// empty update returns the current row
		same, err := repo.Update(ctx, adminID, model.UpdateProfileRequest{})
		require.NoError(t, err)
		assert.Equal(t, updated.Role, same.Role)

		_, err = repo.Update(ctx, "nope", model.UpdateProfileRequest{Blocked: testutil.BoolPtr(true)})
		assert.ErrorIs(t, err, ErrProfileNotFound)

		// delete
		ok, err := repo.Delete(ctx, blockedID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.Delete(ctx, blockedID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestValidateProfileSort(t *testing.T) {
	tests := []struct {
		name    string
		sort    string
		dir     string
		wantCol string
		wantDir string
	}{
		{"defaults", "", "", "created_at", "DESC"},
		{"display name asc", "display_name", "asc", "display_name", "ASC"},
		{"case and whitespace", "  Created_At ", " ASC ", "created_at", "ASC"},
		{"injection attempt falls back", "created_at; DROP TABLE profiles", "desc", "created_at", "DESC"},
		{"unknown direction falls back", "display_name", "sideways", "display_name", "DESC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, dir := validateProfileSort(tt.sort, tt.dir)
			assert.Equal(t, tt.wantCol, col)
			assert.Equal(t, tt.wantDir, dir)
		})
	}
}
