package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/loomhq/loom-admin/internal/domain/auth"
	"github.com/loomhq/loom-admin/internal/testutil"
)

func consoleSession(id string, ttl time.Duration) domainauth.Session {
	return domainauth.Session{
		ID:        id,
		UserID:    "u-42",
		Email:     "mod@example.com",
		Role:      domainauth.RoleModerator,
		ExpiresAt: time.Now().Add(ttl),
	}
}

func TestSessionStore_SaveAndGet(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client)
	ctx := context.Background()

	session := consoleSession("sess-roundtrip", 30*time.Minute)
	require.NoError(t, store.Save(ctx, session))

	retrieved, err := store.Get(ctx, "sess-roundtrip")
	require.NoError(t, err)
	assert.Equal(t, session.ID, retrieved.ID)
	assert.Equal(t, session.UserID, retrieved.UserID)
	assert.Equal(t, session.Email, retrieved.Email)
	assert.Equal(t, session.Role, retrieved.Role)
	assert.WithinDuration(t, session.ExpiresAt, retrieved.ExpiresAt, time.Second)
}

func TestSessionStore_GetNonExistent(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client)

	_, err := store.Get(context.Background(), "no-such-session")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionStore_Delete(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, consoleSession("sess-delete", 30*time.Minute)))
	_, err := store.Get(ctx, "sess-delete")
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "sess-delete"))
	_, err = store.Get(ctx, "sess-delete")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing session is a no-op.
	assert.NoError(t, store.Delete(ctx, "sess-delete"))
}

func TestSessionStore_TTLExpiration(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, consoleSession("sess-ttl", 100*time.Millisecond)))
	time.Sleep(200 * time.Millisecond)

	_, err := store.Get(ctx, "sess-ttl")
	assert.ErrorIs(t, err, ErrNotFound, "Redis must evict the key at the session expiry")
}

func TestSessionStore_CustomPrefix(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	store := NewSessionStoreWithPrefix(client, "console_test:")
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, consoleSession("sess-prefix", 30*time.Minute)))
	assert.Equal(t, int64(1), client.Exists(ctx, "console_test:sess-prefix").Val())

	retrieved, err := store.Get(ctx, "sess-prefix")
	require.NoError(t, err)
	assert.Equal(t, "sess-prefix", retrieved.ID)
}

func TestSessionStore_SaveEmptyID(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client)

	err := store.Save(context.Background(), consoleSession("", 30*time.Minute))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session ID cannot be empty")
}

func TestSessionStore_SaveExpiredSession(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client)

	err := store.Save(context.Background(), consoleSession("sess-expired", -time.Hour))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session is expired")
}

func TestSessionStore_GetEmptyID(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client)

	_, err := store.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotFound)
}
