package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestSessionStoreSaveAndFind(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisSessionStore(client)
	ctx := context.Background()

	s := CachedSession{ID: "s1", UserID: "u1", Username: "alice", Data: "{}", CreatedAt: 1, LastAccessedAt: 1}
	require.NoError(t, store.Save(ctx, s))

	got, err := store.FindByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, s, *got)

	assert.Equal(t, SessionTTL, mr.TTL("sessions:s1"))
	assert.True(t, mr.Exists("sessions:userId:u1"))

	_, err = store.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionStoreRejectsEmptyID(t *testing.T) {
	_, client := newTestRedis(t)
	store := NewRedisSessionStore(client)

	assert.Error(t, store.Save(context.Background(), CachedSession{UserID: "u1"}))
}

func TestSessionStoreIndexes(t *testing.T) {
	_, client := newTestRedis(t)
	store := NewRedisSessionStore(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, CachedSession{ID: "a", UserID: "u1", CreatedAt: 1}))
	require.NoError(t, store.Save(ctx, CachedSession{ID: "b", UserID: "u1", CreatedAt: 2}))
	require.NoError(t, store.Save(ctx, CachedSession{ID: "c", UserID: "u2", CreatedAt: 3}))

	byUser, err := store.FindByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(byUser))

	all, err := store.FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids(all))

	none, err := store.FindByUserID(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestSessionStoreDelete(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisSessionStore(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, CachedSession{ID: "a", UserID: "u1"}))
	require.NoError(t, store.Delete(ctx, "a"))

	_, err := store.FindByID(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, mr.Exists("sessions:userId:u1"))
	assert.False(t, mr.Exists("sessions"))

	assert.NoError(t, store.Delete(ctx, "a"), "deleting a missing session is not an error")
}

func TestSessionStorePrunesExpiredIndexMembers(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisSessionStore(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, CachedSession{ID: "a", UserID: "u1"}))
	mr.FastForward(SessionTTL + time.Second)

	byUser, err := store.FindByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, byUser)
	assert.False(t, mr.Exists("sessions:userId:u1"))

	all, err := store.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.False(t, mr.Exists("sessions"))
}

func TestValueStore(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisValueStore(client)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte(`"v"`), time.Minute))
	assert.True(t, mr.Exists("cache:k"))

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `"v"`, string(got))

	require.NoError(t, store.Delete(ctx, "k"))
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, store.Delete(ctx, "never-set"))
}

func ids(sessions []CachedSession) []string {
	out := make([]string, len(sessions))
	for i, s := range sessions {
		out[i] = s.ID
	}
	return out
}
