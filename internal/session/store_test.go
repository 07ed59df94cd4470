package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStore(client), mr
}

func TestSaveAndLookup(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "sess-1", 42, time.Hour))

	userID, err := store.Lookup(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 42, userID)
}

func TestLookupUnknownSession(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Lookup(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRevokeMakesSessionInvalid(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "sess-2", 7, time.Hour))
	require.NoError(t, store.Revoke(ctx, "sess-2"))

	_, err := store.Lookup(ctx, "sess-2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionExpires(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "sess-3", 9, time.Minute))

	mr.FastForward(2 * time.Minute)

	_, err := store.Lookup(ctx, "sess-3")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveDefaultsTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "sess-4", 3, 0))

	ttl := mr.TTL("session:sess-4")
	assert.Equal(t, 24*time.Hour, ttl)
}
