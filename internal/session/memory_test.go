package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_CreateGetDestroy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	id, err := store.Create(ctx, "tok-123")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	token, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)

	require.NoError(t, store.Destroy(ctx, id))

	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_UniqueIDs(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	a, err := store.Create(ctx, "tok-a")
	require.NoError(t, err)
	b, err := store.Create(ctx, "tok-b")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)

	now := time.Now()
	store.nowFunc = func() time.Time { return now }

	id, err := store.Create(ctx, "tok-123")
	require.NoError(t, err)

	store.nowFunc = func() time.Time { return now.Add(2 * time.Minute) }

	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_DestroyUnknownIsNoop(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	assert.NoError(t, store.Destroy(context.Background(), "missing"))
}

func TestMemoryStore_NonceSingleUse(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	require.NoError(t, store.SaveNonce(ctx, "sid", "n-1"))

	ok, err := store.ConsumeNonce(ctx, "sid", "n-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.ConsumeNonce(ctx, "sid", "n-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_NonceScopedToSession(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	require.NoError(t, store.SaveNonce(ctx, "sid-a", "n-1"))

	ok, err := store.ConsumeNonce(ctx, "sid-b", "n-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewID_Format(t *testing.T) {
	id, err := NewID()
	require.NoError(t, err)
	assert.Len(t, id, 32)
}
