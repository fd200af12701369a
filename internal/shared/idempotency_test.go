package shared

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*IdempotencyStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewIdempotencyStore(client, time.Hour), mr
}

func TestIdempotencyCheckAndInsert(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CheckAndInsert(ctx, "PO:1", "purchasing.receipt"))
	require.ErrorIs(t, store.CheckAndInsert(ctx, "PO:1", "purchasing.receipt"), ErrIdempotencyConflict)

	// Modules are separate namespaces.
	require.NoError(t, store.CheckAndInsert(ctx, "PO:1", "inventory.bulk"))
}

func TestIdempotencyDeleteReleasesKey(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CheckAndInsert(ctx, "PO:1", "purchasing.receipt"))
	require.NoError(t, store.Delete(ctx, "PO:1", "purchasing.receipt"))
	require.NoError(t, store.CheckAndInsert(ctx, "PO:1", "purchasing.receipt"))
}

func TestIdempotencyKeysExpire(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CheckAndInsert(ctx, "PO:1", "purchasing.receipt"))
	mr.FastForward(2 * time.Hour)
	require.NoError(t, store.CheckAndInsert(ctx, "PO:1", "purchasing.receipt"))
}

func TestIdempotencyValidation(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.Error(t, store.CheckAndInsert(ctx, "", "purchasing.receipt"))
	require.Error(t, store.CheckAndInsert(ctx, "PO:1", ""))
}
