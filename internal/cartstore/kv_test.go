package cartstore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisclient "github.com/vinoteca/vinoteca-backend/pkg/redis"
)

func newRedisKV(t *testing.T) *RedisKV {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewRedisKV(redisclient.NewFromAddr(mr.Addr()))
}

func TestRedisKVGetMissingKey(t *testing.T) {
	kv := newRedisKV(t)

	_, ok, err := kv.Get(context.Background(), "cart")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisKVSetGetDel(t *testing.T) {
	kv := newRedisKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "cart", `[{"id":1}]`))

	val, ok, err := kv.Get(ctx, "cart")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[{"id":1}]`, val)

	require.NoError(t, kv.Del(ctx, "cart"))
	_, ok, err = kv.Get(ctx, "cart")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreOnRedisKV(t *testing.T) {
	kv := newRedisKV(t)
	ctx := context.Background()

	store, err := New(ctx, kv, nil)
	require.NoError(t, err)

	store.AddLine(ctx, rioja(), 2)
	store.SnapshotFor(ctx, "ana@example.com")
	store.Clear(ctx)
	store.RestoreFor(ctx, "ana@example.com")

	lines := store.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Qty)
}
