package kv_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dubhe-sub002/rollup-state/pkg/kv"
)

func openTestStore(t *testing.T) *kv.BoltStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	store, err := kv.Open(path, []kv.ColumnFamily{"cf1", "cf2"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBoltStoreGetMissing(t *testing.T) {
	store := openTestStore(t)
	v, err := store.Get(context.Background(), "cf1", []byte("missing"))
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestBoltStoreWriteBatchAndGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	err := store.WriteBatch(ctx, []kv.Write{
		{CF: "cf1", Key: []byte("a"), Value: []byte("1")},
		{CF: "cf2", Key: []byte("a"), Value: []byte("2")},
	})
	require.NoError(t, err)

	v, err := store.Get(ctx, "cf1", []byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("1"), v)

	v, err = store.Get(ctx, "cf2", []byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("2"), v)
}

func TestBoltStoreWriteBatchDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.WriteBatch(ctx, []kv.Write{{CF: "cf1", Key: []byte("a"), Value: []byte("1")}}))
	require.NoError(t, store.WriteBatch(ctx, []kv.Write{{CF: "cf1", Key: []byte("a"), Value: nil}}))

	v, err := store.Get(ctx, "cf1", []byte("a"))
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestBoltStoreScanRespectsRange(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.WriteBatch(ctx, []kv.Write{
		{CF: "cf1", Key: []byte("a"), Value: []byte("1")},
		{CF: "cf1", Key: []byte("b"), Value: []byte("2")},
		{CF: "cf1", Key: []byte("c"), Value: []byte("3")},
	}))

	var got []string
	err := store.Scan(ctx, "cf1", []byte("a"), []byte("c"), func(e kv.Entry) (bool, error) {
		got = append(got, string(e.Key))
		return true, nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, got)
}

func TestBoltStoreScanEarlyStop(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.WriteBatch(ctx, []kv.Write{
		{CF: "cf1", Key: []byte("a"), Value: []byte("1")},
		{CF: "cf1", Key: []byte("b"), Value: []byte("2")},
		{CF: "cf1", Key: []byte("c"), Value: []byte("3")},
	}))

	var got []string
	err := store.Scan(ctx, "cf1", nil, nil, func(e kv.Entry) (bool, error) {
		got = append(got, string(e.Key))
		return len(got) < 2, nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, got)
}

func TestBoltStoreSeekPrev(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.WriteBatch(ctx, []kv.Write{
		{CF: "cf1", Key: []byte("a"), Value: []byte("1")},
		{CF: "cf1", Key: []byte("c"), Value: []byte("3")},
	}))

	entry, found, err := store.SeekPrev(ctx, "cf1", []byte("b"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("a"), entry.Key)

	entry, found, err = store.SeekPrev(ctx, "cf1", []byte("c"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("c"), entry.Key)

	_, found, err = store.SeekPrev(ctx, "cf1", []byte("0"))
	require.NoError(t, err)
	require.False(t, found)
}
