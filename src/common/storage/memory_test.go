package storage_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"retail-sales-analysis/src/common/storage"
)

func TestMemoryStoreBucketLifecycle(t *testing.T) {
	store := storage.NewMemoryStore()

	exists, err := store.BucketExists("sales")
	require.NoError(t, err)
	require.False(t, exists)

	require.NoError(t, store.CreateBucket("sales"))

	exists, err = store.BucketExists("sales")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestMemoryStorePutGet(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.CreateBucket("sales"))

	require.NoError(t, store.Put("sales", "data/file.csv", []byte("body"), false))

	data, err := store.Get("sales", "data/file.csv")
	require.NoError(t, err)
	require.Equal(t, "body", string(data))
}

func TestMemoryStoreGetMissing(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.CreateBucket("sales"))

	_, err := store.Get("sales", "data/missing.csv")
	require.ErrorIs(t, err, storage.ErrObjectNotFound)

	_, err = store.Get("missing-bucket", "data/file.csv")
	require.ErrorIs(t, err, storage.ErrObjectNotFound)
}

func TestMemoryStoreOverwriteSemantics(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.CreateBucket("sales"))
	require.NoError(t, store.Put("sales", "data/file.csv", []byte("first"), false))

	err := store.Put("sales", "data/file.csv", []byte("second"), false)
	require.ErrorIs(t, err, storage.ErrObjectExists)

	require.NoError(t, store.Put("sales", "data/file.csv", []byte("second"), true))
	data, err := store.Get("sales", "data/file.csv")
	require.NoError(t, err)
	require.Equal(t, "second", string(data))
}
