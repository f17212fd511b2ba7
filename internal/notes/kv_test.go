package notes

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryKV(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	_, ok, err := kv.Get(ctx, "todo")
	require.NoError(t, err)
	assert.False(t, ok)

	val := []byte("v1")
	require.NoError(t, kv.Set(ctx, "todo", val))
	val[0] = 'x'

	got, ok, err := kv.Get(ctx, "todo")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v1", string(got), "stored value must not alias the caller's slice")
}

func TestFileKV(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing Key", func(t *testing.T) {
		kv, err := NewFileKV(t.TempDir())
		require.NoError(t, err)
		_, ok, err := kv.Get(ctx, "todo")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Overwrites", func(t *testing.T) {
		dir := t.TempDir()
		kv, err := NewFileKV(dir)
		require.NoError(t, err)

		require.NoError(t, kv.Set(ctx, "todo", []byte("first")))
		require.NoError(t, kv.Set(ctx, "todo", []byte("second")))

		got, ok, err := kv.Get(ctx, "todo")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "second", string(got))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1, "temp files are cleaned up")
		assert.Equal(t, "todo.json", entries[0].Name())
	})

	t.Run("Creates Nested Dir", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "a", "b")
		kv, err := NewFileKV(dir)
		require.NoError(t, err)
		require.NoError(t, kv.Set(ctx, "todo", []byte("x")))
		_, err = os.Stat(filepath.Join(dir, "todo.json"))
		assert.NoError(t, err)
	})

	t.Run("Rejects Path Keys", func(t *testing.T) {
		kv, err := NewFileKV(t.TempDir())
		require.NoError(t, err)
		assert.Error(t, kv.Set(ctx, "../escape", []byte("x")))
		_, _, err = kv.Get(ctx, "a/b")
		assert.Error(t, err)
	})

	t.Run("Canceled Context", func(t *testing.T) {
		kv, err := NewFileKV(t.TempDir())
		require.NoError(t, err)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		assert.ErrorIs(t, kv.Set(cctx, "todo", []byte("x")), context.Canceled)
	})
}
