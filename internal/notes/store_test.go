package notes

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyKV wraps MemoryKV and fails reads or writes on demand.
type flakyKV struct {
	*MemoryKV
	mu       sync.Mutex
	failGet  error
	failSet  error
	setCalls int
}

func newFlakyKV() *flakyKV {
	return &flakyKV{MemoryKV: NewMemoryKV()}
}

func (f *flakyKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	err := f.failGet
	f.mu.Unlock()
	if err != nil {
		return nil, false, err
	}
	return f.MemoryKV.Get(ctx, key)
}

func (f *flakyKV) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	f.setCalls++
	err := f.failSet
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.MemoryKV.Set(ctx, key, value)
}

func (f *flakyKV) setFailSet(err error) {
	f.mu.Lock()
	f.failSet = err
	f.mu.Unlock()
}

func (f *flakyKV) raw(t *testing.T, key string) string {
	t.Helper()
	v, ok, err := f.MemoryKV.Get(context.Background(), key)
	require.NoError(t, err)
	require.True(t, ok, "record %q missing", key)
	return string(v)
}

func TestStore_LoadCreatesEmptyRecord(t *testing.T) {
	kv := newFlakyKV()
	store := NewStore(kv, "")

	list, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
	assert.Equal(t, `{"notes":[]}`, kv.raw(t, DefaultKey))
}

func TestStore_LoadExisting(t *testing.T) {
	kv := newFlakyKV()
	require.NoError(t, kv.Set(context.Background(), "todo", []byte(`{"notes":[{"note":"buy milk","id":0}]}`)))

	list, err := NewStore(kv, "todo").Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Note{{ID: 0, Text: "buy milk"}}, list)
}

func TestStore_LoadCorrupt(t *testing.T) {
	kv := newFlakyKV()
	require.NoError(t, kv.Set(context.Background(), "todo", []byte(`not json`)))

	store := NewStore(kv, "todo")
	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, ErrCorruptRecord)
	assert.Equal(t, "todo.corrupt", store.BackupKey())
	assert.Equal(t, "not json", kv.raw(t, "todo.corrupt"))
}

func TestStore_LoadCannotCreate(t *testing.T) {
	kv := newFlakyKV()
	boom := errors.New("read-only")
	kv.setFailSet(boom)

	_, err := NewStore(kv, "todo").Load(context.Background())
	assert.ErrorIs(t, err, ErrRecordNotCreated)
	assert.ErrorIs(t, err, boom)
}

func TestStore_LoadReadFailure(t *testing.T) {
	kv := newFlakyKV()
	boom := errors.New("storage unavailable")
	kv.failGet = boom

	_, err := NewStore(kv, "todo").Load(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestStore_SaveOverwrites(t *testing.T) {
	kv := newFlakyKV()
	store := NewStore(kv, "todo")
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, []Note{{0, "a"}, {1, "b"}}))
	require.NoError(t, store.Save(ctx, []Note{{1, "b"}}))
	assert.JSONEq(t, `{"notes":[{"note":"b","id":1}]}`, kv.raw(t, "todo"))
}
