package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swipetodo/internal/config"
	"swipetodo/internal/notes"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpenStore_File(t *testing.T) {
	c := config.Default()
	c.Store.Dir = filepath.Join(t.TempDir(), "data")

	store, closeFn, err := openStore(context.Background(), c, discard())
	require.NoError(t, err)
	defer closeFn(context.Background())

	list, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)

	data, err := os.ReadFile(filepath.Join(c.Store.Dir, "todo.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"notes":[]}`, string(data))
}

func TestOpenStore_Memory(t *testing.T) {
	c := config.Default()
	c.Store.Backend = config.BackendMemory

	store, closeFn, err := openStore(context.Background(), c, discard())
	require.NoError(t, err)
	defer closeFn(context.Background())
	assert.Equal(t, "todo", store.Key())
}

func TestNewMux(t *testing.T) {
	cfg = config.Default()
	cfg.UI.Theme = config.ThemeLight

	svc := notes.NewService(notes.NewStore(notes.NewMemoryKV(), "todo"), discard())
	require.NoError(t, svc.Mount(context.Background()))

	mux, err := newMux(svc, discard())
	require.NoError(t, err)

	tests := []struct {
		target string
		want   string
	}{
		{"/health", "ok"},
		{"/api/notes", `"notes"`},
		{"/", "Currently, there are no TODOs."},
		{"/static/swipe.js", "pointerdown"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}
