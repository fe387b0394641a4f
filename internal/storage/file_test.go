package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupFileStorage(t *testing.T) *FileStorage {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	fs, err := NewFileStorage(filepath.Join(t.TempDir(), "saves"), logger)
	require.NoError(t, err)
	return fs
}

func TestFileStorage_SaveAndLoad(t *testing.T) {
	fs := setupFileStorage(t)
	ctx := context.Background()
	require.NoError(t, fs.Ping(ctx))

	save := sampleSave()
	require.NoError(t, fs.SaveGame(ctx, "local", save))

	loaded, err := fs.LoadGame(ctx, "local")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, save.Player.CurrentLocation, loaded.Player.CurrentLocation)
	assert.Equal(t, save.Locations["basement"].Items, loaded.Locations["basement"].Items)
}

func TestFileStorage_LoadMissing(t *testing.T) {
	fs := setupFileStorage(t)

	loaded, err := fs.LoadGame(context.Background(), "never_saved")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestFileStorage_OverwriteKeepsLatest(t *testing.T) {
	fs := setupFileStorage(t)
	ctx := context.Background()

	first := sampleSave()
	require.NoError(t, fs.SaveGame(ctx, "local", first))

	second := sampleSave()
	second.Player.CurrentLocation = "basement"
	require.NoError(t, fs.SaveGame(ctx, "local", second))

	loaded, err := fs.LoadGame(ctx, "local")
	require.NoError(t, err)
	assert.Equal(t, "basement", loaded.Player.CurrentLocation)
}

func TestFileStorage_Delete(t *testing.T) {
	fs := setupFileStorage(t)
	ctx := context.Background()

	require.NoError(t, fs.SaveGame(ctx, "local", sampleSave()))
	require.NoError(t, fs.DeleteGame(ctx, "local"))
	require.NoError(t, fs.DeleteGame(ctx, "local"), "deleting a missing save is not an error")

	loaded, err := fs.LoadGame(ctx, "local")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
