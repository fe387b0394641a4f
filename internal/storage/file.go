package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jwebster45206/haunted-mansion/pkg/state"
	"github.com/jwebster45206/haunted-mansion/pkg/storage"
)

// FileStorage persists saves as JSON files in a directory, one file per
// save id. Used by the single-player console.
type FileStorage struct {
	dir    string
	logger *slog.Logger
}

var _ storage.Storage = (*FileStorage)(nil)

func NewFileStorage(dir string, logger *slog.Logger) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create saves directory: %w", err)
	}
	return &FileStorage{dir: dir, logger: logger}, nil
}

func (f *FileStorage) path(id string) string {
	return filepath.Join(f.dir, id+".json")
}

func (f *FileStorage) Ping(ctx context.Context) error {
	if _, err := os.Stat(f.dir); err != nil {
		return fmt.Errorf("saves directory unavailable: %w", err)
	}
	return nil
}

func (f *FileStorage) Close() error {
	return nil
}

func (f *FileStorage) SaveGame(ctx context.Context, id string, save *state.Save) error {
	data, err := json.MarshalIndent(save, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal save: %w", err)
	}
	// Write to a temp file first so a crash mid-write cannot corrupt the
	// previous save.
	tmp := f.path(id) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		f.logger.Error("Failed to write save", "id", id, "error", err)
		return fmt.Errorf("failed to write save: %w", err)
	}
	if err := os.Rename(tmp, f.path(id)); err != nil {
		f.logger.Error("Failed to finalize save", "id", id, "error", err)
		return fmt.Errorf("failed to finalize save: %w", err)
	}
	return nil
}

func (f *FileStorage) LoadGame(ctx context.Context, id string) (*state.Save, error) {
	data, err := os.ReadFile(f.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil // No save yet
		}
		return nil, fmt.Errorf("failed to read save: %w", err)
	}
	var save state.Save
	if err := json.Unmarshal(data, &save); err != nil {
		f.logger.Error("Failed to parse save file", "id", id, "error", err)
		return nil, fmt.Errorf("failed to parse save file: %w", err)
	}
	return &save, nil
}

func (f *FileStorage) DeleteGame(ctx context.Context, id string) error {
	if err := os.Remove(f.path(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete save: %w", err)
	}
	return nil
}
