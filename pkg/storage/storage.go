package storage

import (
	"context"

	"github.com/jwebster45206/haunted-mansion/pkg/state"
)

// Storage defines the persistence interface for world/session saves.
// Save ids are either a room code (multiplayer) or a player's save slot
// (single-player). LoadGame returns (nil, nil) when no save exists.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	SaveGame(ctx context.Context, id string, save *state.Save) error
	LoadGame(ctx context.Context, id string) (*state.Save, error)
	DeleteGame(ctx context.Context, id string) error
}
