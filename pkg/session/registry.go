package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/jwebster45206/haunted-mansion/pkg/engine"
	"github.com/jwebster45206/haunted-mansion/pkg/storage"
)

// Registry owns the map of active sessions. It is created at process start
// and passed to the transport layer explicitly; entries are removed when a
// session empties.
type Registry struct {
	engine   *engine.Engine
	storage  storage.Storage
	notifier Notifier
	logger   *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(eng *engine.Engine, store storage.Storage, notifier Notifier, logger *slog.Logger) *Registry {
	return &Registry{
		engine:   eng,
		storage:  store,
		notifier: notifier,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session under a fresh short room code.
func (r *Registry) Create(ctx context.Context) (*Session, error) {
	code := uuid.NewString()[:8]

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.sessions[code]; taken {
		return nil, fmt.Errorf("room code collision for %q, retry", code)
	}
	s := New(code, r.engine, r.storage, r.notifier, r.logger)

	// Resume the room's world if an earlier run of this code was saved.
	if save, err := r.storage.LoadGame(ctx, code); err == nil && save != nil {
		s.Restore(save)
	}

	r.sessions[code] = s
	r.logger.Info("session created", "session", code)
	return s, nil
}

// Get returns the session for a room code, or nil.
func (r *Registry) Get(code string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[code]
}

// Join adds a named player to an existing session and returns the player id.
func (r *Registry) Join(code, playerName string) (string, *Session, error) {
	s := r.Get(code)
	if s == nil {
		return "", nil, fmt.Errorf("no such session: %s", code)
	}
	playerID := uuid.NewString()
	s.AddPlayer(playerID, playerName)
	return playerID, s, nil
}

// Leave removes a player. An emptied session is persisted by the session
// itself and then reclaimed here.
func (r *Registry) Leave(ctx context.Context, code, playerID string) error {
	s := r.Get(code)
	if s == nil {
		return fmt.Errorf("no such session: %s", code)
	}
	if s.RemovePlayer(ctx, playerID) {
		r.mu.Lock()
		delete(r.sessions, code)
		r.mu.Unlock()
		r.logger.Info("session reclaimed", "session", code)
	}
	return nil
}

// Len reports the number of active sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
