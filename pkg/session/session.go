// Package session coordinates multiple players sharing one mutable world.
// Every read-modify-write command runs under the session's exclusive lock;
// the blocking dialogue call is the one exception and happens between lock
// acquisitions (see engine.PrepareTalk/CallDialogue/ApplyTalk).
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jwebster45206/haunted-mansion/pkg/engine"
	"github.com/jwebster45206/haunted-mansion/pkg/state"
	"github.com/jwebster45206/haunted-mansion/pkg/storage"
)

// Notifier receives location-scoped events for the presentation layer:
// players entering and leaving rooms, items taken, lights lit. Sessions
// call it outside their critical section.
type Notifier interface {
	// NotifyLocation informs players in one room about an event there.
	NotifyLocation(ctx context.Context, roomCode, locationID, message string) error

	// NotifyMove informs both affected rooms that a player moved.
	NotifyMove(ctx context.Context, roomCode, playerID, oldLocation, newLocation, message string) error
}

// NoopNotifier discards all notifications. Used in tests and single-player.
type NoopNotifier struct{}

func (NoopNotifier) NotifyLocation(context.Context, string, string, string) error {
	return nil
}

func (NoopNotifier) NotifyMove(context.Context, string, string, string, string, string) error {
	return nil
}

// Session owns one shared world and the players joined to it.
type Session struct {
	Code string

	engine   *engine.Engine
	storage  storage.Storage
	notifier Notifier
	logger   *slog.Logger

	mu      sync.Mutex
	world   *state.World
	players map[string]*state.Player
	names   map[string]string
	ownerID string
}

func New(code string, eng *engine.Engine, store storage.Storage, notifier Notifier, logger *slog.Logger) *Session {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &Session{
		Code:     code,
		engine:   eng,
		storage:  store,
		notifier: notifier,
		logger:   logger,
		world:    state.NewWorld(eng.Catalog()),
		players:  make(map[string]*state.Player),
		names:    make(map[string]string),
	}
}

// Restore applies a previously persisted save to the session's world.
// Call before any player joins.
func (s *Session) Restore(save *state.Save) {
	s.mu.Lock()
	defer s.mu.Unlock()
	save.Apply(s.world)
}

// AddPlayer joins a player at the start location. Joining twice with the
// same id is a no-op returning the existing player.
func (s *Session) AddPlayer(playerID, name string) *state.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, exists := s.players[playerID]; exists {
		return p
	}
	p := state.NewPlayer(s.engine.Catalog().StartLocation().ID)
	s.players[playerID] = p
	s.names[playerID] = name
	if s.ownerID == "" {
		s.ownerID = playerID
	}
	return p
}

// RemovePlayer drops a player from the session. When the last player
// leaves, the world is persisted as a single-player save and the returned
// flag tells the registry to reclaim the session.
func (s *Session) RemovePlayer(ctx context.Context, playerID string) (empty bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	departing := s.players[playerID]
	delete(s.players, playerID)
	delete(s.names, playerID)
	if len(s.players) > 0 {
		return false
	}
	if departing != nil {
		save := state.BuildSave(s.world, departing)
		if err := s.storage.SaveGame(ctx, s.Code, save); err != nil {
			s.logger.Error("failed to persist world of emptied session",
				"session", s.Code, "error", err)
		}
	}
	return true
}

// PlayerCount reports how many players are joined.
func (s *Session) PlayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.players)
}

// PlayersAt lists the names of players currently in a location.
func (s *Session) PlayersAt(locationID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playersAtLocked(locationID, "")
}

func (s *Session) playersAtLocked(locationID, excludePlayerID string) []string {
	var out []string
	for id, p := range s.players {
		if id != excludePlayerID && p.CurrentLocation == locationID {
			out = append(out, s.names[id])
		}
	}
	return out
}

// Player returns the live player state for an id, or nil.
func (s *Session) Player(playerID string) *state.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.players[playerID]
}

// Execute runs one command for one player. Mutating commands hold the
// session lock for the whole read-modify-write sequence and persist
// synchronously before releasing it; a failed persist is logged and
// reported but leaves the in-memory session usable.
func (s *Session) Execute(ctx context.Context, playerID, raw string) (*engine.Result, error) {
	verb, arg := engine.Parse(raw)

	var res *engine.Result
	if verb == engine.VerbTalk {
		var err error
		res, err = s.executeTalk(ctx, playerID, arg)
		if err != nil {
			return nil, err
		}
	} else {
		s.mu.Lock()
		p := s.players[playerID]
		if p == nil {
			s.mu.Unlock()
			return nil, fmt.Errorf("unknown player %q in session %s", playerID, s.Code)
		}
		res = s.engine.Execute(ctx, s.contextLocked(playerID, p), raw)
		if res.Success && verb.Mutates() {
			s.persistLocked(ctx)
		}
		s.mu.Unlock()
	}

	s.notify(ctx, playerID, res)
	return res, nil
}

// executeTalk runs the three-phase talk protocol. The dialogue call in the
// middle happens with the lock released so one slow NPC cannot stall the
// whole room; grant state is double-checked after reacquiring.
func (s *Session) executeTalk(ctx context.Context, playerID, arg string) (*engine.Result, error) {
	s.mu.Lock()
	p := s.players[playerID]
	if p == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("unknown player %q in session %s", playerID, s.Code)
	}
	req, done := s.engine.PrepareTalk(s.contextLocked(playerID, p), arg)
	if done != nil {
		if done.Success {
			s.persistLocked(ctx)
		}
		s.mu.Unlock()
		return done, nil
	}
	s.mu.Unlock()

	reply := s.engine.CallDialogue(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	res := s.engine.ApplyTalk(s.contextLocked(playerID, p), req, reply)
	if res.Success {
		s.persistLocked(ctx)
	}
	return res, nil
}

func (s *Session) contextLocked(playerID string, p *state.Player) *engine.SessionContext {
	return &engine.SessionContext{
		World:      s.world,
		Player:     p,
		PlayerName: s.names[playerID],
		OthersHere: s.playersAtLocked(p.CurrentLocation, playerID),
	}
}

func (s *Session) persistLocked(ctx context.Context) {
	var owner *state.Player
	if p := s.players[s.ownerID]; p != nil {
		owner = p
	}
	save := state.BuildSave(s.world, owner)
	if err := s.storage.SaveGame(ctx, s.Code, save); err != nil {
		s.logger.Error("failed to persist session", "session", s.Code, "error", err)
	}
}

// notify pushes broadcast results to the presentation layer, outside the
// critical section.
func (s *Session) notify(ctx context.Context, playerID string, res *engine.Result) {
	if res == nil || !res.Broadcast {
		return
	}
	if res.LocationChanged {
		if err := s.notifier.NotifyMove(ctx, s.Code, playerID, res.OldLocation, res.NewLocation, res.BroadcastMessage); err != nil {
			s.logger.Warn("failed to notify move", "session", s.Code, "error", err)
		}
		return
	}
	if res.LocationID != "" {
		if err := s.notifier.NotifyLocation(ctx, s.Code, res.LocationID, res.BroadcastMessage); err != nil {
			s.logger.Warn("failed to notify location", "session", s.Code, "error", err)
		}
	}
}
