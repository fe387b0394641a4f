package session

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/jwebster45206/haunted-mansion/pkg/engine"
	"github.com/jwebster45206/haunted-mansion/pkg/state"
	"github.com/jwebster45206/haunted-mansion/pkg/storage"
	"github.com/jwebster45206/haunted-mansion/pkg/world"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testCatalog() *world.Catalog {
	return &world.Catalog{
		Locations: map[string]*world.LocationDef{
			"entrance_hall": {
				ID: "entrance_hall", Name: "Entrance Hall",
				Description: "A grand hall.",
				IsStart:     true, IsExit: true, UnlockKey: "door_unlocked",
				InitialState: map[string]bool{"door_unlocked": false},
				Exits:        map[string]string{"north": "hallway"},
			},
			"hallway": {
				ID: "hallway", Name: "Hallway",
				Description:  "A long corridor.",
				Exits:        map[string]string{"south": "entrance_hall"},
				InitialItems: []string{"silver_locket"},
			},
		},
		Items: map[string]*world.Item{
			"silver_locket": {ID: "silver_locket", Name: "silver locket", CanTake: true},
		},
		Objects: map[string]*world.StationaryObject{},
		NPCs:    map[string]*world.NPCDef{},
	}
}

func newTestSession(t *testing.T) (*Session, *storage.MockStorage) {
	t.Helper()
	catalog := testCatalog()
	if err := catalog.Validate(); err != nil {
		t.Fatalf("test catalog invalid: %v", err)
	}
	store := storage.NewMockStorage()
	eng := engine.New(catalog, nil, testLogger())
	return New("abc12345", eng, store, nil, testLogger()), store
}

func TestSession_AddAndRemovePlayers(t *testing.T) {
	s, store := newTestSession(t)
	ctx := context.Background()

	p1 := s.AddPlayer("p1", "Alice")
	p2 := s.AddPlayer("p2", "Bob")
	if p1.CurrentLocation != "entrance_hall" || p2.CurrentLocation != "entrance_hall" {
		t.Error("players must spawn at the start location")
	}
	if s.AddPlayer("p1", "Alice") != p1 {
		t.Error("re-join with same id should return the existing player")
	}
	if s.PlayerCount() != 2 {
		t.Errorf("PlayerCount() = %d", s.PlayerCount())
	}

	if empty := s.RemovePlayer(ctx, "p1"); empty {
		t.Error("session with a remaining player reported empty")
	}
	if store.SaveCount() != 0 {
		t.Error("non-final leave should not persist")
	}

	if empty := s.RemovePlayer(ctx, "p2"); !empty {
		t.Error("last leave should report empty")
	}
	if store.SaveCount() != 1 {
		t.Error("last leave must persist the world")
	}
}

func TestSession_PlayersAt(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	s.AddPlayer("p1", "Alice")
	s.AddPlayer("p2", "Bob")

	if _, err := s.Execute(ctx, "p1", "go north"); err != nil {
		t.Fatalf("execute: %v", err)
	}

	here := s.PlayersAt("hallway")
	if len(here) != 1 || here[0] != "Alice" {
		t.Errorf("PlayersAt(hallway) = %v", here)
	}

	// Bob sees Alice listed when she shares his room again.
	if _, err := s.Execute(ctx, "p2", "go north"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	res, err := s.Execute(ctx, "p2", "look")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(res.Message, "Other adventurers here: Alice") {
		t.Errorf("look missing co-located player:\n%s", res.Message)
	}
}

func TestSession_MutatingCommandPersists(t *testing.T) {
	s, store := newTestSession(t)
	ctx := context.Background()
	s.AddPlayer("p1", "Alice")

	if _, err := s.Execute(ctx, "p1", "look"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if store.SaveCount() != 0 {
		t.Error("read-only command persisted")
	}

	if _, err := s.Execute(ctx, "p1", "go north"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	save, err := store.LoadGame(ctx, "abc12345")
	if err != nil || save == nil {
		t.Fatalf("no save after mutating command: %v", err)
	}
	if save.Player.CurrentLocation != "hallway" {
		t.Errorf("persisted owner location %q", save.Player.CurrentLocation)
	}

	// A failed mutating command must not persist.
	before := save
	if _, err := s.Execute(ctx, "p1", "take golden crown"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	after, _ := store.LoadGame(ctx, "abc12345")
	if after != before {
		t.Error("failed command replaced the save")
	}
}

func TestSession_UnknownPlayer(t *testing.T) {
	s, _ := newTestSession(t)
	if _, err := s.Execute(context.Background(), "ghost", "look"); err == nil {
		t.Fatal("unknown player should error")
	}
}

func TestSession_ConcurrentTake_OneWinner(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	const players = 8
	ids := make([]string, players)
	for i := range ids {
		ids[i] = string(rune('a' + i))
		s.AddPlayer(ids[i], "Player"+ids[i])
		if _, err := s.Execute(ctx, ids[i], "go north"); err != nil {
			t.Fatalf("setup move: %v", err)
		}
	}

	var wg sync.WaitGroup
	results := make([]*engine.Result, players)
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			res, err := s.Execute(ctx, id, "take silver locket")
			if err != nil {
				t.Errorf("execute: %v", err)
				return
			}
			results[i] = res
		}(i, id)
	}
	wg.Wait()

	winners := 0
	for i, res := range results {
		if res != nil && res.Success {
			winners++
			if p := s.Player(ids[i]); !p.HasItem("silver_locket") {
				t.Error("winner does not hold the item")
			}
		}
	}
	if winners != 1 {
		t.Errorf("%d players took the same item", winners)
	}
	if s.Player(ids[0]).CurrentLocation != "hallway" {
		t.Error("setup sanity: players should be in the hallway")
	}
}

func TestSession_RestoreFromSave(t *testing.T) {
	s, _ := newTestSession(t)
	save := &state.Save{
		Version: state.SaveVersion,
		Locations: map[string]*state.LocationState{
			"hallway": {State: map[string]bool{}, Items: []string{}},
			"entrance_hall": {
				State: map[string]bool{"door_unlocked": true},
				Items: []string{"silver_locket"},
			},
		},
	}
	s.Restore(save)
	s.AddPlayer("p1", "Alice")

	res, err := s.Execute(context.Background(), "p1", "exit_mansion")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !res.Success || !res.GameWon {
		t.Errorf("restored unlocked door should allow exit: %+v", res)
	}
}

func TestRegistry_Lifecycle(t *testing.T) {
	catalog := testCatalog()
	if err := catalog.Validate(); err != nil {
		t.Fatalf("test catalog invalid: %v", err)
	}
	store := storage.NewMockStorage()
	eng := engine.New(catalog, nil, testLogger())
	reg := NewRegistry(eng, store, nil, testLogger())
	ctx := context.Background()

	s, err := reg.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(s.Code) != 8 {
		t.Errorf("room code %q should be 8 chars", s.Code)
	}
	if reg.Get(s.Code) != s {
		t.Error("Get should return the created session")
	}
	if reg.Get("missing1") != nil {
		t.Error("Get of unknown code should be nil")
	}

	playerID, joined, err := reg.Join(s.Code, "Alice")
	if err != nil || joined != s {
		t.Fatalf("join: %v", err)
	}
	if _, _, err := reg.Join("missing1", "Bob"); err == nil {
		t.Error("joining a missing room should error")
	}

	if err := reg.Leave(ctx, s.Code, playerID); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if reg.Len() != 0 {
		t.Error("emptied session should be reclaimed")
	}
	if store.SaveCount() != 1 {
		t.Error("emptied session should be persisted")
	}
}

func TestRegistry_CreateResumesSavedWorld(t *testing.T) {
	catalog := testCatalog()
	store := storage.NewMockStorage()
	eng := engine.New(catalog, nil, testLogger())
	reg := NewRegistry(eng, store, nil, testLogger())
	ctx := context.Background()

	// Pretend an earlier run of whatever code Create picks left a save.
	store.LoadGameFunc = func(ctx context.Context, id string) (*state.Save, error) {
		return &state.Save{
			Version: state.SaveVersion,
			Locations: map[string]*state.LocationState{
				"entrance_hall": {State: map[string]bool{"door_unlocked": true}, Items: []string{}},
			},
		}, nil
	}

	s, err := reg.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	s.AddPlayer("p1", "Alice")
	res, err := s.Execute(ctx, "p1", "exit_mansion")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !res.GameWon {
		t.Error("resumed world lost its unlocked door")
	}
}
