package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/haunted-mansion/pkg/engine"
	"github.com/jwebster45206/haunted-mansion/pkg/session"
	"github.com/jwebster45206/haunted-mansion/pkg/storage"
	"github.com/jwebster45206/haunted-mansion/pkg/world"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testCatalog(t *testing.T) *world.Catalog {
	t.Helper()
	c := &world.Catalog{
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
	require.NoError(t, c.Validate())
	return c
}

func testRegistry(t *testing.T) (*session.Registry, *storage.MockStorage) {
	t.Helper()
	store := storage.NewMockStorage()
	eng := engine.New(testCatalog(t), nil, testLogger())
	return session.NewRegistry(eng, store, nil, testLogger()), store
}

func createRoom(t *testing.T, h *RoomHandler) RoomResponse {
	t.Helper()
	body, _ := json.Marshal(CreateRoomRequest{PlayerName: "Alice"})
	req := httptest.NewRequest(http.MethodPost, "/v1/rooms", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp RoomResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealthHandler(t *testing.T) {
	store := storage.NewMockStorage()
	h := NewHealthHandler(store, testLogger())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "healthy", resp.Components["storage"])
}

func TestHealthHandler_DegradedStorage(t *testing.T) {
	store := storage.NewMockStorage()
	store.SetPingError(errors.New("connection refused"))
	h := NewHealthHandler(store, testLogger())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "unhealthy", resp.Components["storage"])
}

func TestRoomHandler_CreateJoinLeave(t *testing.T) {
	registry, _ := testRegistry(t)
	h := NewRoomHandler(registry, testLogger())

	created := createRoom(t, h)
	assert.Len(t, created.RoomCode, 8)
	assert.NotEmpty(t, created.PlayerID)
	assert.Equal(t, "entrance_hall", created.Location)
	assert.Equal(t, 1, created.Players)

	// Second player joins by room code.
	body, _ := json.Marshal(JoinRoomRequest{PlayerName: "Bob"})
	req := httptest.NewRequest(http.MethodPost, "/v1/rooms/"+created.RoomCode+"/join", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var joined RoomResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &joined))
	assert.Equal(t, created.RoomCode, joined.RoomCode)
	assert.Equal(t, 2, joined.Players)
	assert.NotEqual(t, created.PlayerID, joined.PlayerID)

	// Both leave; the room is reclaimed.
	for _, playerID := range []string{created.PlayerID, joined.PlayerID} {
		req := httptest.NewRequest(http.MethodDelete,
			"/v1/rooms/"+created.RoomCode+"/players/"+playerID, nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
	assert.Equal(t, 0, registry.Len())
}

func TestRoomHandler_Validation(t *testing.T) {
	registry, _ := testRegistry(t)
	h := NewRoomHandler(registry, testLogger())

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"missing player name", http.MethodPost, "/v1/rooms", `{}`, http.StatusBadRequest},
		{"bad json", http.MethodPost, "/v1/rooms", `{`, http.StatusBadRequest},
		{"join unknown room", http.MethodPost, "/v1/rooms/nope1234/join", `{"player_name":"Bob"}`, http.StatusNotFound},
		{"leave unknown room", http.MethodDelete, "/v1/rooms/nope1234/players/p1", "", http.StatusNotFound},
		{"unknown route", http.MethodGet, "/v1/rooms/abc", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, bytes.NewReader([]byte(tt.body)))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}

func TestCommandHandler_ExecutesCommand(t *testing.T) {
	registry, _ := testRegistry(t)
	rooms := NewRoomHandler(registry, testLogger())
	commands := NewCommandHandler(registry, testLogger())

	room := createRoom(t, rooms)

	body, _ := json.Marshal(CommandRequest{
		Room: room.RoomCode, PlayerID: room.PlayerID, Command: "go north",
	})
	w := httptest.NewRecorder()
	commands.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/command", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp CommandResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "hallway", resp.Location)
	assert.Contains(t, resp.Message, "Hallway")
}

func TestCommandHandler_FailedCommandStillOK(t *testing.T) {
	registry, _ := testRegistry(t)
	rooms := NewRoomHandler(registry, testLogger())
	commands := NewCommandHandler(registry, testLogger())

	room := createRoom(t, rooms)

	// A bad game command is a 200 with success=false, not an HTTP error.
	body, _ := json.Marshal(CommandRequest{
		Room: room.RoomCode, PlayerID: room.PlayerID, Command: "take golden crown",
	})
	w := httptest.NewRecorder()
	commands.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/command", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code)

	var resp CommandResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "There's no golden crown here.")
}

func TestCommandHandler_Validation(t *testing.T) {
	registry, _ := testRegistry(t)
	commands := NewCommandHandler(registry, testLogger())

	tests := []struct {
		name       string
		method     string
		body       string
		wantStatus int
	}{
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"bad json", http.MethodPost, `{`, http.StatusBadRequest},
		{"missing fields", http.MethodPost, `{"command":"look"}`, http.StatusBadRequest},
		{"blank command", http.MethodPost, `{"room":"r","player_id":"p","command":"  "}`, http.StatusBadRequest},
		{"unknown room", http.MethodPost, `{"room":"nope1234","player_id":"p","command":"look"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/v1/command", bytes.NewReader([]byte(tt.body)))
			w := httptest.NewRecorder()
			commands.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}

func TestCommandHandler_UnknownPlayer(t *testing.T) {
	registry, _ := testRegistry(t)
	rooms := NewRoomHandler(registry, testLogger())
	commands := NewCommandHandler(registry, testLogger())

	room := createRoom(t, rooms)

	body, _ := json.Marshal(CommandRequest{
		Room: room.RoomCode, PlayerID: "not-a-player", Command: "look",
	})
	w := httptest.NewRecorder()
	commands.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/command", bytes.NewReader(body)))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
