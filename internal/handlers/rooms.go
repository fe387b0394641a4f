package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/haunted-mansion/pkg/session"
)

// RoomHandler manages room lifecycle.
// Routes:
// POST /v1/rooms                          - Create a room (creator joins it)
// POST /v1/rooms/{code}/join              - Join an existing room
// DELETE /v1/rooms/{code}/players/{id}    - Leave a room
type RoomHandler struct {
	registry *session.Registry
	logger   *slog.Logger
}

func NewRoomHandler(registry *session.Registry, logger *slog.Logger) *RoomHandler {
	return &RoomHandler{
		registry: registry,
		logger:   logger,
	}
}

type CreateRoomRequest struct {
	PlayerName string `json:"player_name"`
}

type JoinRoomRequest struct {
	PlayerName string `json:"player_name"`
}

type RoomResponse struct {
	RoomCode string `json:"room_code"`
	PlayerID string `json:"player_id"`
	Location string `json:"location"`
	Players  int    `json:"players"`
}

func (h *RoomHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	// Path shapes: "", "{code}/join", "{code}/players/{id}"
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/rooms"), "/")
	parts := strings.Split(path, "/")

	switch {
	case r.Method == http.MethodPost && path == "":
		h.handleCreate(w, r)
	case r.Method == http.MethodPost && len(parts) == 2 && parts[1] == "join":
		h.handleJoin(w, r, parts[0])
	case r.Method == http.MethodDelete && len(parts) == 3 && parts[1] == "players":
		h.handleLeave(w, r, parts[0], parts[2])
	default:
		h.logger.Warn("Unsupported room route", "method", r.Method, "path", r.URL.Path)
		writeError(w, h.logger, http.StatusNotFound, "Not found")
	}
}

func (h *RoomHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if strings.TrimSpace(req.PlayerName) == "" {
		writeError(w, h.logger, http.StatusBadRequest, "player_name is required")
		return
	}

	s, err := h.registry.Create(r.Context())
	if err != nil {
		h.logger.Error("Failed to create room", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to create room")
		return
	}

	playerID, _, err := h.registry.Join(s.Code, req.PlayerName)
	if err != nil {
		h.logger.Error("Failed to join freshly created room", "room", s.Code, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to join room")
		return
	}

	w.WriteHeader(http.StatusCreated)
	h.encodeRoom(w, s, playerID)
}

func (h *RoomHandler) handleJoin(w http.ResponseWriter, r *http.Request, code string) {
	var req JoinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if strings.TrimSpace(req.PlayerName) == "" {
		writeError(w, h.logger, http.StatusBadRequest, "player_name is required")
		return
	}

	playerID, s, err := h.registry.Join(code, req.PlayerName)
	if err != nil {
		writeError(w, h.logger, http.StatusNotFound, "Room not found")
		return
	}

	h.logger.Info("Player joined room", "room", code, "player", req.PlayerName)
	w.WriteHeader(http.StatusOK)
	h.encodeRoom(w, s, playerID)
}

func (h *RoomHandler) handleLeave(w http.ResponseWriter, r *http.Request, code, playerID string) {
	if err := h.registry.Leave(r.Context(), code, playerID); err != nil {
		writeError(w, h.logger, http.StatusNotFound, "Room not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RoomHandler) encodeRoom(w http.ResponseWriter, s *session.Session, playerID string) {
	resp := RoomResponse{
		RoomCode: s.Code,
		PlayerID: playerID,
		Players:  s.PlayerCount(),
	}
	if p := s.Player(playerID); p != nil {
		resp.Location = p.CurrentLocation
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("Failed to encode room response", "error", err)
	}
}
