package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/haunted-mansion/pkg/session"
)

// CommandHandler executes game commands.
// Routes:
// POST /v1/command - Run one command for one player in a room
type CommandHandler struct {
	registry *session.Registry
	logger   *slog.Logger
}

func NewCommandHandler(registry *session.Registry, logger *slog.Logger) *CommandHandler {
	return &CommandHandler{
		registry: registry,
		logger:   logger,
	}
}

type CommandRequest struct {
	Room     string `json:"room"`
	PlayerID string `json:"player_id"`
	Command  string `json:"command"`
}

type CommandResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Location string `json:"location,omitempty"`
	GameWon  bool   `json:"game_won,omitempty"`
	GameOver bool   `json:"game_over,omitempty"`
}

func (h *CommandHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
		return
	}

	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if req.Room == "" || req.PlayerID == "" {
		writeError(w, h.logger, http.StatusBadRequest, "room and player_id are required")
		return
	}
	if strings.TrimSpace(req.Command) == "" {
		writeError(w, h.logger, http.StatusBadRequest, "command is required")
		return
	}

	s := h.registry.Get(req.Room)
	if s == nil {
		writeError(w, h.logger, http.StatusNotFound, "Room not found")
		return
	}

	res, err := s.Execute(r.Context(), req.PlayerID, req.Command)
	if err != nil {
		h.logger.Warn("Command rejected", "room", req.Room, "error", err)
		writeError(w, h.logger, http.StatusNotFound, "Player not found in room")
		return
	}

	var location string
	if p := s.Player(req.PlayerID); p != nil {
		location = p.CurrentLocation
	}

	resp := CommandResponse{
		Success:  res.Success,
		Message:  res.Message,
		Location: location,
		GameWon:  res.GameWon,
		GameOver: res.GameOver,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("Failed to encode command response", "error", err)
	}
}
