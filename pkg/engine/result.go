package engine

// Result is the structured outcome of one executed command. The presentation
// layer decides how to render it; the multiplayer coordinator uses the
// broadcast and location fields to notify other players.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`

	Broadcast        bool   `json:"broadcast,omitempty"`
	BroadcastMessage string `json:"broadcast_message,omitempty"`

	// LocationID is the room where a visible side effect happened.
	LocationID string `json:"location_id,omitempty"`

	LocationChanged bool   `json:"location_changed,omitempty"`
	OldLocation     string `json:"old_location,omitempty"`
	NewLocation     string `json:"new_location,omitempty"`

	GameWon  bool `json:"game_won,omitempty"`
	GameOver bool `json:"game_over,omitempty"`
}

func fail(message string) *Result {
	return &Result{Success: false, Message: message}
}

func ok(message string) *Result {
	return &Result{Success: true, Message: message}
}
