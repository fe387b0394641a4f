package world

// LocationDef is the immutable catalog definition of a location. Mutable
// per-session data (state flags, item set) lives in state.LocationState.
type LocationDef struct {
	ID          string `json:"-"`
	Name        string `json:"name"`
	Description string `json:"description"`

	// Dark locations hide their contents and block movement until the
	// lights_on flag is set by a light source.
	Dark bool `json:"dark,omitempty"`

	// IsStart marks where new players spawn. Exactly one location must
	// carry it.
	IsStart bool `json:"is_start,omitempty"`

	// IsExit marks the location the player escapes from. UnlockKey is the
	// state flag that must be true for exit_mansion to succeed.
	IsExit    bool   `json:"is_exit,omitempty"`
	UnlockKey string `json:"unlock_key,omitempty"`

	InitialState map[string]bool   `json:"initial_state"`
	Exits        map[string]string `json:"exits"` // direction -> location id

	// ConditionalExits gates a direction behind a state flag. The exit is
	// hidden from look and unusable until the flag is set.
	ConditionalExits map[string]string `json:"conditional_exits,omitempty"` // direction -> flag

	InitialItems      []string `json:"initial_items"`
	StationaryObjects []string `json:"stationary_objects"`
}

// StateLightsOn is the flag a light source sets in a dark location.
const StateLightsOn = "lights_on"
