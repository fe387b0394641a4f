package runner

import "time"

// TestSuite is one scripted play-through loaded from a JSON case file.
type TestSuite struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	PlayerName  string     `json:"player_name,omitempty"`
	Steps       []TestStep `json:"steps"`
}

// TestStep is one command plus the expectations checked against its response.
type TestStep struct {
	Name         string       `json:"name"`
	Command      string       `json:"command"`
	Expectations Expectations `json:"expectations"`
}

// Expectations describes what the command response must look like. Nil or
// empty fields are not checked.
type Expectations struct {
	Success            *bool    `json:"success,omitempty"`
	MessageContains    []string `json:"message_contains,omitempty"`
	MessageNotContains []string `json:"message_not_contains,omitempty"`
	Location           *string  `json:"location,omitempty"`
	GameWon            *bool    `json:"game_won,omitempty"`
	GameOver           *bool    `json:"game_over,omitempty"`
}

// TestResult is the outcome of one step.
type TestResult struct {
	StepName     string
	Success      bool
	ResponseText string
	Duration     time.Duration
	Error        error
}

// TestRunResult is the outcome of one suite: the room it played in and the
// per-step results.
type TestRunResult struct {
	SuiteName string
	RoomCode  string
	PlayerID  string
	Results   []TestResult
	Duration  time.Duration
	Error     error
}
