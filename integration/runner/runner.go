// Package runner drives scripted play-throughs against a running API. Each
// case file is a sequence of commands with expectations on the responses;
// every suite plays in a freshly created room so runs don't interfere.
package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner executes integration test suites against a running API.
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Logger            func(format string, args ...interface{})
	ErrorHandlingMode ErrorHandlingMode
}

func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 60 * time.Second},
		Logger:            func(string, ...interface{}) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a JSON case file.
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}
	return suite, nil
}

// roomResponse mirrors the room endpoints' wire form.
type roomResponse struct {
	RoomCode string `json:"room_code"`
	PlayerID string `json:"player_id"`
	Location string `json:"location"`
	Players  int    `json:"players"`
}

// commandResponse mirrors the command endpoint's wire form.
type commandResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Location string `json:"location,omitempty"`
	GameWon  bool   `json:"game_won,omitempty"`
	GameOver bool   `json:"game_over,omitempty"`
}

// RunSuite creates a room, plays every step in order and tears the room down.
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		SuiteName: suite.Name,
		Results:   make([]TestResult, 0, len(suite.Steps)),
	}

	playerName := suite.PlayerName
	if playerName == "" {
		playerName = "Tester"
	}

	room, err := r.createRoom(ctx, playerName)
	if err != nil {
		result.Error = fmt.Errorf("failed to create room: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}
	result.RoomCode = room.RoomCode
	result.PlayerID = room.PlayerID
	defer func() { _ = r.leaveRoom(context.Background(), room.RoomCode, room.PlayerID) }()

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)
		stepResult := r.runStep(ctx, room, step)
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] FAIL %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}
		r.Logger("    [%d/%d] PASS %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

func (r *Runner) runStep(ctx context.Context, room *roomResponse, step TestStep) TestResult {
	start := time.Now()
	result := TestResult{StepName: step.Name}

	resp, err := r.postCommand(ctx, room.RoomCode, room.PlayerID, step.Command)
	if err != nil {
		result.Error = fmt.Errorf("failed to execute command %q: %w", step.Command, err)
		result.Duration = time.Since(start)
		return result
	}
	result.ResponseText = resp.Message

	if err := checkExpectations(step.Expectations, resp); err != nil {
		result.Error = fmt.Errorf("expectation failed: %w", err)
		result.Duration = time.Since(start)
		return result
	}

	result.Success = true
	result.Duration = time.Since(start)
	return result
}

func (r *Runner) createRoom(ctx context.Context, playerName string) (*roomResponse, error) {
	body, err := json.Marshal(map[string]string{"player_name": playerName})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+"/v1/rooms", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("create room returned %d: %s", resp.StatusCode, string(raw))
	}

	var room roomResponse
	if err := json.NewDecoder(resp.Body).Decode(&room); err != nil {
		return nil, fmt.Errorf("failed to decode room response: %w", err)
	}
	return &room, nil
}

func (r *Runner) leaveRoom(ctx context.Context, roomCode, playerID string) error {
	url := fmt.Sprintf("%s/v1/rooms/%s/players/%s", r.BaseURL, roomCode, playerID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("leave room returned %d", resp.StatusCode)
	}
	return nil
}

func (r *Runner) postCommand(ctx context.Context, roomCode, playerID, command string) (*commandResponse, error) {
	body, err := json.Marshal(map[string]string{
		"room":      roomCode,
		"player_id": playerID,
		"command":   command,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+"/v1/command", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("command returned %d: %s", resp.StatusCode, string(raw))
	}

	var cmdResp commandResponse
	if err := json.NewDecoder(resp.Body).Decode(&cmdResp); err != nil {
		return nil, fmt.Errorf("failed to decode command response: %w", err)
	}
	return &cmdResp, nil
}

// checkExpectations validates a step's expectations against the response.
func checkExpectations(exp Expectations, resp *commandResponse) error {
	if exp.Success != nil && resp.Success != *exp.Success {
		return fmt.Errorf("expected success=%t, got %t (message: %s)", *exp.Success, resp.Success, resp.Message)
	}

	lowerMessage := strings.ToLower(resp.Message)
	for _, want := range exp.MessageContains {
		if !strings.Contains(lowerMessage, strings.ToLower(want)) {
			return fmt.Errorf("expected message to contain %q, got: %s", want, resp.Message)
		}
	}
	for _, unwanted := range exp.MessageNotContains {
		if strings.Contains(lowerMessage, strings.ToLower(unwanted)) {
			return fmt.Errorf("expected message to NOT contain %q, got: %s", unwanted, resp.Message)
		}
	}

	if exp.Location != nil && resp.Location != *exp.Location {
		return fmt.Errorf("expected location %s, got %s", *exp.Location, resp.Location)
	}
	if exp.GameWon != nil && resp.GameWon != *exp.GameWon {
		return fmt.Errorf("expected game_won=%t, got %t", *exp.GameWon, resp.GameWon)
	}
	if exp.GameOver != nil && resp.GameOver != *exp.GameOver {
		return fmt.Errorf("expected game_over=%t, got %t", *exp.GameOver, resp.GameOver)
	}
	return nil
}
