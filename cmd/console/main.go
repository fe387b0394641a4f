// Command console runs a local single-player game in the terminal. The world
// runs in-process; saves go to a local directory and survive restarts under
// the fixed save id "local".
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/haunted-mansion/internal/config"
	"github.com/jwebster45206/haunted-mansion/internal/services"
	intstorage "github.com/jwebster45206/haunted-mansion/internal/storage"
	"github.com/jwebster45206/haunted-mansion/pkg/engine"
	"github.com/jwebster45206/haunted-mansion/pkg/npc"
	"github.com/jwebster45206/haunted-mansion/pkg/session"
	"github.com/jwebster45206/haunted-mansion/pkg/world"
)

const (
	localSaveID   = "local"
	localPlayerID = "local"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	// The TUI owns the terminal; engine logs would tear it up.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	catalog, err := world.Load(cfg.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load world data: %v\n", err)
		os.Exit(1)
	}

	var dialogue npc.DialogueService
	switch cfg.DialogueProvider {
	case config.ProviderAnthropic:
		dialogue = services.NewAnthropicService(cfg.AnthropicAPIKey, cfg.ModelName, logger)
	case config.ProviderGemini:
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		gemini, err := services.NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.ModelName, logger)
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize Gemini: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = gemini.Close() }()
		dialogue = gemini
	case config.ProviderMock:
		dialogue = services.NewMockDialogueService()
	}

	store, err := intstorage.NewFileStorage(cfg.SavesDir, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open saves directory: %v\n", err)
		os.Exit(1)
	}

	eng := engine.New(catalog, dialogue, logger)
	sess := session.New(localSaveID, eng, store, nil, logger)

	// Resume the previous run if a save exists.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	save, err := store.LoadGame(ctx, localSaveID)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load save: %v\n", err)
		os.Exit(1)
	}
	resumed := save != nil
	if resumed {
		sess.Restore(save)
	}

	playerName := os.Getenv("PLAYER_NAME")
	if playerName == "" {
		playerName = "Adventurer"
	}
	player := sess.AddPlayer(localPlayerID, playerName)
	if resumed && save.Player != nil {
		player.CurrentLocation = save.Player.CurrentLocation
		player.Inventory = save.Player.Inventory
	}

	p := tea.NewProgram(NewConsoleUI(sess, playerName, resumed),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
