package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/haunted-mansion/internal/config"
	"github.com/jwebster45206/haunted-mansion/internal/handlers"
	"github.com/jwebster45206/haunted-mansion/internal/logger"
	"github.com/jwebster45206/haunted-mansion/internal/middleware"
	"github.com/jwebster45206/haunted-mansion/internal/services"
	"github.com/jwebster45206/haunted-mansion/internal/services/events"
	intstorage "github.com/jwebster45206/haunted-mansion/internal/storage"
	"github.com/jwebster45206/haunted-mansion/pkg/engine"
	"github.com/jwebster45206/haunted-mansion/pkg/npc"
	"github.com/jwebster45206/haunted-mansion/pkg/session"
	"github.com/jwebster45206/haunted-mansion/pkg/world"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Haunted Mansion API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"dialogue_provider", cfg.DialogueProvider,
		"data_dir", cfg.DataDir)

	catalog, err := world.Load(cfg.DataDir)
	if err != nil {
		log.Error("Failed to load world catalog", "error", err)
		os.Exit(1)
	}
	log.Info("World catalog loaded",
		"locations", len(catalog.Locations),
		"items", len(catalog.Items),
		"npcs", len(catalog.NPCs))

	var dialogue npc.DialogueService
	switch cfg.DialogueProvider {
	case config.ProviderAnthropic:
		dialogue = services.NewAnthropicService(cfg.AnthropicAPIKey, cfg.ModelName, log)
		log.Info("Using Anthropic dialogue provider")
	case config.ProviderGemini:
		geminiCtx, geminiCancel := context.WithTimeout(context.Background(), 30*time.Second)
		gemini, err := services.NewGeminiService(geminiCtx, cfg.GeminiAPIKey, cfg.ModelName, log)
		geminiCancel()
		if err != nil {
			log.Error("Failed to initialize Gemini", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := gemini.Close(); err != nil {
				log.Error("Error closing Gemini client", "error", err)
			}
		}()
		dialogue = gemini
		log.Info("Using Gemini dialogue provider")
	case config.ProviderMock:
		dialogue = services.NewMockDialogueService()
		log.Warn("Using mock dialogue provider; NPCs answer with fallback lines only")
	}

	store := intstorage.NewRedisStorage(cfg.RedisURL, log)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}

	broadcaster := events.NewBroadcaster(store.Client(), log)
	eng := engine.New(catalog, dialogue, log)
	registry := session.NewRegistry(eng, store, broadcaster, log)

	mux := http.NewServeMux()

	mux.Handle("/health", handlers.NewHealthHandler(store, log))

	roomHandler := handlers.NewRoomHandler(registry, log)
	mux.Handle("/v1/rooms", roomHandler)
	mux.Handle("/v1/rooms/", roomHandler)

	mux.Handle("/v1/command", handlers.NewCommandHandler(registry, log))

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.DialogueTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Server exited")
}
