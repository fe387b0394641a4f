// Command monitor tails the event stream of a room. It is an operator tool:
// point it at the same Redis the API uses and it prints every event the
// sessions publish, which is handy when debugging multiplayer notification
// issues.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jwebster45206/haunted-mansion/internal/config"
	"github.com/jwebster45206/haunted-mansion/internal/logger"
	"github.com/jwebster45206/haunted-mansion/internal/services/events"
	intstorage "github.com/jwebster45206/haunted-mansion/internal/storage"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: monitor <room-code>")
		os.Exit(1)
	}
	roomCode := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	log := logger.Setup(cfg)
	log.Info("Starting room monitor",
		"room", roomCode,
		"redis_url", cfg.RedisURL)

	store := intstorage.NewRedisStorage(cfg.RedisURL, log)
	defer func() { _ = store.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := store.Ping(ctx); err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	broadcaster := events.NewBroadcaster(store.Client(), log)
	sub := broadcaster.Subscribe(ctx, roomCode)
	defer func() { _ = sub.Close() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Info("Monitor shutting down")
		cancel()
		_ = sub.Close()
	}()

	log.Info("Subscribed", "channel", events.ChannelForRoom(roomCode))

	ch := sub.Channel()
	for msg := range ch {
		var ev events.Event
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			log.Warn("Skipping malformed event", "error", err, "payload", msg.Payload)
			continue
		}
		switch ev.Type {
		case events.EventTypePlayerMove:
			log.Info("player moved",
				"player", ev.PlayerID,
				"from", ev.From,
				"to", ev.To,
				"message", ev.Message)
		case events.EventTypeLocation:
			log.Info("location event",
				"location", ev.LocationID,
				"message", ev.Message)
		default:
			log.Info("event", "type", ev.Type, "message", ev.Message)
		}
	}
}
