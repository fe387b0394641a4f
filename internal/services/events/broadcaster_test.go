package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupTestBroadcaster(t *testing.T) *Broadcaster {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	return NewBroadcaster(client, logger)
}

func receiveEvent(t *testing.T, sub *redis.PubSub) Event {
	t.Helper()
	select {
	case msg := <-sub.Channel():
		var ev Event
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			t.Fatalf("Failed to unmarshal event: %v", err)
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for event")
		return Event{}
	}
}

func TestBroadcaster_NotifyMove(t *testing.T) {
	b := setupTestBroadcaster(t)
	ctx := context.Background()

	sub := b.Subscribe(ctx, "abc12345")
	defer func() { _ = sub.Close() }()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("Failed to confirm subscription: %v", err)
	}

	err := b.NotifyMove(ctx, "abc12345", "player-1", "hallway", "library", "Alice went east.")
	if err != nil {
		t.Fatalf("NotifyMove failed: %v", err)
	}

	ev := receiveEvent(t, sub)
	if ev.Type != EventTypePlayerMove {
		t.Errorf("Expected type %s, got %s", EventTypePlayerMove, ev.Type)
	}
	if ev.From != "hallway" || ev.To != "library" {
		t.Errorf("Expected move hallway->library, got %s->%s", ev.From, ev.To)
	}
	if ev.Message != "Alice went east." {
		t.Errorf("Unexpected message: %s", ev.Message)
	}
}

func TestBroadcaster_NotifyLocation(t *testing.T) {
	b := setupTestBroadcaster(t)
	ctx := context.Background()

	sub := b.Subscribe(ctx, "abc12345")
	defer func() { _ = sub.Close() }()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("Failed to confirm subscription: %v", err)
	}

	err := b.NotifyLocation(ctx, "abc12345", "basement", "Bob lit a candle.")
	if err != nil {
		t.Fatalf("NotifyLocation failed: %v", err)
	}

	ev := receiveEvent(t, sub)
	if ev.Type != EventTypeLocation {
		t.Errorf("Expected type %s, got %s", EventTypeLocation, ev.Type)
	}
	if ev.LocationID != "basement" {
		t.Errorf("Expected location basement, got %s", ev.LocationID)
	}
}

func TestBroadcaster_RoomsAreIsolated(t *testing.T) {
	b := setupTestBroadcaster(t)
	ctx := context.Background()

	sub := b.Subscribe(ctx, "room-a")
	defer func() { _ = sub.Close() }()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("Failed to confirm subscription: %v", err)
	}

	if err := b.NotifyLocation(ctx, "room-b", "hallway", "elsewhere"); err != nil {
		t.Fatalf("NotifyLocation failed: %v", err)
	}
	if err := b.NotifyLocation(ctx, "room-a", "hallway", "here"); err != nil {
		t.Fatalf("NotifyLocation failed: %v", err)
	}

	ev := receiveEvent(t, sub)
	if ev.RoomCode != "room-a" || ev.Message != "here" {
		t.Errorf("Expected only room-a's event, got room=%s message=%s", ev.RoomCode, ev.Message)
	}
}
