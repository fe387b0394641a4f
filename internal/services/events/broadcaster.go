// Package events publishes session events to Redis Pub/Sub so API replicas
// and SSE streams can relay room activity to connected players.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/haunted-mansion/pkg/session"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeLocation   EventType = "room.location"
	EventTypePlayerMove EventType = "room.player_moved"
)

// Event is the wire form published on a room channel.
type Event struct {
	Type       EventType `json:"type"`
	RoomCode   string    `json:"room_code"`
	LocationID string    `json:"location_id,omitempty"`
	PlayerID   string    `json:"player_id,omitempty"`
	From       string    `json:"from,omitempty"`
	To         string    `json:"to,omitempty"`
	Message    string    `json:"message"`
}

// Broadcaster publishes room events to Redis Pub/Sub.
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

var _ session.Notifier = (*Broadcaster)(nil)

func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// ChannelForRoom returns the Pub/Sub channel name for a room.
func ChannelForRoom(roomCode string) string {
	return "mansion:events:" + roomCode
}

// NotifyLocation publishes an event scoped to one location in a room.
func (b *Broadcaster) NotifyLocation(ctx context.Context, roomCode, locationID, message string) error {
	return b.publish(ctx, Event{
		Type:       EventTypeLocation,
		RoomCode:   roomCode,
		LocationID: locationID,
		Message:    message,
	})
}

// NotifyMove publishes a player movement event; subscribers filter on the
// from and to locations.
func (b *Broadcaster) NotifyMove(ctx context.Context, roomCode, playerID, oldLocation, newLocation, message string) error {
	return b.publish(ctx, Event{
		Type:     EventTypePlayerMove,
		RoomCode: roomCode,
		PlayerID: playerID,
		From:     oldLocation,
		To:       newLocation,
		Message:  message,
	})
}

func (b *Broadcaster) publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	channel := ChannelForRoom(event.RoomCode)
	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event",
			"channel", channel, "type", event.Type, "error", err)
		return fmt.Errorf("failed to publish event: %w", err)
	}
	b.logger.Debug("Published event", "channel", channel, "type", event.Type)
	return nil
}

// Subscribe opens a Pub/Sub subscription for a room's events. The caller
// owns the returned subscription and must Close it.
func (b *Broadcaster) Subscribe(ctx context.Context, roomCode string) *redis.PubSub {
	return b.redisClient.Subscribe(ctx, ChannelForRoom(roomCode))
}
