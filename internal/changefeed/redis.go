package changefeed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const RedisChannel = "catalog:media_changes"

// RedisFeed shares change events between API instances over Redis Pub/Sub.
// Publish goes to Redis; Run relays the channel into the local hub, so an instance
// also receives its own events.
type RedisFeed struct {
	client  *redis.Client
	channel string
	hub     *Hub
	log     *slog.Logger
}

func NewRedisFeed(client *redis.Client, log *slog.Logger) *RedisFeed {
	return &RedisFeed{
		client:  client,
		channel: RedisChannel,
		hub:     NewHub(log),
		log:     log.With("component", "changefeed.redis"),
	}
}

func (f *RedisFeed) Publish(ctx context.Context, event Event) error {
	payload, err := encode(event)
	if err != nil {
		return err
	}
	if err := f.client.Publish(ctx, f.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish change event: %w", err)
	}
	return nil
}

func (f *RedisFeed) Subscribe(ctx context.Context) (<-chan Event, func(), error) {
	return f.hub.Subscribe(ctx)
}

// Run blocks until ctx is cancelled.
func (f *RedisFeed) Run(ctx context.Context) error {
	pubsub := f.client.Subscribe(ctx, f.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", f.channel, err)
	}
	f.log.Info("listening for change events", "channel", f.channel)

	messages := pubsub.ChannelWithSubscriptions()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			f.relay(ctx, msg)
		}
	}
}

// relay forwards one Pub/Sub delivery to the hub. The initial subscribe reply is
// consumed by Run, so any later one means go-redis reconnected and resubscribed,
// and events published in between are lost.
func (f *RedisFeed) relay(ctx context.Context, msg any) {
	switch msg := msg.(type) {
	case *redis.Subscription:
		if msg.Kind != "subscribe" {
			return
		}
		f.log.Warn("resubscribed after reconnect, requesting resync", "channel", msg.Channel)
		_ = f.hub.Publish(ctx, Event{Op: OpResync})
	case *redis.Message:
		event, err := decode(msg.Payload)
		if err != nil {
			f.log.Warn("ignoring malformed change event", "error", err)
			return
		}
		_ = f.hub.Publish(ctx, event)
	}
}
