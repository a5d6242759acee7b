package changefeed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
)

const PostgresChannel = "media_changes"

// PostgresFeed relays NOTIFY payloads emitted by the media_records trigger. A single
// LISTEN connection feeds every local subscriber.
type PostgresFeed struct {
	listener *pq.Listener
	hub      *Hub
	log      *slog.Logger
}

func NewPostgresFeed(databaseURL string, log *slog.Logger) (*PostgresFeed, error) {
	log = log.With("component", "changefeed.postgres")

	listener := pq.NewListener(databaseURL, 2*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventDisconnected:
			log.Warn("change listener disconnected", "error", err)
		case pq.ListenerEventReconnected:
			log.Info("change listener reconnected")
		case pq.ListenerEventConnectionAttemptFailed:
			log.Warn("change listener reconnect failed", "error", err)
		}
	})

	if err := listener.Listen(PostgresChannel); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("listen %s: %w", PostgresChannel, err)
	}

	return &PostgresFeed{
		listener: listener,
		hub:      NewHub(log),
		log:      log,
	}, nil
}

func (f *PostgresFeed) Subscribe(ctx context.Context) (<-chan Event, func(), error) {
	return f.hub.Subscribe(ctx)
}

// Run blocks until ctx is cancelled, then closes the LISTEN connection.
func (f *PostgresFeed) Run(ctx context.Context) error {
	defer f.listener.Close()
	f.log.Info("listening for change events", "channel", PostgresChannel)

	ticker := time.NewTicker(90 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-f.listener.Notify:
			if n == nil {
				// pq delivers nil after a reconnect; anything sent meanwhile is lost.
				_ = f.hub.Publish(ctx, Event{Op: OpResync})
				continue
			}
			event, err := decode(n.Extra)
			if err != nil {
				f.log.Warn("ignoring malformed change event", "error", err)
				continue
			}
			_ = f.hub.Publish(ctx, event)
		case <-ticker.C:
			go func() {
				if err := f.listener.Ping(); err != nil {
					f.log.Warn("change listener ping failed", "error", err)
				}
			}()
		}
	}
}
