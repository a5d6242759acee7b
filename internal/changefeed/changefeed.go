// Package changefeed carries "something changed" notifications for the media catalog.
// Payloads identify the row and its kind only; consumers always refetch.
package changefeed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"portfolio-catalog/internal/domain"
)

type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
	// OpResync is emitted after the upstream connection was re-established and
	// notifications may have been missed. It matches every filter.
	OpResync Op = "resync"
)

type Event struct {
	Op   Op               `json:"op"`
	Kind domain.MediaKind `json:"kind"`
	ID   uuid.UUID        `json:"id"`
}

// Matches reports whether the event concerns records selected by filter.
func (e Event) Matches(filter domain.CatalogFilter) bool {
	if e.Op == OpResync {
		return true
	}
	return filter.Matches(e.Kind)
}

// Feed delivers change events. The returned cancel func is idempotent; the channel is
// closed once the subscription ends.
type Feed interface {
	Subscribe(ctx context.Context) (<-chan Event, func(), error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher is used when the store emits notifications itself (database triggers).
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

const subscriberBuffer = 64

func encode(event Event) ([]byte, error) {
	return json.Marshal(event)
}

func decode(payload string) (Event, error) {
	var event Event
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return Event{}, fmt.Errorf("decode change event: %w", err)
	}
	switch event.Op {
	case OpInsert, OpUpdate, OpDelete, OpResync:
	default:
		return Event{}, fmt.Errorf("unknown change op %q", event.Op)
	}
	return event, nil
}
