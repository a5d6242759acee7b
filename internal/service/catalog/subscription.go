package catalog

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"portfolio-catalog/internal/changefeed"
	"portfolio-catalog/internal/domain"
	"portfolio-catalog/internal/metrics"
)

type SubscribeOption func(*Subscription)

// WithErrorHandler receives the RemoteReadError of every failed refetch.
func WithErrorHandler(fn ErrorFunc) SubscribeOption {
	return func(s *Subscription) {
		s.onError = fn
	}
}

type Subscription struct {
	filter   domain.CatalogFilter
	onChange ChangeFunc
	onError  ErrorFunc
	fetch    func(context.Context, domain.CatalogFilter) (Snapshot, error)
	log      *slog.Logger

	lastSeq uint64
	closed  atomic.Bool
	once    sync.Once
	cancel  func()
	done    chan struct{}
}

// Unsubscribe stops further deliveries; a callback already running finishes. Safe to
// call more than once, including from inside a callback.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.closed.Store(true)
		s.cancel()
	})
}

// Done is closed once the subscription has stopped.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

func (s *Subscription) run(ctx context.Context, events <-chan changefeed.Event) {
	defer close(s.done)
	defer s.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if !event.Matches(s.filter) {
				continue
			}
			s.refetch(ctx, event)
		}
	}
}

func (s *Subscription) refetch(ctx context.Context, event changefeed.Event) {
	snapshot, err := s.fetch(ctx, s.filter)
	if s.closed.Load() {
		return
	}
	if err != nil {
		s.log.Warn("refetch after change failed", "op", event.Op, "id", event.ID, "error", err)
		if s.onError != nil {
			s.onError(err)
		}
		return
	}
	if snapshot.Seq < s.lastSeq {
		metrics.StaleSnapshotsDiscarded.Inc()
		return
	}
	s.lastSeq = snapshot.Seq
	s.onChange(snapshot)
}
