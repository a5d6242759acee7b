package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"portfolio-catalog/internal/changefeed"
	"portfolio-catalog/internal/domain"
	"portfolio-catalog/internal/metrics"
	"portfolio-catalog/internal/repository"
)

// Snapshot is the complete, ordered result of one catalog read. Seq is taken when the
// read starts, so a higher Seq always reflects a later view of the store.
type Snapshot struct {
	Records   []domain.MediaRecord `json:"data"`
	Seq       uint64               `json:"seq"`
	FetchedAt time.Time            `json:"fetched_at"`
	Filter    domain.CatalogFilter `json:"-"`
}

type ChangeFunc func(Snapshot)

type ErrorFunc func(error)

type Service interface {
	FetchAll(ctx context.Context, filter domain.CatalogFilter) (Snapshot, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.MediaRecord, error)
	Subscribe(ctx context.Context, filter domain.CatalogFilter, onChange ChangeFunc, opts ...SubscribeOption) (*Subscription, error)
}

type service struct {
	repo repository.MediaRepository
	feed changefeed.Feed
	seq  atomic.Uint64
	now  func() time.Time
	log  *slog.Logger
}

func NewService(repo repository.MediaRepository, feed changefeed.Feed, log *slog.Logger) Service {
	return &service{
		repo: repo,
		feed: feed,
		now:  time.Now,
		log:  log.With("component", "catalog"),
	}
}

// FetchAll returns every record matching filter, newest first. There is no limit.
func (s *service) FetchAll(ctx context.Context, filter domain.CatalogFilter) (Snapshot, error) {
	seq := s.seq.Add(1)
	start := time.Now()

	records, err := s.repo.List(ctx, filter)
	metrics.CatalogFetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CatalogFetches.WithLabelValues("error").Inc()
		return Snapshot{}, &domain.RemoteReadError{Err: err}
	}
	metrics.CatalogFetches.WithLabelValues("ok").Inc()

	if records == nil {
		records = []domain.MediaRecord{}
	}
	return Snapshot{
		Records:   records,
		Seq:       seq,
		FetchedAt: s.now(),
		Filter:    filter,
	}, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*domain.MediaRecord, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrMediaNotFound) {
			return nil, err
		}
		return nil, &domain.RemoteReadError{Err: err}
	}
	return record, nil
}

// Subscribe refetches the catalog after every change event matching filter and passes
// the snapshot to onChange. Refetches for one subscription run one at a time in event
// order. The subscription ends on Unsubscribe, when ctx is done or when the feed closes.
func (s *service) Subscribe(ctx context.Context, filter domain.CatalogFilter, onChange ChangeFunc, opts ...SubscribeOption) (*Subscription, error) {
	if onChange == nil {
		return nil, errors.New("catalog: nil change callback")
	}

	subCtx, cancel := context.WithCancel(ctx)
	events, cancelFeed, err := s.feed.Subscribe(subCtx)
	if err != nil {
		cancel()
		return nil, err
	}

	sub := &Subscription{
		filter:   filter,
		onChange: onChange,
		fetch:    s.FetchAll,
		log:      s.log.With("filter", filter.String()),
		done:     make(chan struct{}),
		cancel: func() {
			cancel()
			cancelFeed()
		},
	}
	for _, opt := range opts {
		opt(sub)
	}

	go sub.run(subCtx, events)
	return sub, nil
}
