package catalog

import (
	"context"
	"log/slog"
	"sync"

	"portfolio-catalog/internal/domain"
	"portfolio-catalog/internal/metrics"
)

// WatchFunc receives every applied snapshot with a nil error, or the last good
// snapshot together with the read error that prevented an update.
type WatchFunc func(Snapshot, error)

// Gallery holds the latest snapshot for one filter. It is the only writer of that
// snapshot; any number of watchers read it. Snapshots older than the current one are
// discarded, so a slow fetch can never overwrite a newer view.
type Gallery struct {
	svc    Service
	filter domain.CatalogFilter
	log    *slog.Logger

	// writeMu serializes apply and watcher notification so watchers observe
	// snapshots in increasing order.
	writeMu sync.Mutex

	mu       sync.RWMutex
	current  Snapshot
	loaded   bool
	lastErr  error
	watchers map[uint64]WatchFunc
	nextID   uint64

	sub *Subscription
}

func NewGallery(svc Service, filter domain.CatalogFilter, log *slog.Logger) *Gallery {
	return &Gallery{
		svc:      svc,
		filter:   filter,
		log:      log.With("component", "gallery", "filter", filter.String()),
		watchers: make(map[uint64]WatchFunc),
	}
}

// Start subscribes to changes and loads the first snapshot. A failed initial load is
// reported but the subscription stays active.
func (g *Gallery) Start(ctx context.Context) error {
	sub, err := g.svc.Subscribe(ctx, g.filter, func(s Snapshot) { g.apply(s) },
		WithErrorHandler(g.fail))
	if err != nil {
		return err
	}

	g.mu.Lock()
	g.sub = sub
	g.mu.Unlock()

	return g.Refresh(ctx)
}

// Refresh fetches a new snapshot and applies it unless a newer one arrived meanwhile.
func (g *Gallery) Refresh(ctx context.Context) error {
	snapshot, err := g.svc.FetchAll(ctx, g.filter)
	if err != nil {
		g.fail(err)
		return err
	}
	g.apply(snapshot)
	return nil
}

// Current returns the latest snapshot and whether one has been loaded yet.
func (g *Gallery) Current() (Snapshot, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.current, g.loaded
}

// Err returns the error of the most recent failed read, cleared by the next success.
func (g *Gallery) Err() error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.lastErr
}

// Watch registers fn and returns a func that removes it. fn runs on the writer's
// goroutine: it must not block or call Refresh.
func (g *Gallery) Watch(fn WatchFunc) func() {
	g.mu.Lock()
	g.nextID++
	id := g.nextID
	g.watchers[id] = fn
	g.mu.Unlock()

	return func() {
		g.mu.Lock()
		delete(g.watchers, id)
		g.mu.Unlock()
	}
}

// Watchers reports how many watchers are registered.
func (g *Gallery) Watchers() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.watchers)
}

func (g *Gallery) Close() {
	g.mu.RLock()
	sub := g.sub
	g.mu.RUnlock()
	if sub != nil {
		sub.Unsubscribe()
	}
}

func (g *Gallery) apply(snapshot Snapshot) bool {
	g.writeMu.Lock()
	defer g.writeMu.Unlock()

	g.mu.Lock()
	if g.loaded && snapshot.Seq <= g.current.Seq {
		g.mu.Unlock()
		metrics.StaleSnapshotsDiscarded.Inc()
		g.log.Debug("discarding stale snapshot", "seq", snapshot.Seq, "current", g.current.Seq)
		return false
	}
	g.current = snapshot
	g.loaded = true
	g.lastErr = nil
	watchers := g.watchersLocked()
	g.mu.Unlock()

	for _, fn := range watchers {
		fn(snapshot, nil)
	}
	return true
}

func (g *Gallery) fail(err error) {
	g.writeMu.Lock()
	defer g.writeMu.Unlock()

	g.mu.Lock()
	g.lastErr = err
	current := g.current
	watchers := g.watchersLocked()
	g.mu.Unlock()

	g.log.Warn("catalog read failed, keeping last snapshot", "seq", current.Seq, "error", err)
	for _, fn := range watchers {
		fn(current, err)
	}
}

func (g *Gallery) watchersLocked() []WatchFunc {
	watchers := make([]WatchFunc, 0, len(g.watchers))
	for _, fn := range g.watchers {
		watchers = append(watchers, fn)
	}
	return watchers
}

// Galleries keeps one shared Gallery per filter.
type Galleries struct {
	svc Service
	log *slog.Logger

	mu        sync.Mutex
	ctx       context.Context
	galleries map[string]*Gallery
}

func NewGalleries(svc Service, log *slog.Logger) *Galleries {
	return &Galleries{
		svc:       svc,
		log:       log,
		ctx:       context.Background(),
		galleries: make(map[string]*Gallery),
	}
}

// Start sets the lifetime of galleries created from now on and warms the public ones.
func (gs *Galleries) Start(ctx context.Context) {
	gs.mu.Lock()
	gs.ctx = ctx
	gs.mu.Unlock()

	for _, kind := range []domain.MediaKind{domain.KindArtwork, domain.KindVideo} {
		gs.For(domain.FilterByKind(kind))
	}
}

// For returns the gallery for filter, starting it on first use. The first load
// runs without holding the registry lock, so a slow read for one filter never
// stalls callers asking for another.
func (gs *Galleries) For(filter domain.CatalogFilter) *Gallery {
	key := filter.String()

	gs.mu.Lock()
	if g, ok := gs.galleries[key]; ok {
		gs.mu.Unlock()
		return g
	}
	ctx := gs.ctx
	gs.mu.Unlock()

	g := NewGallery(gs.svc, filter, gs.log)
	if err := g.Start(ctx); err != nil {
		gs.log.Warn("gallery started without a snapshot", "filter", key, "error", err)
		if !domain.IsRemoteReadError(err) {
			// Not subscribed; retry on next use.
			return g
		}
	}

	gs.mu.Lock()
	defer gs.mu.Unlock()
	if existing, ok := gs.galleries[key]; ok {
		g.Close()
		return existing
	}
	gs.galleries[key] = g
	return g
}

func (gs *Galleries) Close() {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	for key, g := range gs.galleries {
		g.Close()
		delete(gs.galleries, key)
	}
}
