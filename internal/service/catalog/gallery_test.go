package catalog_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"portfolio-catalog/internal/changefeed"
	"portfolio-catalog/internal/domain"
	"portfolio-catalog/internal/logger"
	"portfolio-catalog/internal/mocks"
	"portfolio-catalog/internal/service/catalog"
)

func TestGallery_StaleFetchDiscarded(t *testing.T) {
	repo := new(mocks.MediaRepository)
	log := logger.Discard()
	svc := catalog.NewService(repo, changefeed.NewHub(log), log)
	g := catalog.NewGallery(svc, domain.CatalogFilter{}, log)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	older := []domain.MediaRecord{*artwork("old")}
	newer := []domain.MediaRecord{*artwork("new"), *artwork("old")}

	repo.On("List", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(older, nil).Once()
	repo.On("List", mock.Anything, mock.Anything).Return(newer, nil).Once()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, g.Refresh(ctx))
	}()
	<-started

	require.NoError(t, g.Refresh(ctx))
	close(release)
	wg.Wait()

	current, ok := g.Current()
	require.True(t, ok)
	assert.Equal(t, []string{"new", "old"}, titles(current.Records))
	assert.Equal(t, uint64(2), current.Seq)
	repo.AssertExpectations(t)
}

func TestGallery_KeepsSnapshotOnError(t *testing.T) {
	repo := new(mocks.MediaRepository)
	log := logger.Discard()
	svc := catalog.NewService(repo, changefeed.NewHub(log), log)
	g := catalog.NewGallery(svc, domain.FilterByKind(domain.KindArtwork), log)
	ctx := context.Background()

	repo.On("List", mock.Anything, mock.Anything).Return([]domain.MediaRecord{*artwork("kept")}, nil).Once()
	repo.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("offline")).Once()

	var got []error
	cancel := g.Watch(func(_ catalog.Snapshot, err error) { got = append(got, err) })
	defer cancel()

	require.NoError(t, g.Refresh(ctx))
	err := g.Refresh(ctx)
	require.Error(t, err)
	assert.True(t, domain.IsRemoteReadError(err))

	current, ok := g.Current()
	require.True(t, ok)
	assert.Equal(t, []string{"kept"}, titles(current.Records))
	assert.True(t, domain.IsRemoteReadError(g.Err()))

	require.Len(t, got, 2)
	assert.NoError(t, got[0])
	assert.Error(t, got[1])
}

func TestGallery_FollowsChanges(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, e.repo.Create(ctx, artwork("first")))

	g := catalog.NewGallery(e.svc, domain.FilterByKind(domain.KindArtwork), logger.Discard())
	updates := make(chan catalog.Snapshot, 8)
	stop := g.Watch(func(s catalog.Snapshot, err error) {
		if err == nil {
			updates <- s
		}
	})
	defer stop()

	require.NoError(t, g.Start(ctx))
	defer g.Close()

	initial := <-updates
	assert.Equal(t, []string{"first"}, titles(initial.Records))

	require.NoError(t, e.repo.Create(ctx, artwork("second")))

	deadline := time.After(waitFor)
	for {
		select {
		case s := <-updates:
			assert.Greater(t, s.Seq, initial.Seq)
			if len(s.Records) == 2 {
				assert.Equal(t, []string{"second", "first"}, titles(s.Records))
				return
			}
		case <-deadline:
			t.Fatal("gallery did not pick up the insert")
		}
	}
}

func TestGallery_WatchCancel(t *testing.T) {
	e := newEnv(t)
	g := catalog.NewGallery(e.svc, domain.CatalogFilter{}, logger.Discard())

	calls := 0
	cancel := g.Watch(func(catalog.Snapshot, error) { calls++ })
	require.NoError(t, g.Refresh(context.Background()))
	cancel()
	require.NoError(t, g.Refresh(context.Background()))

	assert.Equal(t, 1, calls)
}

func TestGalleries_SharedPerFilter(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gs := catalog.NewGalleries(e.svc, logger.Discard())
	gs.Start(ctx)
	defer gs.Close()

	a := gs.For(domain.FilterByKind(domain.KindArtwork))
	b := gs.For(domain.FilterByKind(domain.KindArtwork))
	assert.Same(t, a, b)
	assert.NotSame(t, a, gs.For(domain.CatalogFilter{}))

	_, loaded := a.Current()
	assert.True(t, loaded)
	assert.Equal(t, 3, e.hub.Len())
}

func TestGalleries_SlowStartDoesNotBlockOtherFilters(t *testing.T) {
	repo := new(mocks.MediaRepository)
	log := logger.Discard()
	svc := catalog.NewService(repo, changefeed.NewHub(log), log)
	gs := catalog.NewGalleries(svc, log)
	defer gs.Close()

	started := make(chan struct{})
	release := make(chan struct{})
	isArtwork := mock.MatchedBy(func(f domain.CatalogFilter) bool {
		return f.Kind != nil && *f.Kind == domain.KindArtwork
	})
	repo.On("List", mock.Anything, isArtwork).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return([]domain.MediaRecord{*artwork("slow")}, nil).Once()
	repo.On("List", mock.Anything, mock.Anything).Return([]domain.MediaRecord{}, nil)

	artworks := make(chan *catalog.Gallery, 1)
	go func() { artworks <- gs.For(domain.FilterByKind(domain.KindArtwork)) }()
	<-started

	videos := make(chan *catalog.Gallery, 1)
	go func() { videos <- gs.For(domain.FilterByKind(domain.KindVideo)) }()

	select {
	case g := <-videos:
		_, loaded := g.Current()
		assert.True(t, loaded)
	case <-time.After(waitFor):
		t.Fatal("video gallery waited on the artwork load")
	}

	close(release)
	a := <-artworks
	assert.Same(t, a, gs.For(domain.FilterByKind(domain.KindArtwork)))
	current, _ := a.Current()
	assert.Equal(t, []string{"slow"}, titles(current.Records))
}

func TestGalleries_ConcurrentFirstUseShared(t *testing.T) {
	e := newEnv(t)
	gs := catalog.NewGalleries(e.svc, logger.Discard())
	defer gs.Close()

	const callers = 8
	got := make([]*catalog.Gallery, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = gs.For(domain.CatalogFilter{})
		}()
	}
	wg.Wait()

	for _, g := range got[1:] {
		assert.Same(t, got[0], g)
	}
	assert.Eventually(t, func() bool { return e.hub.Len() == 1 }, waitFor, 10*time.Millisecond,
		"galleries that lost the race must unsubscribe")
}
