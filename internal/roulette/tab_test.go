// file: internal/roulette/tab_test.go
// version: 1.1.0
// guid: 6b2e9f41-3d70-4c85-a1e6-f0c4d7b8e923

package roulette

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jdfalk/art-roulette/internal/catalog"
	"github.com/jdfalk/art-roulette/internal/finder"
	"github.com/jdfalk/art-roulette/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFinder struct {
	calls    atomic.Int32
	FindFunc func(ctx context.Context, call int) (*models.Artwork, error)
}

func (f *fakeFinder) Info() catalog.Info {
	return catalog.Info{ID: catalog.AICID, Name: "Art Institute of Chicago", Shape: catalog.ShapeBatch}
}

func (f *fakeFinder) Find(ctx context.Context) (*models.Artwork, error) {
	return f.FindFunc(ctx, int(f.calls.Add(1)))
}

func artwork(id string) *models.Artwork {
	return &models.Artwork{
		ID:        id,
		Catalog:   catalog.AICID,
		Title:     "Title " + id,
		Artist:    "Artist " + id,
		ImageURL:  "https://example.org/" + id + ".jpg",
		SourceURL: "https://example.org/artworks/" + id,
	}
}

type fakePersister struct {
	mu    sync.Mutex
	urls  []string
	names []string
	err   error
}

func (p *fakePersister) Persist(ctx context.Context, imageURL, name string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.urls = append(p.urls, imageURL)
	p.names = append(p.names, name)
	if p.err != nil {
		return "", p.err
	}
	return "/pictures/" + name + ".jpg", nil
}

type fakeOpener struct {
	opened   []string
	notified []string
}

func (o *fakeOpener) Open(url string) error {
	o.opened = append(o.opened, url)
	return nil
}

func (o *fakeOpener) NotifyMediaScanner(path string) error {
	o.notified = append(o.notified, path)
	return nil
}

func TestShuffleSuccess(t *testing.T) {
	f := &fakeFinder{FindFunc: func(ctx context.Context, call int) (*models.Artwork, error) {
		return artwork("1"), nil
	}}
	tab := NewTab(f, nil, nil)
	assert.Equal(t, StatusIdle, tab.State().Status)

	st, err := tab.Shuffle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusReady, st.Status)
	assert.Equal(t, "1", st.Artwork.ID)
	assert.Len(t, st.Invocation, 26, "invocation ids are ULIDs")
	assert.Equal(t, catalog.AICID, tab.Catalog())
}

// A finder that never looks at its context must still have its result committed.
func TestShuffleCommitsWhenFinderIgnoresContext(t *testing.T) {
	f := &fakeFinder{FindFunc: func(_ context.Context, call int) (*models.Artwork, error) {
		return artwork(fmt.Sprint(call)), nil
	}}
	tab := NewTab(f, nil, nil)

	for i := 1; i <= 3; i++ {
		st, err := tab.Shuffle(context.Background())
		require.NoError(t, err, "shuffle %d", i)
		assert.Equal(t, StatusReady, st.Status)
		require.NotNil(t, st.Artwork)
		assert.Equal(t, fmt.Sprint(i), st.Artwork.ID)
	}
	assert.Equal(t, "3", tab.State().Artwork.ID)
}

func TestShuffleNotFoundShowsMessage(t *testing.T) {
	f := &fakeFinder{FindFunc: func(ctx context.Context, call int) (*models.Artwork, error) {
		if call == 1 {
			return artwork("1"), nil
		}
		return nil, &finder.NotFoundError{Catalog: catalog.AICID, Attempts: 12}
	}}
	tab := NewTab(f, nil, nil)
	_, err := tab.Shuffle(context.Background())
	require.NoError(t, err)

	st, err := tab.Shuffle(context.Background())
	assert.ErrorIs(t, err, finder.ErrNotFound)
	assert.Equal(t, StatusFailed, st.Status)
	assert.Nil(t, st.Artwork)
	assert.Equal(t, finder.NotFoundMessage, st.Message)

	// A later success clears the message.
	f.FindFunc = func(ctx context.Context, call int) (*models.Artwork, error) { return artwork("3"), nil }
	st, err = tab.Shuffle(context.Background())
	require.NoError(t, err)
	assert.Empty(t, st.Message)
}

func TestLastInvocationWins(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	f := &fakeFinder{FindFunc: func(ctx context.Context, call int) (*models.Artwork, error) {
		if call == 1 {
			close(started)
			<-release
			// Resolves late and ignores cancellation on purpose.
			return artwork("stale"), nil
		}
		return artwork("fresh"), nil
	}}
	tab := NewTab(f, nil, nil)

	type result struct {
		st  State
		err error
	}
	first := make(chan result, 1)
	go func() {
		st, err := tab.Shuffle(context.Background())
		first <- result{st, err}
	}()
	<-started

	st, err := tab.Shuffle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", st.Artwork.ID)

	close(release)
	r := <-first
	assert.ErrorIs(t, r.err, context.Canceled)
	assert.Equal(t, "fresh", tab.State().Artwork.ID)
	assert.Equal(t, StatusReady, tab.State().Status)
}

func TestCancelBeforeResolveKeepsState(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	f := &fakeFinder{FindFunc: func(ctx context.Context, call int) (*models.Artwork, error) {
		if call == 1 {
			return artwork("shown"), nil
		}
		started <- struct{}{}
		<-release
		return artwork("late"), nil
	}}
	tab := NewTab(f, nil, nil)
	_, err := tab.Shuffle(context.Background())
	require.NoError(t, err)
	before := tab.State()

	done := make(chan error, 1)
	go func() {
		_, err := tab.Shuffle(context.Background())
		done <- err
	}()
	<-started
	assert.Equal(t, StatusLoading, tab.State().Status)

	tab.Cancel()
	close(release)
	assert.ErrorIs(t, <-done, context.Canceled)

	after := tab.State()
	assert.Equal(t, before.Status, after.Status)
	assert.Equal(t, before.Artwork, after.Artwork)
	assert.Equal(t, before.Message, after.Message)
	assert.Equal(t, before.Invocation, after.Invocation)
}

func TestCancelViaCallerContext(t *testing.T) {
	f := &fakeFinder{FindFunc: func(ctx context.Context, call int) (*models.Artwork, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	tab := NewTab(f, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	st, err := tab.Shuffle(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusIdle, st.Status)
	assert.Nil(t, st.Artwork)
	assert.Empty(t, st.Message)
}

func TestSave(t *testing.T) {
	f := &fakeFinder{FindFunc: func(ctx context.Context, call int) (*models.Artwork, error) {
		return artwork("7"), nil
	}}
	p := &fakePersister{}
	o := &fakeOpener{}
	tab := NewTab(f, p, o)

	_, err := tab.Save(context.Background())
	assert.ErrorIs(t, err, ErrNothingShown)

	_, err = tab.Shuffle(context.Background())
	require.NoError(t, err)

	path, err := tab.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/pictures/Title 7 - Artist 7.jpg", path)
	assert.Equal(t, []string{"https://example.org/7.jpg"}, p.urls)
	assert.Equal(t, []string{path}, o.notified)
}

func TestSaveFailureIsDistinctAndKeepsState(t *testing.T) {
	f := &fakeFinder{FindFunc: func(ctx context.Context, call int) (*models.Artwork, error) {
		return artwork("7"), nil
	}}
	diskFull := errors.New("no space left on device")
	tab := NewTab(f, &fakePersister{err: diskFull}, nil)
	_, err := tab.Shuffle(context.Background())
	require.NoError(t, err)
	before := tab.State()

	_, err = tab.Save(context.Background())
	assert.ErrorIs(t, err, ErrSaveFailed)
	assert.ErrorIs(t, err, diskFull)
	assert.NotErrorIs(t, err, finder.ErrNotFound)
	assert.Equal(t, before, tab.State())

	_, err = NewTab(f, nil, nil).Save(context.Background())
	assert.ErrorIs(t, err, ErrNothingShown)
}

func TestOpenSource(t *testing.T) {
	calls := 0
	f := &fakeFinder{FindFunc: func(ctx context.Context, call int) (*models.Artwork, error) {
		calls++
		a := artwork("9")
		if calls > 1 {
			a.SourceURL = ""
		}
		return a, nil
	}}
	o := &fakeOpener{}
	tab := NewTab(f, nil, o)

	_, err := tab.OpenSource()
	assert.ErrorIs(t, err, ErrNothingShown)

	_, err = tab.Shuffle(context.Background())
	require.NoError(t, err)
	url, err := tab.OpenSource()
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/artworks/9", url)
	assert.Equal(t, []string{"https://example.org/artworks/9"}, o.opened)

	_, err = tab.Refresh(context.Background())
	require.NoError(t, err)
	_, err = tab.OpenSource()
	assert.ErrorIs(t, err, ErrNoSourcePage)
}

func TestStateSnapshotIsACopy(t *testing.T) {
	f := &fakeFinder{FindFunc: func(ctx context.Context, call int) (*models.Artwork, error) {
		return artwork("1"), nil
	}}
	tab := NewTab(f, nil, nil)
	_, err := tab.Shuffle(context.Background())
	require.NoError(t, err)

	st := tab.State()
	st.Artwork.Title = "changed"
	assert.Equal(t, "Title 1", tab.State().Artwork.Title)
}
