package poster

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Adda-Baaj/boticord-go/internal/gateway"
	"github.com/Adda-Baaj/boticord-go/internal/storage"
	"github.com/Adda-Baaj/boticord-go/pkg/boticord"
	"github.com/Adda-Baaj/boticord-go/pkg/publishers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	stats boticord.BotStats
	err   error
}

func (f fakeSource) Stats(context.Context) (boticord.BotStats, error) { return f.stats, f.err }

type fakeClient struct {
	mu     sync.Mutex
	posted []boticord.BotStats
	err    error
}

func (f *fakeClient) PostBotStats(_ context.Context, stats boticord.BotStats) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posted = append(f.posted, stats)
	return f.err
}

func (f *fakeClient) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.posted)
}

type fakeDeduper struct {
	seen map[string]bool
}

func (f *fakeDeduper) SeenStats(key string) (bool, error) { return f.seen[key], nil }
func (f *fakeDeduper) MarkStats(key string) error {
	f.seen[key] = true
	return nil
}

type fakeSink struct {
	events []publishers.Event
	err    error
}

func (f *fakeSink) Publish(_ context.Context, evt publishers.Event) (int, error) {
	f.events = append(f.events, evt)
	if f.err != nil {
		return 0, f.err
	}
	return 1, nil
}

var sampleStats = boticord.BotStats{Servers: 2514, Shards: 3, Users: 338250}

func TestRunOncePostsMarksAndPublishes(t *testing.T) {
	client := &fakeClient{}
	dedupe := &fakeDeduper{seen: map[string]bool{}}
	sink := &fakeSink{}
	svc := NewService("724663360934772797", 1, fakeSource{stats: sampleStats}, client, dedupe, sink, nil)

	res, err := svc.RunOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Posted)
	assert.Equal(t, 1, res.Published)
	assert.Equal(t, []boticord.BotStats{sampleStats}, client.posted)
	assert.True(t, dedupe.seen["724663360934772797:2514:3:338250"])

	require.Len(t, sink.events, 1)
	assert.Equal(t, "724663360934772797", sink.events[0].BotID)
	assert.Equal(t, sampleStats, sink.events[0].Stats)
}

func TestRunOnceSkipsUnchangedStats(t *testing.T) {
	client := &fakeClient{}
	dedupe := &fakeDeduper{seen: map[string]bool{}}
	svc := NewService("1", 1, fakeSource{stats: sampleStats}, client, dedupe, nil, nil)

	_, err := svc.RunOnce(context.Background())
	require.NoError(t, err)
	res, err := svc.RunOnce(context.Background())
	require.NoError(t, err)

	assert.False(t, res.Posted)
	assert.Equal(t, 1, client.count())
}

func TestRunOnceSourceError(t *testing.T) {
	client := &fakeClient{}
	svc := NewService("1", 1, fakeSource{err: errors.New("gateway down")}, client, nil, nil, nil)

	_, err := svc.RunOnce(context.Background())
	require.Error(t, err)
	assert.Zero(t, client.count())
}

func TestRunOncePostFailureIsNotMarked(t *testing.T) {
	client := &fakeClient{err: errors.New("boom")}
	dedupe := &fakeDeduper{seen: map[string]bool{}}
	sink := &fakeSink{}
	svc := NewService("1", 1, fakeSource{stats: sampleStats}, client, dedupe, sink, nil)

	res, err := svc.RunOnce(context.Background())
	require.Error(t, err)
	assert.False(t, res.Posted)
	assert.Empty(t, dedupe.seen)
	assert.Empty(t, sink.events)
}

func TestRunOnceSinkFailureDoesNotFailPost(t *testing.T) {
	client := &fakeClient{}
	sink := &fakeSink{err: errors.New("queue unavailable")}
	svc := NewService("1", 1, fakeSource{stats: sampleStats}, client, nil, sink, nil)

	res, err := svc.RunOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Posted)
	assert.Zero(t, res.Published)
}

func TestRunOnceAgainstBoticordServerWithBoltStore(t *testing.T) {
	var (
		mu     sync.Mutex
		bodies []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/stats", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("Authorization"))
		raw, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(raw))
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := boticord.New("secret", 1, boticord.WithBaseURL(srv.URL))
	require.NoError(t, err)

	store, err := storage.NewStore("bbolt", filepath.Join(t.TempDir(), "stats.db"), storage.Options{})
	require.NoError(t, err)
	defer store.Close()

	svc := NewService("1", 1, gateway.StaticSource{Value: sampleStats}, client, store, nil, nil)
	for i := 0; i < 3; i++ {
		_, err := svc.RunOnce(context.Background())
		require.NoError(t, err)
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, bodies, 1)
	assert.JSONEq(t, `{"servers":2514,"shards":3,"users":338250}`, bodies[0])
}

func TestRunPostsImmediatelyAndStopsOnCancel(t *testing.T) {
	client := &fakeClient{}
	svc := NewService("1", 1, fakeSource{stats: sampleStats}, client, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx, 10*time.Millisecond) }()

	require.Eventually(t, func() bool { return client.count() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("poster loop did not exit")
	}
}

func TestRunRepostsUnchangedStatsEveryInterval(t *testing.T) {
	store, err := storage.NewStore("memory", "", storage.Options{
		StatsTTL:        30 * time.Millisecond,
		CleanupInterval: 10 * time.Millisecond,
	})
	require.NoError(t, err)
	defer store.Close()

	client := &fakeClient{}
	svc := NewService("1", 1, fakeSource{stats: sampleStats}, client, store, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = svc.Run(ctx, 40*time.Millisecond) }()

	require.Eventually(t, func() bool { return client.count() >= 3 }, 2*time.Second, 5*time.Millisecond)

	client.mu.Lock()
	defer client.mu.Unlock()
	for _, posted := range client.posted {
		assert.Equal(t, sampleStats, posted)
	}
}

func TestRunRejectsNonPositiveInterval(t *testing.T) {
	svc := NewService("1", 1, fakeSource{}, &fakeClient{}, nil, nil, nil)
	assert.Error(t, svc.Run(context.Background(), 0))
}
