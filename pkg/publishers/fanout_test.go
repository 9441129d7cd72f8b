package publishers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPublisher struct {
	id       string
	typ      string
	err      error
	delay    time.Duration
	calls    atomic.Int32
	closed   bool
	closeErr error
}

func (s *stubPublisher) ID() string   { return s.id }
func (s *stubPublisher) Type() string { return s.typ }
func (s *stubPublisher) Publish(context.Context, Event) error {
	s.calls.Add(1)
	time.Sleep(s.delay)
	return s.err
}
func (s *stubPublisher) Close() error {
	s.closed = true
	return s.closeErr
}

func TestFanoutPublishAggregatesErrors(t *testing.T) {
	ok := &stubPublisher{id: "ok", typ: "http"}
	bad := &stubPublisher{id: "bad", typ: "sqs", err: errors.New("failed")}
	fanout := NewFanout([]Publisher{ok, nil, bad}, nil)

	assert.Equal(t, 2, fanout.Size())
	assert.Equal(t, []map[string]string{{"id": "ok", "type": "http"}, {"id": "bad", "type": "sqs"}}, fanout.Describe())

	count, err := fanout.Publish(context.Background(), Event{})
	assert.Equal(t, 1, count)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqs publisher[bad]")
	assert.Equal(t, int32(1), ok.calls.Load())
	assert.Equal(t, int32(1), bad.calls.Load())
}

func TestFanoutPublishesConcurrently(t *testing.T) {
	var pubs []Publisher
	for _, id := range []string{"a", "b", "c", "d"} {
		pubs = append(pubs, &stubPublisher{id: id, typ: "pubsub", delay: 100 * time.Millisecond})
	}

	start := time.Now()
	count, err := NewFanout(pubs, nil).Publish(context.Background(), sampleEvent())
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.Less(t, time.Since(start), 350*time.Millisecond)
}

func TestFanoutNilAndEmpty(t *testing.T) {
	var f *Fanout
	count, err := f.Publish(context.Background(), Event{})
	assert.Zero(t, count)
	assert.NoError(t, err)
	assert.Zero(t, f.Size())
	assert.NoError(t, f.Close())
}

func TestFanoutCloseClosesClosers(t *testing.T) {
	a := &stubPublisher{id: "a", typ: "pubsub"}
	b := &stubPublisher{id: "b", typ: "pubsub", closeErr: errors.New("stuck")}
	err := NewFanout([]Publisher{a, b}, nil).Close()
	require.Error(t, err)
	assert.True(t, a.closed)
	assert.True(t, b.closed)
}

func TestBuildSkipsDisabledEntries(t *testing.T) {
	off := false
	pubs, err := Build(context.Background(), []PublisherConfig{
		{ID: "hook", Type: TypeHTTP, HTTP: &HTTPPublisherConfig{URL: "https://example.com"}},
		{ID: "paused", Type: TypeHTTP, Enabled: &off, HTTP: &HTTPPublisherConfig{URL: "https://example.com/2"}},
	}, nil)
	require.NoError(t, err)
	require.Len(t, pubs, 1)
	assert.Equal(t, "hook", pubs[0].ID())
	assert.Equal(t, TypeHTTP, pubs[0].Type())
}

func TestBuildUnknownTypeClosesBuiltPublishers(t *testing.T) {
	built := &stubPublisher{id: "first", typ: "stub"}
	table := map[string]Builder{
		"stub": func(context.Context, PublisherConfig, Logger) (Publisher, error) { return built, nil },
	}

	_, err := buildWith(context.Background(), table, []PublisherConfig{
		{ID: "first", Type: "stub"},
		{ID: "kafka", Type: "kafka"},
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported type "kafka"`)
	assert.True(t, built.closed)
}
