package publishers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Adda-Baaj/boticord-go/pkg/boticord"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPPublisherSuccess(t *testing.T) {
	var received []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "1", r.Header.Get("X-Test"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		received, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	pub, err := newHTTPPublisher(context.Background(), PublisherConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPPublisherConfig{
			URL:            srv.URL,
			Method:         http.MethodPost,
			Headers:        map[string]string{"X-Test": "1"},
			TimeoutSeconds: 2,
		},
	}, nil)
	require.NoError(t, err)

	evt := NewEvent("724663360934772797", 1, boticord.BotStats{Servers: 2514, Shards: 3, Users: 338250})
	require.NoError(t, pub.Publish(context.Background(), evt))

	var got Event
	require.NoError(t, json.Unmarshal(received, &got))
	assert.Equal(t, evt.BotID, got.BotID)
	assert.Equal(t, evt.Stats, got.Stats)
	assert.Equal(t, 1, got.APIVersion)
}

func TestHTTPPublisherErrorOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer srv.Close()

	pub, err := newHTTPPublisher(context.Background(), PublisherConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPPublisherConfig{
			URL:            srv.URL,
			Method:         http.MethodPost,
			TimeoutSeconds: 1,
		},
	}, nil)
	require.NoError(t, err)

	err = pub.Publish(context.Background(), Event{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestHTTPPublisherRequiresConfig(t *testing.T) {
	_, err := newHTTPPublisher(context.Background(), PublisherConfig{ID: "hook", Type: TypeHTTP}, nil)
	assert.Error(t, err)
}
