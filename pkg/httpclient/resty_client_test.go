package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestyClientDoSendsMethodHeadersAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"a":1}`, string(body))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`ok`))
	}))
	defer srv.Close()

	c := NewRestyClient(2 * time.Second)
	resp, err := c.Do(context.Background(), &Request{
		Method:  http.MethodPost,
		URL:     srv.URL,
		Headers: map[string]string{"Authorization": "secret", "Content-Type": "application/json"},
		Body:    []byte(`{"a":1}`),
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode())
	assert.Equal(t, "ok", string(resp.Body()))
}

func TestRestyClientGetReturnsNon2xxWithoutError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	resp, err := NewRestyClient(0).Get(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode())
}

func TestRestyClientDoRejectsNilRequest(t *testing.T) {
	_, err := NewRestyClient(time.Second).Do(context.Background(), nil)
	assert.Error(t, err)
}

func TestNewRestyClientFromRejectsNil(t *testing.T) {
	_, err := NewRestyClientFrom(nil)
	assert.Error(t, err)

	c, err := NewRestyClientFrom(NewRestyHTTPClient(time.Second))
	require.NoError(t, err)
	assert.NotNil(t, c)
}
