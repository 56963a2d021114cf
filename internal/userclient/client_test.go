package userclient

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/user", time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_IncrementPostCount(t *testing.T) {
	var gotMethod, gotPath, gotUser string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath, gotUser = r.Method, r.URL.Path, r.URL.Query().Get("userId")
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	ok, err := c.IncrementPostCount(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/user/post-count", gotPath)
	assert.Equal(t, "user-1", gotUser)
}

func TestClient_DecrementPostCount_MissingSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		_, _ = w.Write([]byte(`{}`))
	})

	ok, err := c.DecrementPostCount(context.Background(), "user-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClient_Subscriptions(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/subscription", r.URL.Path)
		_, _ = w.Write([]byte(`{"subscriptionIds":["a","b"]}`))
	})

	ids, err := c.Subscriptions(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestClient_Subscriptions_Absent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	ids, err := c.Subscriptions(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Nil(t, ids)
}

func TestClient_ErrorStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Subscriptions(context.Background(), "user-1")
	assert.Error(t, err)
}
