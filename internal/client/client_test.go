package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/mockhub/mockhub-console/internal/appconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	mu          sync.Mutex
	token       string
	invalidated int
}

func (f *fakeSession) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeSession) Invalidate(_ context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	f.invalidated++
}

type fakeNavigator struct {
	mu    sync.Mutex
	paths []string
}

func (f *fakeNavigator) Navigate(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, path)
	return nil
}

func newTestClient(serverURL string, session *fakeSession, nav *fakeNavigator) *Client {
	return NewClient(appconfig.APIConfig{BaseURL: serverURL + "/", Timeout: 2 * time.Second}, "/login", session, nav, nil)
}

func TestDoAttachesBearer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/group", r.URL.Path)
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{"status":"success","data":[]}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, &fakeSession{token: "abc"}, &fakeNavigator{})
	resp, err := c.Do(context.Background(), http.MethodGet, "/group", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)

	var body map[string]any
	require.NoError(t, resp.Decode(&body))
	assert.Equal(t, "success", body["status"])
}

func TestDoWithoutToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := newTestClient(server.URL, &fakeSession{}, &fakeNavigator{})
	_, err := c.Do(context.Background(), http.MethodGet, "group", nil)
	assert.NoError(t, err)
}

func TestDoBearerOverride(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer old", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := newTestClient(server.URL, &fakeSession{}, &fakeNavigator{})
	_, err := c.Do(context.Background(), http.MethodPost, "/auth/jwt/logout", nil, WithBearer("old"))
	assert.NoError(t, err)
}

func TestDoFormBodyAndQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.Equal(t, "orders", r.URL.Query().Get("group_name"))
		assert.Equal(t, "yes", r.Header.Get("X-Trace"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "a@b.c", r.PostForm.Get("username"))
		assert.Equal(t, "secret", r.PostForm.Get("password"))
		_, _ = w.Write([]byte(`{"access_token":"t","token_type":"bearer"}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, &fakeSession{}, &fakeNavigator{})
	form := url.Values{"username": {"a@b.c"}, "password": {"secret"}}
	_, err := c.Do(context.Background(), http.MethodPost, "/auth/jwt/login", form,
		WithQuery(url.Values{"group_name": {"orders"}}),
		WithHeader("X-Trace", "yes"),
	)
	assert.NoError(t, err)
}

func TestDoJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"name":"Orders"}`, string(body))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	c := newTestClient(server.URL, &fakeSession{}, &fakeNavigator{})
	resp, err := c.Do(context.Background(), http.MethodPost, "/group", map[string]string{"name": "Orders"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.Status)
}

func TestDoUnauthorizedInvalidatesSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Unauthorized"}`))
	}))
	defer server.Close()

	session := &fakeSession{token: "stale"}
	nav := &fakeNavigator{}
	c := newTestClient(server.URL, session, nav)

	_, err := c.Do(context.Background(), http.MethodGet, "/group", nil)
	require.Error(t, err)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusUnauthorized, httpErr.Status)
	assert.Equal(t, "Unauthorized", DetailMessage(err, "fallback"))

	assert.Equal(t, 1, session.invalidated)
	assert.Empty(t, session.Token())
	assert.Equal(t, []string{"/login"}, nav.paths)
}

func TestDoUnauthorizedWithoutInterceptor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	session := &fakeSession{token: "stale"}
	nav := &fakeNavigator{}
	c := newTestClient(server.URL, session, nav)

	_, err := c.Do(context.Background(), http.MethodPost, "/auth/jwt/logout", nil, WithoutAuthInterceptor())
	assert.Error(t, err)
	assert.Equal(t, 0, session.invalidated)
	assert.Empty(t, nav.paths)
}

func TestDoOtherStatusesPassThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Group not found"}`))
	}))
	defer server.Close()

	session := &fakeSession{token: "abc"}
	c := newTestClient(server.URL, session, &fakeNavigator{})

	_, err := c.Do(context.Background(), http.MethodGet, "/group/9", nil)
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.Equal(t, "Group not found", httpErr.Detail().Summary())
	assert.Equal(t, 0, session.invalidated)
}

func TestDoTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close()

	c := newTestClient(serverURL, &fakeSession{}, &fakeNavigator{})
	_, err := c.Do(context.Background(), http.MethodGet, "/group", nil)

	var transportErr *TransportError
	assert.True(t, errors.As(err, &transportErr))
	assert.Equal(t, "fallback", DetailMessage(err, "fallback"))
}

func TestDoTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	c := newTestClient(server.URL, &fakeSession{}, &fakeNavigator{})
	c.Timeout = 50 * time.Millisecond

	_, err := c.Do(context.Background(), http.MethodGet, "/group", nil)
	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestDoEncodeFailure(t *testing.T) {
	c := newTestClient("http://localhost", &fakeSession{}, &fakeNavigator{})
	_, err := c.Do(context.Background(), http.MethodPost, "/group", map[string]any{"bad": make(chan int)})
	require.Error(t, err)

	var transportErr *TransportError
	assert.False(t, errors.As(err, &transportErr))
}
