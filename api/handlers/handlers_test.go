package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mockhub/mockhub-console/api/services"
	"github.com/mockhub/mockhub-console/db"
	"github.com/mockhub/mockhub-console/internal/appconfig"
	"github.com/mockhub/mockhub-console/internal/authn"
	"github.com/mockhub/mockhub-console/internal/console"
	clientsvc "github.com/mockhub/mockhub-console/internal/services"
	"github.com/mockhub/mockhub-console/internal/session"
	"github.com/mockhub/mockhub-console/internal/storage"
	"github.com/mockhub/mockhub-console/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T) (*httptest.Server, *services.Service) {
	t.Helper()
	svc := &services.Service{
		Config: appconfig.Default(),
		DB:     db.NewMemoryRepository(),
		Signer: authn.NewSigner("test-key", time.Hour),
	}
	srv := httptest.NewServer(NewRouter(svc))
	t.Cleanup(srv.Close)
	return srv, svc
}

func newConsole(t *testing.T, baseURL string) *console.Console {
	t.Helper()
	cfg := appconfig.Default()
	cfg.API.BaseURL = baseURL
	cfg.API.Timeout = 5 * time.Second

	c, err := console.New(context.Background(), cfg, storage.NewMemoryStorage(), nil)
	require.NoError(t, err)
	return c
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestRoutes_RequireToken(t *testing.T) {
	srv, _ := newBackend(t)

	for _, path := range []string{"/group", "/endpoint?group_name=x", "/users/me", "/user/me"} {
		status, body := get(t, srv.URL+path)
		assert.Equal(t, http.StatusUnauthorized, status, path)
		assert.JSONEq(t, `{"detail":"Unauthorized"}`, body, path)
	}
}

func TestRoutes_UnknownMockIsNotFound(t *testing.T) {
	srv, _ := newBackend(t)

	status, _ := get(t, srv.URL+"/nobody/orders-api/orders")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestConsole_EndToEnd(t *testing.T) {
	srv, _ := newBackend(t)
	c := newConsole(t, srv.URL)
	ctx := context.Background()

	// anonymous sessions are sent to the login page
	loc, err := c.Enter(ctx, "/groups/7")
	require.NoError(t, err)
	assert.Equal(t, "/login", loc.Path)

	require.NoError(t, c.Session.Register(ctx, session.RegisterInput{Email: "alice@example.com", Password: "secret"}))
	assert.True(t, c.Session.IsAuthenticated())

	current, ok := c.Router.Current()
	require.True(t, ok)
	assert.Equal(t, "/", current.Path)

	user, err := c.Session.FetchUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "/alice/", c.Users.PathPrefix())

	// guests only
	loc, err = c.Enter(ctx, "/register")
	require.NoError(t, err)
	assert.Equal(t, "/", loc.Path)

	group, err := c.Services.Groups.Create(ctx, models.Group{Name: "Orders", Endpoint: "orders-api", IsActive: true})
	require.NoError(t, err)
	require.NotNil(t, group)
	assert.NotZero(t, group.ID)
	assert.True(t, group.IsActive)

	_, err = c.Services.Groups.Create(ctx, models.Group{Name: "Orders again", Endpoint: "orders-api"})
	assert.ErrorIs(t, err, clientsvc.ErrConflict)
	var apiErr *clientsvc.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "A group with this endpoint already exists", apiErr.Message)

	endpoint, err := c.Services.Endpoints.Create(ctx, clientsvc.EndpointInput{
		Path:      "orders/{id}",
		JSONData:  map[string]any{"id": 7, "status": "shipped"},
		GroupName: group.Endpoint,
	})
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, endpoint.Method)
	assert.Equal(t, srv.URL+"/alice/orders-api/orders/{id}", c.Services.Endpoints.PublicURL(*group, *endpoint))

	// the payload is served at the user path
	status, body := get(t, srv.URL+c.Users.UserPath(group.Endpoint, "orders/7"))
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"id":7,"status":"shipped"}`, body)

	listed, err := c.Services.Endpoints.ListByGroup(ctx, group.Endpoint)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	fetched, err := c.Services.Groups.Get(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, fetched.Endpoints, 1)
	assert.Equal(t, endpoint.ID, fetched.Endpoints[0].ID)

	// inactive groups are not served
	toggled, err := c.Services.Groups.ToggleStatus(ctx, group.ID, false)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	status, _ = get(t, srv.URL+c.Users.UserPath(group.Endpoint, "orders/7"))
	assert.Equal(t, http.StatusNotFound, status)

	require.NoError(t, c.Services.Endpoints.Delete(ctx, endpoint.ID))
	_, err = c.Services.Endpoints.Get(ctx, endpoint.ID)
	assert.ErrorIs(t, err, clientsvc.ErrNotFound)

	require.NoError(t, c.Services.Groups.Delete(ctx, group.ID))
	groups, err := c.Services.Groups.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, groups)

	c.Session.Logout(ctx)
	assert.False(t, c.Session.IsAuthenticated())
	current, _ = c.Router.Current()
	assert.Equal(t, "/login", current.Path)

	_, err = c.Services.Groups.List(ctx)
	assert.ErrorIs(t, err, clientsvc.ErrUnauthenticated)
}

func TestConsole_LoginErrors(t *testing.T) {
	srv, _ := newBackend(t)
	c := newConsole(t, srv.URL)
	ctx := context.Background()

	err := c.Session.Login(ctx, "ghost@example.com", "secret")
	require.Error(t, err)
	assert.Equal(t, services.ErrCodeBadCredentials, c.Session.State().Error)

	require.NoError(t, c.Session.Register(ctx, session.RegisterInput{Email: "alice@example.com", Password: "secret"}))
	c.Session.Logout(ctx)

	err = c.Session.Register(ctx, session.RegisterInput{Email: "alice@example.com", Password: "secret"})
	require.Error(t, err)
	assert.Equal(t, services.ErrCodeUserAlreadyExists, c.Session.State().Error)
	assert.False(t, c.Session.IsAuthenticated())
}

func TestConsole_SeededDemo(t *testing.T) {
	srv, svc := newBackend(t)
	_, err := services.SeedDemo(context.Background(), svc.DB)
	require.NoError(t, err)

	c := newConsole(t, srv.URL)
	ctx := context.Background()

	require.NoError(t, c.Session.Login(ctx, services.DemoEmail, services.DemoPassword))
	_, err = c.Session.FetchUser(ctx)
	require.NoError(t, err)

	groups, err := c.Services.Groups.List(ctx)
	require.NoError(t, err)
	assert.Len(t, groups, 5)

	status, body := get(t, srv.URL+c.Users.UserPath("users-api", "users/1"))
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"id":1,"name":"Alice"}`, body)
}
