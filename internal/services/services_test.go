package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mockhub/mockhub-console/internal/appconfig"
	"github.com/mockhub/mockhub-console/internal/client"
	"github.com/mockhub/mockhub-console/internal/userpath"
	"github.com/mockhub/mockhub-console/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedUser struct{ user *models.User }

func (f fixedUser) CurrentUser() *models.User { return f.user }

func newTestService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := client.NewClient(appconfig.APIConfig{BaseURL: server.URL, Timeout: 5 * time.Second}, "", nil, nil, nil)
	users := userpath.New(fixedUser{&models.User{Name: "alice"}})
	return New(c, "http://localhost:8086/", users, nil)
}

func readJSON(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	body, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(body, &m))
	return m
}

func TestListGroups(t *testing.T) {
	bodies := []string{
		`[{"id":1,"name":"Orders","endpoint":"orders-api","active":true,"created_at":"2024-01-01T00:00:00Z"}]`,
		`{"status":"success","data":[{"id":1,"name":"Orders","endpoint":"orders-api","active":true,"created_at":"2024-01-01T00:00:00Z"}]}`,
	}

	for _, body := range bodies {
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/group", r.URL.Path)
			_, _ = w.Write([]byte(body))
		})

		groups, err := svc.Groups.List(context.Background())
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Equal(t, "orders-api", groups[0].Endpoint)
		assert.True(t, groups[0].IsActive)
		assert.Equal(t, "2024-01-01T00:00:00Z", groups[0].CreatedAt)
		assert.NotNil(t, groups[0].Endpoints)
		assert.Empty(t, groups[0].Endpoints)
	}
}

func TestListGroupsEmptyEnvelope(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"success"}`))
	})

	groups, err := svc.Groups.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestGetGroupWithEndpoints(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/group/7", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":7,"name":"Orders","endpoint":"orders-api","active":false,"data":[
			{"id":1,"method":"POST","path":"orders","json_data":"{\"ok\":true}"},
			{"id":2,"path":"orders/1","json_data":{"id":1}},
			{"id":3,"path":"empty"}
		]}`))
	})

	g, err := svc.Groups.Get(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.False(t, g.IsActive)
	require.Len(t, g.Endpoints, 3)

	assert.Equal(t, "POST orders", g.Endpoints[0].Name)
	assert.Equal(t, `{"ok":true}`, g.Endpoints[0].JSONData)
	assert.Equal(t, "GET", g.Endpoints[1].Method)
	assert.Equal(t, map[string]any{"id": float64(1)}, g.Endpoints[1].JSONData)
	assert.Equal(t, map[string]any{}, g.Endpoints[2].JSONData)
}

func TestCreateGroup(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		body := readJSON(t, r)
		assert.Equal(t, "orders-api", body["endpoint"])
		assert.Equal(t, true, body["active"])
		assert.NotContains(t, body, "isActive")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"status":"success","data":{"id":3,"name":"Orders","endpoint":"orders-api","active":true}}`))
	})

	g, err := svc.Groups.Create(context.Background(), models.Group{Name: "Orders", Endpoint: "orders-api", IsActive: true})
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.Equal(t, int64(3), g.ID)
}

func TestCreateGroupWithoutEcho(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"success"}`))
	})

	g, err := svc.Groups.Create(context.Background(), models.Group{Name: "Orders", Endpoint: "orders-api"})
	assert.NoError(t, err)
	assert.Nil(t, g)
}

func TestToggleStatusKeepsFields(t *testing.T) {
	var put map[string]any
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/group/7", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"id":7,"name":"Orders","endpoint":"orders-api","description":"orders","active":true}`))
		case http.MethodPut:
			put = readJSON(t, r)
			_, _ = w.Write([]byte(`{"status":"success","data":{"id":7,"name":"Orders","endpoint":"orders-api","description":"orders","active":false}}`))
		}
	})

	g, err := svc.Groups.ToggleStatus(context.Background(), 7, false)
	require.NoError(t, err)
	assert.False(t, g.IsActive)

	assert.Equal(t, "Orders", put["name"])
	assert.Equal(t, "orders", put["description"])
	assert.Equal(t, false, put["active"])
	assert.NotContains(t, put, "endpoint")
}

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		kind    Kind
		message string
		is      error
	}{
		{"bad request detail", 400, `{"detail":"Name is required"}`, KindBadRequest, "Name is required", ErrBadRequest},
		{"bad request message", 400, `{"message":"Broken"}`, KindBadRequest, "Broken", ErrBadRequest},
		{"bad request empty", 400, ``, KindBadRequest, "Invalid request data", ErrBadRequest},
		{"unauthenticated", 401, ``, KindUnauthenticated, "Not authenticated. Please log in again", ErrUnauthenticated},
		{"forbidden", 403, ``, KindForbidden, "Access denied", ErrForbidden},
		{"not found", 404, `{"detail":"x"}`, KindNotFound, "Group not found", ErrNotFound},
		{"conflict", 409, ``, KindConflict, "A group with this endpoint already exists", ErrConflict},
		{"validation fields", 422, `{"detail":[{"loc":["body","name"],"msg":"field required"},{"loc":["body","endpoint"],"msg":"too short"}]}`, KindValidation, "field required, too short", ErrValidation},
		{"validation plain", 422, `{}`, KindValidation, "Data validation failed", ErrValidation},
		{"server", 500, `{"detail":"boom"}`, KindServer, "Internal server error", ErrServer},
		{"other with detail", 418, `{"detail":"teapot"}`, KindUnknown, "teapot", nil},
		{"other without detail", 502, ``, KindUnknown, "Request failed", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := svc.Groups.Get(context.Background(), 1)
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.kind, apiErr.Kind)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.message, apiErr.Error())
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}

			var httpErr *client.HTTPError
			assert.True(t, errors.As(err, &httpErr), "underlying error must stay reachable")
		})
	}
}

func TestEndpointMessages(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusConflict)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := svc.Endpoints.Get(context.Background(), 1)
	assert.EqualError(t, err, "Endpoint not found")

	_, err = svc.Endpoints.Create(context.Background(), EndpointInput{Path: "orders", GroupName: "orders-api"})
	assert.EqualError(t, err, "An endpoint with this path already exists")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestConnectivityError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	c := client.NewClient(appconfig.APIConfig{BaseURL: server.URL}, "", nil, nil, nil)
	svc := New(c, server.URL, nil, nil)

	_, err := svc.Groups.List(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindConnectivity, apiErr.Kind)
	assert.Equal(t, "Server is not responding. Check your connection", apiErr.Message)
	assert.ErrorIs(t, err, ErrConnectivity)
}

func TestCreateEndpointSerializesJSONData(t *testing.T) {
	tests := []struct {
		name string
		data any
		want string
	}{
		{"object", map[string]any{"a": 1}, `{"a":1}`},
		{"string passes through", `{"a": 1}`, `{"a": 1}`},
		{"nil", nil, `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/endpoint", r.URL.Path)
				body := readJSON(t, r)
				assert.Equal(t, tt.want, body["json_data"])
				assert.Equal(t, "orders-api", body["group_name"])
				assert.Equal(t, "GET", body["method"])
				w.WriteHeader(http.StatusCreated)
				_, _ = w.Write([]byte(`{"id":5,"path":"orders","method":"GET","json_data":` + string(mustQuote(tt.want)) + `}`))
			})

			e, err := svc.Endpoints.Create(context.Background(), EndpointInput{Path: "orders", JSONData: tt.data, GroupName: "orders-api"})
			require.NoError(t, err)
			assert.Equal(t, int64(5), e.ID)
			assert.Equal(t, tt.want, e.JSONData)
		})
	}
}

func mustQuote(s string) []byte {
	b, _ := json.Marshal(s)
	return b
}

func TestUpdateEndpointOmitsGroup(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/endpoint/5", r.URL.Path)
		body := readJSON(t, r)
		assert.NotContains(t, body, "group_name")
		assert.Equal(t, "DELETE", body["method"])
		_, _ = w.Write([]byte(`{"id":5,"path":"orders","method":"DELETE","jsonData":{"deleted":true}}`))
	})

	e, err := svc.Endpoints.Update(context.Background(), 5, EndpointInput{Path: "orders", Method: "DELETE", JSONData: map[string]bool{"deleted": true}, GroupName: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"deleted": true}, e.JSONData)
}

func TestListEndpointsByGroup(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/endpoint", r.URL.Path)
		assert.Equal(t, "orders api", r.URL.Query().Get("group_name"))
		_, _ = w.Write([]byte(`[{"id":1,"path":"orders"},{"id":2,"path":"orders/1","method":"PUT"}]`))
	})

	endpoints, err := svc.Endpoints.ListByGroup(context.Background(), "orders api")
	require.NoError(t, err)
	require.Len(t, endpoints, 2)
	assert.Equal(t, "GET orders", endpoints[0].Name)
	assert.Equal(t, "PUT orders/1", endpoints[1].Name)
}

func TestDeleteEndpoint(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})
	assert.NoError(t, svc.Endpoints.Delete(context.Background(), 5))
}

func TestPublicURL(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {})

	url := svc.Endpoints.PublicURL(models.Group{Endpoint: "orders-api"}, models.Endpoint{Path: "/orders"})
	assert.Equal(t, "http://localhost:8086/alice/orders-api/orders", url)
}
