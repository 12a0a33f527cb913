package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupWireRoundTrip(t *testing.T) {
	wire := GroupWire{
		ID:        4,
		Name:      "Orders",
		Endpoint:  "orders-api",
		Active:    true,
		CreatedAt: "2024-01-01T00:00:00Z",
		UpdatedAt: "2024-02-10T09:45:00Z",
	}

	group := wire.Group()
	assert.True(t, group.IsActive)
	assert.Equal(t, "2024-01-01T00:00:00Z", group.CreatedAt)
	assert.NotNil(t, group.Endpoints, "endpoints should default to an empty slice")
	assert.Empty(t, group.Endpoints)

	back, err := group.Wire()
	require.NoError(t, err)
	assert.Equal(t, wire.Active, back.Active)
	assert.Equal(t, wire.CreatedAt, back.CreatedAt)
	assert.Equal(t, wire.UpdatedAt, back.UpdatedAt)
}

func TestGroupFromJSONWithNestedEndpoints(t *testing.T) {
	body := `{
		"id": 2, "name": "Auth", "endpoint": "auth-api", "description": null,
		"active": false, "created_at": "2024-01-20T09:15:00Z",
		"data": [
			{"id": 4, "method": "POST", "path": "auth/login", "json_data": "{\"ok\":true}"},
			{"id": 5, "path": "auth/me", "jsonData": {"id": 1}, "createdAt": "2024-01-21T00:00:00Z"}
		]
	}`

	var wire GroupWire
	require.NoError(t, json.Unmarshal([]byte(body), &wire))

	group := wire.Group()
	assert.False(t, group.IsActive)
	assert.Equal(t, "", group.Description)
	require.Len(t, group.Endpoints, 2)

	assert.Equal(t, "POST auth/login", group.Endpoints[0].Name)
	assert.Equal(t, `{"ok":true}`, group.Endpoints[0].JSONData, "string payloads stay strings")

	assert.Equal(t, "GET", group.Endpoints[1].Method)
	assert.Equal(t, map[string]any{"id": float64(1)}, group.Endpoints[1].JSONData)
	assert.Equal(t, "2024-01-21T00:00:00Z", group.Endpoints[1].CreatedAt)
}

func TestGroupPayload(t *testing.T) {
	g := Group{Name: "Orders", Endpoint: "orders-api", IsActive: true}

	create, err := json.Marshal(g.Payload(true))
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Orders","endpoint":"orders-api","active":true,"description":""}`, string(create))

	update, err := json.Marshal(g.Payload(false))
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Orders","active":true,"description":""}`, string(update))
}

func TestSerializeJSONData(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{name: "object", input: map[string]any{"a": 1}, expected: `{"a":1}`},
		{name: "string passthrough", input: `{"a": 1}`, expected: `{"a": 1}`},
		{name: "raw message", input: json.RawMessage(`[1,2]`), expected: `[1,2]`},
		{name: "nil", input: nil, expected: `{}`},
		{name: "list", input: []string{"x"}, expected: `["x"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := SerializeJSONData(tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestDecodeJSONData(t *testing.T) {
	assert.Equal(t, map[string]any{}, DecodeJSONData(nil))
	assert.Equal(t, map[string]any{}, DecodeJSONData(json.RawMessage("null")))
	assert.Equal(t, "plain", DecodeJSONData(json.RawMessage(`"plain"`)))
	assert.Equal(t, []any{float64(1)}, DecodeJSONData(json.RawMessage(`[1]`)))
}

func TestErrorResponseSummary(t *testing.T) {
	detail := ParseErrorResponse([]byte(`{"detail":"LOGIN_BAD_CREDENTIALS"}`))
	assert.Equal(t, "LOGIN_BAD_CREDENTIALS", detail.Summary())

	fields := ParseErrorResponse([]byte(`{"detail":[{"loc":["body","name"],"msg":"field required"},{"msg":"too short"}]}`))
	assert.Len(t, fields.FieldErrors(), 2)
	assert.Equal(t, "field required, too short", fields.Summary())

	message := ParseErrorResponse([]byte(`{"message":"boom"}`))
	assert.Equal(t, "boom", message.Summary())

	assert.Equal(t, "", ParseErrorResponse([]byte("not json")).Summary())
}

func TestUserIDAcceptsNumberOrString(t *testing.T) {
	tests := []struct {
		name string
		body string
		want UserID
	}{
		{"number", `{"id":42,"email":"alice@example.com"}`, "42"},
		{"uuid", `{"id":"4f1c2a9e-7b1d-4c1e-9a51-0d2b6c3e8f10","email":"alice@example.com"}`, "4f1c2a9e-7b1d-4c1e-9a51-0d2b6c3e8f10"},
		{"null", `{"id":null,"email":"alice@example.com"}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var u User
			require.NoError(t, json.Unmarshal([]byte(tt.body), &u))
			assert.Equal(t, tt.want, u.ID)
			assert.Equal(t, "alice@example.com", u.Email)
		})
	}

	var u User
	assert.Error(t, json.Unmarshal([]byte(`{"id":true}`), &u))
}

func TestUserIDMarshal(t *testing.T) {
	b, err := json.Marshal(User{ID: NewUserID(7)})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"id":7`)

	b, err = json.Marshal(User{ID: "4f1c2a9e"})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"id":"4f1c2a9e"`)
}

func TestUserRecordProfile(t *testing.T) {
	rec := UserRecord{User: User{Email: "alice@example.com"}, ID: 3, PasswordHash: "hash"}

	profile := rec.Profile()
	assert.Equal(t, UserID("3"), profile.ID)

	b, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "hash")
}
