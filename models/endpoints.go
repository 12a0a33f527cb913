package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// EndpointWire is an endpoint as the backend sends it. Some responses use
// camelCase keys, those land in the *Alt fields.
type EndpointWire struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name,omitempty"`
	Method       string          `json:"method,omitempty"`
	Path         string          `json:"path,omitempty"`
	Description  string          `json:"description,omitempty"`
	JSONData     json.RawMessage `json:"json_data,omitempty"`
	GroupName    string          `json:"group_name,omitempty"`
	CreatedAt    string          `json:"created_at,omitempty"`
	UpdatedAt    string          `json:"updated_at,omitempty"`
	JSONDataAlt  json.RawMessage `json:"jsonData,omitempty"`
	CreatedAtAlt string          `json:"createdAt,omitempty"`
	UpdatedAtAlt string          `json:"updatedAt,omitempty"`
}

// EndpointPayload is the body of endpoint create and update requests.
// JSONData is always a serialized JSON document.
type EndpointPayload struct {
	Path      string `json:"path"`
	Method    string `json:"method"`
	JSONData  string `json:"json_data"`
	GroupName string `json:"group_name,omitempty"`
}

// Endpoint is the client-side representation of an endpoint. JSONData holds
// whatever the server returned: a string or a decoded JSON value.
type Endpoint struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
	JSONData    any    `json:"jsonData"`
	GroupName   string `json:"groupName,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// Endpoint adapts the wire representation, filling in defaults.
func (w EndpointWire) Endpoint() Endpoint {
	method := w.Method
	if method == "" {
		method = http.MethodGet
	}
	name := w.Name
	if name == "" {
		name = fmt.Sprintf("%s %s", method, w.Path)
	}

	raw := w.JSONData
	if isEmptyJSON(raw) {
		raw = w.JSONDataAlt
	}

	return Endpoint{
		ID:          w.ID,
		Name:        name,
		Method:      method,
		Path:        w.Path,
		Description: w.Description,
		JSONData:    DecodeJSONData(raw),
		GroupName:   w.GroupName,
		CreatedAt:   firstNonEmpty(w.CreatedAt, w.CreatedAtAlt),
		UpdatedAt:   firstNonEmpty(w.UpdatedAt, w.UpdatedAtAlt),
	}
}

// Wire converts the endpoint back into the backend schema.
func (e Endpoint) Wire() (EndpointWire, error) {
	raw, err := json.Marshal(e.JSONData)
	if err != nil {
		return EndpointWire{}, fmt.Errorf("failed to encode json data: %w", err)
	}
	return EndpointWire{
		ID:          e.ID,
		Name:        e.Name,
		Method:      e.Method,
		Path:        e.Path,
		Description: e.Description,
		JSONData:    raw,
		GroupName:   e.GroupName,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}, nil
}

// DecodeJSONData turns a json_data value into the client representation.
// A JSON string stays a string, anything else is decoded. Missing data
// becomes an empty object.
func DecodeJSONData(raw json.RawMessage) any {
	if isEmptyJSON(raw) {
		return map[string]any{}
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return v
}

// SerializeJSONData produces the string form of a payload for the wire.
// Strings are passed through untouched, raw JSON is used as is.
func SerializeJSONData(v any) (string, error) {
	switch data := v.(type) {
	case nil:
		return "{}", nil
	case string:
		return data, nil
	case json.RawMessage:
		return string(data), nil
	case []byte:
		return string(data), nil
	}

	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to serialize json data: %w", err)
	}
	return string(b), nil
}

func isEmptyJSON(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
