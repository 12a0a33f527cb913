package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/mockhub/mockhub-console/internal/client"
	"github.com/mockhub/mockhub-console/models"
	"github.com/rs/zerolog"
)

// Requester sends requests to the backend.
type Requester interface {
	Do(ctx context.Context, method, path string, body any, opts ...client.RequestOption) (*client.Response, error)
}

// Service bundles the resource services sharing one client.
type Service struct {
	Groups    *GroupService
	Endpoints *EndpointService
}

func New(api Requester, baseURL string, users UserPaths, log *zerolog.Logger) *Service {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &Service{
		Groups:    &GroupService{API: api, Log: log},
		Endpoints: &EndpointService{API: api, BaseURL: baseURL, Users: users, Log: log},
	}
}

// unwrap returns the payload of a response. Bodies shaped like
// {status, data} are unwrapped, anything else is returned as is. A nil
// payload means the server sent no data.
func unwrap(body []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '{' {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &probe); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		if _, ok := probe["status"]; ok {
			var env models.Envelope
			if err := json.Unmarshal(trimmed, &env); err != nil {
				return nil, fmt.Errorf("failed to decode envelope: %w", err)
			}
			data := bytes.TrimSpace(env.Data)
			if len(data) == 0 || bytes.Equal(data, []byte("null")) {
				return nil, nil
			}
			return data, nil
		}
	}
	return trimmed, nil
}

// decodeData unwraps and decodes a response payload into a T, returning
// nil when the server sent no data.
func decodeData[T any](resp *client.Response) (*T, error) {
	raw, err := unwrap(resp.Body)
	if err != nil || raw == nil {
		return nil, err
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &v, nil
}
