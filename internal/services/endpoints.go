package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mockhub/mockhub-console/internal/client"
	"github.com/mockhub/mockhub-console/models"
	"github.com/rs/zerolog"
)

// UserPaths builds URLs under the current user's prefix.
type UserPaths interface {
	FullURL(baseURL, endpoint, path string) string
}

// EndpointInput holds the writable fields of an endpoint. JSONData may be
// a string, raw JSON or any value that encodes to JSON.
type EndpointInput struct {
	Path      string
	Method    string
	JSONData  any
	GroupName string
}

func (in EndpointInput) payload(withGroup bool) (models.EndpointPayload, error) {
	data, err := models.SerializeJSONData(in.JSONData)
	if err != nil {
		return models.EndpointPayload{}, err
	}
	method := in.Method
	if method == "" {
		method = http.MethodGet
	}
	p := models.EndpointPayload{
		Path:     in.Path,
		Method:   method,
		JSONData: data,
	}
	if withGroup {
		p.GroupName = in.GroupName
	}
	return p, nil
}

// EndpointService manages the endpoints of a group.
type EndpointService struct {
	API     Requester
	BaseURL string
	Users   UserPaths
	Log     *zerolog.Logger
}

func endpointPath(id int64) string {
	return fmt.Sprintf("/endpoint/%d", id)
}

// ListByGroup returns the endpoints of the group with the given name.
func (s *EndpointService) ListByGroup(ctx context.Context, groupName string) ([]models.Endpoint, error) {
	resp, err := s.API.Do(ctx, http.MethodGet, "/endpoint", nil, client.WithQuery(url.Values{"group_name": {groupName}}))
	if err != nil {
		return nil, classify(err, endpointMessages)
	}

	wires, err := decodeData[[]models.EndpointWire](resp)
	if err != nil {
		return nil, classify(err, endpointMessages)
	}

	endpoints := []models.Endpoint{}
	if wires == nil {
		return endpoints, nil
	}
	for _, w := range *wires {
		endpoints = append(endpoints, w.Endpoint())
	}
	return endpoints, nil
}

func (s *EndpointService) Get(ctx context.Context, id int64) (*models.Endpoint, error) {
	resp, err := s.API.Do(ctx, http.MethodGet, endpointPath(id), nil)
	if err != nil {
		return nil, classify(err, endpointMessages)
	}
	return s.decode(resp)
}

// Create adds an endpoint to the group named in the input.
func (s *EndpointService) Create(ctx context.Context, in EndpointInput) (*models.Endpoint, error) {
	body, err := in.payload(true)
	if err != nil {
		return nil, classify(err, endpointMessages)
	}

	resp, err := s.API.Do(ctx, http.MethodPost, "/endpoint", body)
	if err != nil {
		return nil, classify(err, endpointMessages)
	}
	s.Log.Info().Str("group", in.GroupName).Str("method", body.Method).Str("path", in.Path).Msg("endpoint created")
	return s.decode(resp)
}

// Update replaces path, method and payload. An endpoint cannot move to
// another group.
func (s *EndpointService) Update(ctx context.Context, id int64, in EndpointInput) (*models.Endpoint, error) {
	body, err := in.payload(false)
	if err != nil {
		return nil, classify(err, endpointMessages)
	}

	resp, err := s.API.Do(ctx, http.MethodPut, endpointPath(id), body)
	if err != nil {
		return nil, classify(err, endpointMessages)
	}
	return s.decode(resp)
}

func (s *EndpointService) Delete(ctx context.Context, id int64) error {
	if _, err := s.API.Do(ctx, http.MethodDelete, endpointPath(id), nil); err != nil {
		return classify(err, endpointMessages)
	}
	s.Log.Info().Int64("id", id).Msg("endpoint deleted")
	return nil
}

// PublicURL is the address at which the backend serves the endpoint's
// payload for the current user.
func (s *EndpointService) PublicURL(group models.Group, e models.Endpoint) string {
	if s.Users == nil {
		return ""
	}
	return s.Users.FullURL(s.BaseURL, group.Endpoint, e.Path)
}

func (s *EndpointService) decode(resp *client.Response) (*models.Endpoint, error) {
	wire, err := decodeData[models.EndpointWire](resp)
	if err != nil {
		return nil, classify(err, endpointMessages)
	}
	if wire == nil {
		return nil, nil
	}
	e := wire.Endpoint()
	return &e, nil
}
