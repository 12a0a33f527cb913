package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mockhub/mockhub-console/internal/client"
	"github.com/mockhub/mockhub-console/models"
	"github.com/rs/zerolog"
)

// GroupService manages API groups.
type GroupService struct {
	API Requester
	Log *zerolog.Logger
}

func groupPath(id int64) string {
	return fmt.Sprintf("/group/%d", id)
}

// List returns all groups of the user. Endpoints are not populated.
func (s *GroupService) List(ctx context.Context) ([]models.Group, error) {
	resp, err := s.API.Do(ctx, http.MethodGet, "/group", nil)
	if err != nil {
		return nil, classify(err, groupMessages)
	}

	wires, err := decodeData[[]models.GroupWire](resp)
	if err != nil {
		return nil, classify(err, groupMessages)
	}

	groups := []models.Group{}
	if wires == nil {
		return groups, nil
	}
	for _, w := range *wires {
		g := w.Group()
		g.Endpoints = []models.Endpoint{}
		groups = append(groups, g)
	}
	s.Log.Debug().Int("count", len(groups)).Msg("groups listed")
	return groups, nil
}

// Get returns a group with its endpoints.
func (s *GroupService) Get(ctx context.Context, id int64) (*models.Group, error) {
	resp, err := s.API.Do(ctx, http.MethodGet, groupPath(id), nil)
	if err != nil {
		return nil, classify(err, groupMessages)
	}
	return s.decode(resp)
}

// Create creates a group. A nil group with a nil error means the server
// accepted the request without echoing the group.
func (s *GroupService) Create(ctx context.Context, g models.Group) (*models.Group, error) {
	resp, err := s.API.Do(ctx, http.MethodPost, "/group", g.Payload(true))
	if err != nil {
		return nil, classify(err, groupMessages)
	}
	s.Log.Info().Str("endpoint", g.Endpoint).Msg("group created")
	return s.decode(resp)
}

// Update replaces the name, description and status of a group. The
// endpoint segment cannot be changed.
func (s *GroupService) Update(ctx context.Context, id int64, g models.Group) (*models.Group, error) {
	resp, err := s.API.Do(ctx, http.MethodPut, groupPath(id), g.Payload(false))
	if err != nil {
		return nil, classify(err, groupMessages)
	}
	return s.decode(resp)
}

func (s *GroupService) Delete(ctx context.Context, id int64) error {
	if _, err := s.API.Do(ctx, http.MethodDelete, groupPath(id), nil); err != nil {
		return classify(err, groupMessages)
	}
	s.Log.Info().Int64("id", id).Msg("group deleted")
	return nil
}

// ToggleStatus sets the active flag of a group, keeping its other fields.
func (s *GroupService) ToggleStatus(ctx context.Context, id int64, active bool) (*models.Group, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, &APIError{Kind: KindNotFound, Message: groupMessages.notFound, Err: ErrNotFound}
	}

	current.IsActive = active
	return s.Update(ctx, id, *current)
}

func (s *GroupService) decode(resp *client.Response) (*models.Group, error) {
	wire, err := decodeData[models.GroupWire](resp)
	if err != nil {
		return nil, classify(err, groupMessages)
	}
	if wire == nil {
		return nil, nil
	}
	g := wire.Group()
	return &g, nil
}
