package db

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/mockhub/mockhub-console/models"
)

const endpointSelect = `
	SELECT e.id, e.method, e.path, e.json_data, g.endpoint, e.created_at, e.updated_at
	FROM api_endpoints e JOIN api_groups g ON g.id = e.group_id `

func scanEndpoint(row rowScanner) (models.EndpointWire, error) {
	var e models.EndpointWire
	var data string
	var created, updated time.Time
	if err := row.Scan(&e.ID, &e.Method, &e.Path, &data, &e.GroupName, &created, &updated); err != nil {
		return models.EndpointWire{}, mapErr(err)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return models.EndpointWire{}, err
	}
	e.JSONData = raw
	e.CreatedAt = formatTime(created)
	e.UpdatedAt = formatTime(updated)
	return e, nil
}

func (h *HubDB) queryEndpoints(ctx context.Context, where string, args ...any) ([]models.EndpointWire, error) {
	rows, err := h.DB.QueryContext(ctx, endpointSelect+where+` ORDER BY e.id`, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	endpoints := []models.EndpointWire{}
	for rows.Next() {
		e, err := scanEndpoint(rows)
		if err != nil {
			return nil, err
		}
		endpoints = append(endpoints, e)
	}
	return endpoints, rows.Err()
}

// ListEndpoints retrieves the endpoints of the group whose endpoint
// segment or name is groupName.
func (h *HubDB) ListEndpoints(ctx context.Context, owner int64, groupName string) ([]models.EndpointWire, error) {
	groupID, err := h.resolveGroup(ctx, owner, groupName)
	if errors.Is(err, ErrNotFound) {
		return []models.EndpointWire{}, nil
	}
	if err != nil {
		return nil, err
	}
	return h.queryEndpoints(ctx, `WHERE e.group_id = $1`, groupID)
}

func (h *HubDB) GetEndpoint(ctx context.Context, owner, id int64) (models.EndpointWire, error) {
	return scanEndpoint(h.DB.QueryRowContext(ctx, endpointSelect+`WHERE g.owner_id = $1 AND e.id = $2`, owner, id))
}

func (h *HubDB) CreateEndpoint(ctx context.Context, owner int64, p models.EndpointPayload) (models.EndpointWire, error) {
	groupID, err := h.resolveGroup(ctx, owner, p.GroupName)
	if err != nil {
		return models.EndpointWire{}, err
	}

	var id int64
	err = h.DB.QueryRowContext(ctx, `
		INSERT INTO api_endpoints (group_id, method, path, json_data)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		groupID, strings.ToUpper(p.Method), NormalizePath(p.Path), p.JSONData).Scan(&id)
	if err != nil {
		return models.EndpointWire{}, mapErr(err)
	}
	return h.GetEndpoint(ctx, owner, id)
}

func (h *HubDB) UpdateEndpoint(ctx context.Context, owner, id int64, p models.EndpointPayload) (models.EndpointWire, error) {
	res, err := h.DB.ExecContext(ctx, `
		UPDATE api_endpoints e SET method = $3, path = $4, json_data = $5, updated_at = now()
		FROM api_groups g
		WHERE g.id = e.group_id AND g.owner_id = $1 AND e.id = $2`,
		owner, id, strings.ToUpper(p.Method), NormalizePath(p.Path), p.JSONData)
	if err != nil {
		return models.EndpointWire{}, mapErr(err)
	}
	if err := requireAffected(res); err != nil {
		return models.EndpointWire{}, err
	}
	return h.GetEndpoint(ctx, owner, id)
}

func (h *HubDB) DeleteEndpoint(ctx context.Context, owner, id int64) error {
	res, err := h.DB.ExecContext(ctx, `
		DELETE FROM api_endpoints e USING api_groups g
		WHERE g.id = e.group_id AND g.owner_id = $1 AND e.id = $2`, owner, id)
	if err != nil {
		return mapErr(err)
	}
	return requireAffected(res)
}

// resolveGroup finds a group by endpoint segment, falling back to its name.
func (h *HubDB) resolveGroup(ctx context.Context, owner int64, key string) (int64, error) {
	var id int64
	err := h.DB.QueryRowContext(ctx, `
		SELECT id FROM api_groups
		WHERE owner_id = $1 AND (endpoint = $2 OR name = $2)
		ORDER BY (endpoint = $2) DESC, id
		LIMIT 1`, owner, key).Scan(&id)
	return id, mapErr(err)
}
