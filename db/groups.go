package db

import (
	"context"
	"time"

	"github.com/mockhub/mockhub-console/models"
)

const groupColumns = `id, name, endpoint, description, active, created_at, updated_at`

func scanGroup(row rowScanner) (models.GroupWire, error) {
	var g models.GroupWire
	var created, updated time.Time
	if err := row.Scan(&g.ID, &g.Name, &g.Endpoint, &g.Description, &g.Active, &created, &updated); err != nil {
		return models.GroupWire{}, mapErr(err)
	}
	g.CreatedAt = formatTime(created)
	g.UpdatedAt = formatTime(updated)
	return g, nil
}

// ListGroups retrieves the groups of an owner without their endpoints.
func (h *HubDB) ListGroups(ctx context.Context, owner int64) ([]models.GroupWire, error) {
	rows, err := h.DB.QueryContext(ctx, `SELECT `+groupColumns+` FROM api_groups WHERE owner_id = $1 ORDER BY id`, owner)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	groups := []models.GroupWire{}
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// GetGroup retrieves a group with its endpoints.
func (h *HubDB) GetGroup(ctx context.Context, owner, id int64) (models.GroupWire, error) {
	g, err := scanGroup(h.DB.QueryRowContext(ctx,
		`SELECT `+groupColumns+` FROM api_groups WHERE owner_id = $1 AND id = $2`, owner, id))
	if err != nil {
		return models.GroupWire{}, err
	}
	return h.withEndpoints(ctx, g)
}

func (h *HubDB) GetGroupByEndpoint(ctx context.Context, owner int64, endpoint string) (models.GroupWire, error) {
	g, err := scanGroup(h.DB.QueryRowContext(ctx,
		`SELECT `+groupColumns+` FROM api_groups WHERE owner_id = $1 AND endpoint = $2`, owner, endpoint))
	if err != nil {
		return models.GroupWire{}, err
	}
	return h.withEndpoints(ctx, g)
}

func (h *HubDB) CreateGroup(ctx context.Context, owner int64, p models.GroupPayload) (models.GroupWire, error) {
	return scanGroup(h.DB.QueryRowContext(ctx, `
		INSERT INTO api_groups (owner_id, name, endpoint, description, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+groupColumns,
		owner, p.Name, p.Endpoint, p.Description, p.Active))
}

func (h *HubDB) UpdateGroup(ctx context.Context, owner, id int64, p models.GroupPayload) (models.GroupWire, error) {
	return scanGroup(h.DB.QueryRowContext(ctx, `
		UPDATE api_groups SET name = $3, description = $4, active = $5, updated_at = now()
		WHERE owner_id = $1 AND id = $2
		RETURNING `+groupColumns,
		owner, id, p.Name, p.Description, p.Active))
}

func (h *HubDB) DeleteGroup(ctx context.Context, owner, id int64) error {
	res, err := h.DB.ExecContext(ctx, `DELETE FROM api_groups WHERE owner_id = $1 AND id = $2`, owner, id)
	if err != nil {
		return mapErr(err)
	}
	return requireAffected(res)
}

func (h *HubDB) withEndpoints(ctx context.Context, g models.GroupWire) (models.GroupWire, error) {
	endpoints, err := h.queryEndpoints(ctx, `WHERE e.group_id = $1`, g.ID)
	if err != nil {
		return models.GroupWire{}, err
	}
	g.Data = endpoints
	return g, nil
}
