package db

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mockhub/mockhub-console/models"
)

var _ Repository = (*MemoryRepository)(nil)

type groupRow struct {
	owner int64
	wire  models.GroupWire
}

type endpointRow struct {
	groupID  int64
	method   string
	path     string
	jsonData string
	created  string
	updated  string
}

// MemoryRepository keeps everything in process memory. It is safe for
// concurrent use.
type MemoryRepository struct {
	mu        sync.RWMutex
	users     map[int64]models.UserRecord
	groups    map[int64]*groupRow
	endpoints map[int64]*endpointRow
	lastID    int64
	now       func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:     make(map[int64]models.UserRecord),
		groups:    make(map[int64]*groupRow),
		endpoints: make(map[int64]*endpointRow),
		now:       time.Now,
	}
}

func (m *MemoryRepository) nextID() int64 {
	m.lastID++
	return m.lastID
}

func (m *MemoryRepository) timestamp() string {
	return m.now().UTC().Format(time.RFC3339)
}

func (m *MemoryRepository) Close() error {
	return nil
}

func (m *MemoryRepository) CreateUser(_ context.Context, u models.UserRecord) (models.UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) || (u.Username != "" && existing.Username == u.Username) {
			return models.UserRecord{}, ErrConflict
		}
	}
	u.ID = m.nextID()
	m.users[u.ID] = u
	return u, nil
}

func (m *MemoryRepository) GetUser(_ context.Context, id int64) (models.UserRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return models.UserRecord{}, ErrNotFound
	}
	return u, nil
}

func (m *MemoryRepository) GetUserByEmail(_ context.Context, email string) (models.UserRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return models.UserRecord{}, ErrNotFound
}

func (m *MemoryRepository) GetUserByUsername(_ context.Context, username string) (models.UserRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.UserRecord{}, ErrNotFound
}

func (m *MemoryRepository) ListGroups(_ context.Context, owner int64) ([]models.GroupWire, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	groups := []models.GroupWire{}
	for _, g := range m.groups {
		if g.owner == owner {
			groups = append(groups, g.wire)
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups, nil
}

func (m *MemoryRepository) GetGroup(_ context.Context, owner, id int64) (models.GroupWire, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.groups[id]
	if !ok || g.owner != owner {
		return models.GroupWire{}, ErrNotFound
	}
	return m.withEndpoints(g), nil
}

func (m *MemoryRepository) GetGroupByEndpoint(_ context.Context, owner int64, endpoint string) (models.GroupWire, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g := m.findGroup(owner, endpoint, false)
	if g == nil {
		return models.GroupWire{}, ErrNotFound
	}
	return m.withEndpoints(g), nil
}

func (m *MemoryRepository) CreateGroup(_ context.Context, owner int64, p models.GroupPayload) (models.GroupWire, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.findGroup(owner, p.Endpoint, false) != nil {
		return models.GroupWire{}, ErrConflict
	}

	ts := m.timestamp()
	g := &groupRow{owner: owner, wire: models.GroupWire{
		ID:          m.nextID(),
		Name:        p.Name,
		Endpoint:    p.Endpoint,
		Description: p.Description,
		Active:      p.Active,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}}
	m.groups[g.wire.ID] = g
	return g.wire, nil
}

func (m *MemoryRepository) UpdateGroup(_ context.Context, owner, id int64, p models.GroupPayload) (models.GroupWire, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.groups[id]
	if !ok || g.owner != owner {
		return models.GroupWire{}, ErrNotFound
	}
	g.wire.Name = p.Name
	g.wire.Description = p.Description
	g.wire.Active = p.Active
	g.wire.UpdatedAt = m.timestamp()
	return g.wire, nil
}

func (m *MemoryRepository) DeleteGroup(_ context.Context, owner, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.groups[id]
	if !ok || g.owner != owner {
		return ErrNotFound
	}
	delete(m.groups, id)
	for eid, e := range m.endpoints {
		if e.groupID == id {
			delete(m.endpoints, eid)
		}
	}
	return nil
}

func (m *MemoryRepository) ListEndpoints(_ context.Context, owner int64, groupName string) ([]models.EndpointWire, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g := m.findGroup(owner, groupName, true)
	if g == nil {
		return []models.EndpointWire{}, nil
	}
	return m.withEndpoints(g).Data, nil
}

func (m *MemoryRepository) GetEndpoint(_ context.Context, owner, id int64) (models.EndpointWire, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, g := m.ownedEndpoint(owner, id)
	if e == nil {
		return models.EndpointWire{}, ErrNotFound
	}
	return e.wire(id, g.wire.Endpoint), nil
}

func (m *MemoryRepository) CreateEndpoint(_ context.Context, owner int64, p models.EndpointPayload) (models.EndpointWire, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g := m.findGroup(owner, p.GroupName, true)
	if g == nil {
		return models.EndpointWire{}, ErrNotFound
	}
	if m.endpointTaken(g.wire.ID, 0, p.Method, p.Path) {
		return models.EndpointWire{}, ErrConflict
	}

	ts := m.timestamp()
	id := m.nextID()
	e := &endpointRow{
		groupID:  g.wire.ID,
		method:   strings.ToUpper(p.Method),
		path:     NormalizePath(p.Path),
		jsonData: p.JSONData,
		created:  ts,
		updated:  ts,
	}
	m.endpoints[id] = e
	return e.wire(id, g.wire.Endpoint), nil
}

func (m *MemoryRepository) UpdateEndpoint(_ context.Context, owner, id int64, p models.EndpointPayload) (models.EndpointWire, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, g := m.ownedEndpoint(owner, id)
	if e == nil {
		return models.EndpointWire{}, ErrNotFound
	}
	if m.endpointTaken(e.groupID, id, p.Method, p.Path) {
		return models.EndpointWire{}, ErrConflict
	}
	e.method = strings.ToUpper(p.Method)
	e.path = NormalizePath(p.Path)
	e.jsonData = p.JSONData
	e.updated = m.timestamp()
	return e.wire(id, g.wire.Endpoint), nil
}

func (m *MemoryRepository) DeleteEndpoint(_ context.Context, owner, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, _ := m.ownedEndpoint(owner, id); e == nil {
		return ErrNotFound
	}
	delete(m.endpoints, id)
	return nil
}

// findGroup looks a group up by endpoint segment and, if byName is set,
// by name. Callers hold the lock.
func (m *MemoryRepository) findGroup(owner int64, key string, byName bool) *groupRow {
	var named *groupRow
	for _, g := range m.groups {
		if g.owner != owner {
			continue
		}
		if g.wire.Endpoint == key {
			return g
		}
		if byName && g.wire.Name == key && named == nil {
			named = g
		}
	}
	return named
}

func (m *MemoryRepository) ownedEndpoint(owner, id int64) (*endpointRow, *groupRow) {
	e, ok := m.endpoints[id]
	if !ok {
		return nil, nil
	}
	g, ok := m.groups[e.groupID]
	if !ok || g.owner != owner {
		return nil, nil
	}
	return e, g
}

func (m *MemoryRepository) endpointTaken(groupID, except int64, method, path string) bool {
	for id, e := range m.endpoints {
		if id != except && e.groupID == groupID && e.method == strings.ToUpper(method) && e.path == NormalizePath(path) {
			return true
		}
	}
	return false
}

func (m *MemoryRepository) withEndpoints(g *groupRow) models.GroupWire {
	w := g.wire
	w.Data = []models.EndpointWire{}
	for id, e := range m.endpoints {
		if e.groupID == g.wire.ID {
			w.Data = append(w.Data, e.wire(id, g.wire.Endpoint))
		}
	}
	sort.Slice(w.Data, func(i, j int) bool { return w.Data[i].ID < w.Data[j].ID })
	return w
}

func (e *endpointRow) wire(id int64, groupEndpoint string) models.EndpointWire {
	data, _ := json.Marshal(e.jsonData)
	return models.EndpointWire{
		ID:        id,
		Method:    e.method,
		Path:      e.path,
		JSONData:  data,
		GroupName: groupEndpoint,
		CreatedAt: e.created,
		UpdatedAt: e.updated,
	}
}
