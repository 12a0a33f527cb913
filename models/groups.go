package models

// GroupWire is a group as the backend sends it. Data is only populated
// when a single group is fetched.
type GroupWire struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Endpoint    string         `json:"endpoint"`
	Description string         `json:"description"`
	Active      bool           `json:"active"`
	CreatedAt   string         `json:"created_at,omitempty"`
	UpdatedAt   string         `json:"updated_at,omitempty"`
	Data        []EndpointWire `json:"data,omitempty"`
}

// GroupPayload is the body of group create and update requests.
type GroupPayload struct {
	Name        string `json:"name"`
	Endpoint    string `json:"endpoint,omitempty"`
	Active      bool   `json:"active"`
	Description string `json:"description"`
}

// Group is the client-side representation of an API group.
type Group struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Endpoint    string     `json:"endpoint"`
	Description string     `json:"description"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   string     `json:"createdAt,omitempty"`
	UpdatedAt   string     `json:"updatedAt,omitempty"`
	Endpoints   []Endpoint `json:"endpoints"`
}

// Group adapts the wire representation.
func (w GroupWire) Group() Group {
	g := Group{
		ID:          w.ID,
		Name:        w.Name,
		Endpoint:    w.Endpoint,
		Description: w.Description,
		IsActive:    w.Active,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
		Endpoints:   []Endpoint{},
	}
	for _, e := range w.Data {
		g.Endpoints = append(g.Endpoints, e.Endpoint())
	}
	return g
}

// Wire converts the group back into the backend schema.
func (g Group) Wire() (GroupWire, error) {
	w := GroupWire{
		ID:          g.ID,
		Name:        g.Name,
		Endpoint:    g.Endpoint,
		Description: g.Description,
		Active:      g.IsActive,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
	for _, e := range g.Endpoints {
		ew, err := e.Wire()
		if err != nil {
			return GroupWire{}, err
		}
		w.Data = append(w.Data, ew)
	}
	return w, nil
}

// Payload builds a write payload. The endpoint segment is only sent on
// creation, it cannot be changed afterwards.
func (g Group) Payload(withEndpoint bool) GroupPayload {
	p := GroupPayload{
		Name:        g.Name,
		Active:      g.IsActive,
		Description: g.Description,
	}
	if withEndpoint {
		p.Endpoint = g.Endpoint
	}
	return p
}
