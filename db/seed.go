package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/mockhub/mockhub-console/models"
)

type seedEndpoint struct {
	method string
	path   string
	data   string
}

type seedGroup struct {
	name        string
	endpoint    string
	description string
	active      bool
	endpoints   []seedEndpoint
}

var demoGroups = []seedGroup{
	{"Users API", "users-api", "Working with users", true, []seedEndpoint{
		{"GET", "users", `[{"id":1,"name":"Alice"},{"id":2,"name":"Bob"}]`},
		{"POST", "users", `{"id":3,"created":true}`},
		{"GET", "users/{id}", `{"id":1,"name":"Alice"}`},
	}},
	{"Authentication", "auth-api", "Login and registration endpoints", true, []seedEndpoint{
		{"POST", "auth/login", `{"access_token":"demo","token_type":"bearer"}`},
		{"POST", "auth/register", `{"id":1}`},
		{"POST", "auth/logout", `{}`},
		{"POST", "auth/refresh", `{"access_token":"demo-refreshed"}`},
	}},
	{"Products", "products-api", "Product catalogue management", false, []seedEndpoint{
		{"GET", "products", `[]`},
		{"GET", "products/{id}", `{"id":1,"title":"Widget"}`},
	}},
	{"Orders", "orders-api", "Order management", true, []seedEndpoint{
		{"GET", "orders", `[{"id":1,"total":42}]`},
		{"POST", "orders", `{"id":2}`},
		{"PUT", "orders/{id}", `{"updated":true}`},
		{"DELETE", "orders/{id}", `{"deleted":true}`},
		{"GET", "orders/{id}/items", `[{"sku":"A-1","qty":2}]`},
	}},
	{"Payments", "payments-api", "Payment and transaction processing", false, []seedEndpoint{
		{"POST", "payments", `{"status":"accepted"}`},
		{"GET", "payments/{id}", `{"id":1,"status":"settled"}`},
	}},
}

// Seed creates the demo groups for owner. Groups that already exist are
// left alone.
func Seed(ctx context.Context, repo Repository, owner int64) error {
	for _, sg := range demoGroups {
		_, err := repo.CreateGroup(ctx, owner, models.GroupPayload{
			Name:        sg.name,
			Endpoint:    sg.endpoint,
			Description: sg.description,
			Active:      sg.active,
		})
		if errors.Is(err, ErrConflict) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to seed group %s: %w", sg.endpoint, err)
		}

		for _, se := range sg.endpoints {
			_, err := repo.CreateEndpoint(ctx, owner, models.EndpointPayload{
				Method:    se.method,
				Path:      se.path,
				JSONData:  se.data,
				GroupName: sg.endpoint,
			})
			if err != nil {
				return fmt.Errorf("failed to seed endpoint %s %s: %w", se.method, se.path, err)
			}
		}
	}
	return nil
}
