// Package console assembles the client side: session storage, the session
// store, the route guard, the HTTP client and the resource services.
package console

import (
	"context"
	"fmt"

	"github.com/mockhub/mockhub-console/internal/appconfig"
	"github.com/mockhub/mockhub-console/internal/client"
	"github.com/mockhub/mockhub-console/internal/router"
	"github.com/mockhub/mockhub-console/internal/services"
	"github.com/mockhub/mockhub-console/internal/session"
	"github.com/mockhub/mockhub-console/internal/storage"
	"github.com/mockhub/mockhub-console/internal/userpath"
	"github.com/rs/zerolog"
)

type Console struct {
	Config   *appconfig.Config
	Storage  storage.Storage
	Session  *session.Store
	Router   *router.Router
	Client   *client.Client
	Users    *userpath.Resolver
	Services *services.Service
}

// New wires the components around st. The session is restored from st.
func New(ctx context.Context, cfg *appconfig.Config, st storage.Storage, log *zerolog.Logger) (*Console, error) {
	store, err := session.NewStore(ctx, st, session.Config{
		LoginRoute: cfg.Routes.Login,
		HomeRoute:  cfg.Routes.Home,
		UserPath:   cfg.API.UserPath,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}

	rt := router.New(router.DefaultRoutes(cfg.Routes), store, cfg.Routes, log)
	c := client.NewClient(cfg.API, cfg.Routes.Login, store, rt, log)
	store.Bind(c, rt)

	users := userpath.New(store)

	return &Console{
		Config:   cfg,
		Storage:  st,
		Session:  store,
		Router:   rt,
		Client:   c,
		Users:    users,
		Services: services.New(c, cfg.API.BaseURL, users, log),
	}, nil
}

// Open creates the configured session storage and wires the console on it.
func Open(ctx context.Context, cfg *appconfig.Config, log *zerolog.Logger) (*Console, error) {
	st, err := storage.NewStorage(ctx, cfg.Session, log)
	if err != nil {
		return nil, err
	}

	c, err := New(ctx, cfg, st, log)
	if err != nil {
		st.Close()
		return nil, err
	}
	return c, nil
}

// Enter navigates to path, returning the location the guard settled on.
func (c *Console) Enter(ctx context.Context, path string) (router.Location, error) {
	return c.Router.Visit(ctx, path)
}

func (c *Console) Close() error {
	return c.Storage.Close()
}
