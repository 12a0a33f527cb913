package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/gorilla/mux"
	"github.com/mockhub/mockhub-console/internal/appconfig"
	"github.com/rs/zerolog"
)

var (
	ErrRouteNotFound = errors.New("route not found")
	ErrRedirectLoop  = errors.New("too many redirects")
)

// Route names.
const (
	RouteHome     = "home"
	RouteLogin    = "login"
	RouteRegister = "register"
	RouteProfile  = "profile"
	RouteGroup    = "group-detail"
)

// AuthStatus reports whether the session is authenticated.
type AuthStatus interface {
	IsAuthenticated() bool
}

type Route struct {
	Name string
	Path string
	Meta Meta
}

// Location is the result of a navigation.
type Location struct {
	Route  Route
	Path   string
	Params map[string]string
}

// DefaultRoutes returns the application's route table.
func DefaultRoutes(cfg appconfig.RoutesConfig) []Route {
	return []Route{
		{Name: RouteHome, Path: cfg.Home, Meta: Meta{RequiresAuth: true}},
		{Name: RouteLogin, Path: cfg.Login, Meta: Meta{GuestOnly: true}},
		{Name: RouteRegister, Path: "/register", Meta: Meta{GuestOnly: true}},
		{Name: RouteProfile, Path: "/profile", Meta: Meta{RequiresAuth: true}},
		{Name: RouteGroup, Path: "/groups/{id}", Meta: Meta{RequiresAuth: true}},
	}
}

// Router resolves paths against the route table and applies the guard
// before every navigation.
type Router struct {
	mu      sync.Mutex
	mux     *mux.Router
	routes  map[string]Route
	auth    AuthStatus
	login   string
	home    string
	current *Location
	hook    func(Location)
	log     *zerolog.Logger
}

func New(routes []Route, auth AuthStatus, cfg appconfig.RoutesConfig, log *zerolog.Logger) *Router {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	r := &Router{
		mux:    mux.NewRouter(),
		routes: make(map[string]Route, len(routes)),
		auth:   auth,
		login:  cfg.Login,
		home:   cfg.Home,
		log:    log,
	}
	for _, route := range routes {
		r.mux.Path(route.Path).Name(route.Name)
		r.routes[route.Name] = route
	}
	return r
}

// OnNavigate registers fn to be called with every location the router enters.
func (r *Router) OnNavigate(fn func(Location)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hook = fn
}

// Resolve matches path against the route table without navigating.
func (r *Router) Resolve(path string) (Location, error) {
	u, err := url.Parse(path)
	if err != nil {
		return Location{}, fmt.Errorf("invalid path %q: %w", path, err)
	}

	var match mux.RouteMatch
	req := &http.Request{Method: http.MethodGet, URL: u}
	if !r.mux.Match(req, &match) || match.Route == nil {
		return Location{}, fmt.Errorf("%w: %s", ErrRouteNotFound, path)
	}

	return Location{
		Route:  r.routes[match.Route.GetName()],
		Path:   u.Path,
		Params: match.Vars,
	}, nil
}

// Navigate moves to path, following a guard redirect if needed.
func (r *Router) Navigate(ctx context.Context, path string) error {
	_, err := r.Visit(ctx, path)
	return err
}

// Visit moves to path and returns the location actually entered, which
// differs from path when the guard redirected.
func (r *Router) Visit(ctx context.Context, path string) (Location, error) {
	target := path
	for hop := 0; hop < 2; hop++ {
		loc, err := r.Resolve(target)
		if err != nil {
			return Location{}, err
		}

		authenticated := r.auth != nil && r.auth.IsAuthenticated()
		switch Guard(loc.Route.Meta, authenticated) {
		case RedirectToLogin:
			r.log.Debug().Str("from", target).Str("to", r.login).Msg("route requires authentication")
			target = r.login
			continue
		case RedirectToHome:
			r.log.Debug().Str("from", target).Str("to", r.home).Msg("route is for guests only")
			target = r.home
			continue
		}

		r.enter(loc)
		return loc, nil
	}
	return Location{}, fmt.Errorf("%w: %s", ErrRedirectLoop, path)
}

// Current returns the location last entered.
func (r *Router) Current() (Location, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return Location{}, false
	}
	return *r.current, true
}

func (r *Router) enter(loc Location) {
	r.mu.Lock()
	r.current = &loc
	hook := r.hook
	r.mu.Unlock()

	if hook != nil {
		hook(loc)
	}
}
