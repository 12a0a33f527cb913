package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/mockhub/mockhub-console/api/middleware"
	"github.com/mockhub/mockhub-console/api/services"
)

// NewRouter registers the mock backend routes. Routes are matched in
// registration order so the public mock routes come last.
func NewRouter(svc *services.Service) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.WithLogger)

	// Auth routes
	r.HandleFunc("/auth/register", Register(svc)).Methods(http.MethodPost)
	r.HandleFunc("/auth/jwt/login", Login(svc)).Methods(http.MethodPost)

	api := r.NewRoute().Subrouter()
	api.Use(middleware.JWTMiddleware(svc.Signer))

	api.HandleFunc("/auth/jwt/logout", Logout(svc)).Methods(http.MethodPost)
	api.HandleFunc("/users/me", GetCurrentUser(svc)).Methods(http.MethodGet)
	api.HandleFunc("/user/me", GetCurrentUser(svc)).Methods(http.MethodGet)

	// Group routes
	api.HandleFunc("/group", GetGroups(svc)).Methods(http.MethodGet)
	api.HandleFunc("/group", CreateGroup(svc)).Methods(http.MethodPost)
	api.HandleFunc("/group/{id}", GetGroup(svc)).Methods(http.MethodGet)
	api.HandleFunc("/group/{id}", UpdateGroup(svc)).Methods(http.MethodPut)
	api.HandleFunc("/group/{id}", DeleteGroup(svc)).Methods(http.MethodDelete)

	// Endpoint routes
	api.HandleFunc("/endpoint", GetEndpoints(svc)).Methods(http.MethodGet)
	api.HandleFunc("/endpoint", CreateEndpoint(svc)).Methods(http.MethodPost)
	api.HandleFunc("/endpoint/{id}", GetEndpoint(svc)).Methods(http.MethodGet)
	api.HandleFunc("/endpoint/{id}", UpdateEndpoint(svc)).Methods(http.MethodPut)
	api.HandleFunc("/endpoint/{id}", DeleteEndpoint(svc)).Methods(http.MethodDelete)

	// Mock payloads
	r.HandleFunc("/{username}/{endpoint}", ServeMock(svc))
	r.HandleFunc("/{username}/{endpoint}/{path:.*}", ServeMock(svc))

	return r
}
