package handlers

import (
	"net/http"

	"github.com/mockhub/mockhub-console/api/services"
)

func GetEndpoints(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.GetEndpointsService(svc, w, r)
	}
}

func GetEndpoint(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.GetEndpointService(svc, w, r)
	}
}

func CreateEndpoint(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.CreateEndpointService(svc, w, r)
	}
}

func UpdateEndpoint(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.UpdateEndpointService(svc, w, r)
	}
}

func DeleteEndpoint(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.DeleteEndpointService(svc, w, r)
	}
}

// ServeMock answers the public mock routes.
func ServeMock(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.ServeMockService(svc, w, r)
	}
}
