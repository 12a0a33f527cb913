package services

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/mockhub/mockhub-console/db"
	"github.com/mockhub/mockhub-console/models"
	"github.com/rs/zerolog"
)

const (
	msgEndpointNotFound = "Endpoint not found"
	msgEndpointConflict = "An endpoint with this path already exists"
)

var allowedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// GetEndpointsService lists the endpoints of the group named by the
// group_name query parameter.
func GetEndpointsService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	owner, ok := currentUserID(w, r)
	if !ok {
		return
	}

	groupName := r.URL.Query().Get("group_name")
	if groupName == "" {
		WriteValidation(w, models.FieldError{
			Loc:  []any{"query", "group_name"},
			Msg:  "field required",
			Type: "value_error.missing",
		})
		return
	}

	endpoints, err := svc.DB.ListEndpoints(r.Context(), owner, groupName)
	if err != nil {
		writeRepoError(w, logger, err, msgEndpointNotFound, msgEndpointConflict)
		return
	}

	logger.Info().Str("group_name", groupName).Int("endpoint_count", len(endpoints)).Msg("Successfully retrieved endpoints")
	WriteResponse(w, http.StatusOK, endpoints)
}

func GetEndpointService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	owner, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	endpoint, err := svc.DB.GetEndpoint(r.Context(), owner, id)
	if err != nil {
		writeRepoError(w, logger, err, msgEndpointNotFound, msgEndpointConflict)
		return
	}

	WriteResponse(w, http.StatusOK, endpoint)
}

func CreateEndpointService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	owner, ok := currentUserID(w, r)
	if !ok {
		return
	}

	payload, ok := decodeEndpoint(w, r, true)
	if !ok {
		return
	}

	endpoint, err := svc.DB.CreateEndpoint(r.Context(), owner, payload)
	if errors.Is(err, db.ErrNotFound) {
		logger.Info().Str("group_name", payload.GroupName).Msg("Group does not exist")
		WriteDetail(w, http.StatusNotFound, msgGroupNotFound)
		return
	}
	if err != nil {
		writeRepoError(w, logger, err, msgEndpointNotFound, msgEndpointConflict)
		return
	}

	logger.Info().Int64("endpoint_id", endpoint.ID).Str("method", endpoint.Method).Str("path", endpoint.Path).Msg("Endpoint created")
	WriteResponse(w, http.StatusCreated, endpoint)
}

func UpdateEndpointService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	owner, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	payload, ok := decodeEndpoint(w, r, false)
	if !ok {
		return
	}

	endpoint, err := svc.DB.UpdateEndpoint(r.Context(), owner, id, payload)
	if err != nil {
		writeRepoError(w, logger, err, msgEndpointNotFound, msgEndpointConflict)
		return
	}

	logger.Info().Int64("endpoint_id", endpoint.ID).Msg("Endpoint updated")
	WriteResponse(w, http.StatusOK, endpoint)
}

func DeleteEndpointService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	owner, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := svc.DB.DeleteEndpoint(r.Context(), owner, id); err != nil {
		writeRepoError(w, logger, err, msgEndpointNotFound, msgEndpointConflict)
		return
	}

	logger.Info().Int64("endpoint_id", id).Msg("Endpoint deleted")
	w.WriteHeader(http.StatusNoContent)
}

// decodeEndpoint reads and validates an endpoint payload. json_data must
// itself be a JSON document.
func decodeEndpoint(w http.ResponseWriter, r *http.Request, creating bool) (models.EndpointPayload, bool) {
	var payload models.EndpointPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Invalid request payload")
		WriteValidation(w, fieldError("body", "invalid JSON body", "value_error.jsondecode"))
		return payload, false
	}

	payload.Method = strings.ToUpper(strings.TrimSpace(payload.Method))
	if payload.Method == "" {
		payload.Method = http.MethodGet
	}
	payload.Path = db.NormalizePath(strings.TrimSpace(payload.Path))

	var fields []models.FieldError
	if payload.Path == "" {
		fields = append(fields, fieldError("path", "field required", "value_error.missing"))
	}
	if !allowedMethods[payload.Method] {
		fields = append(fields, fieldError("method", "unsupported HTTP method", "value_error.const"))
	}
	if !json.Valid([]byte(payload.JSONData)) {
		fields = append(fields, fieldError("json_data", "value is not valid JSON", "value_error.json"))
	}
	if creating && payload.GroupName == "" {
		fields = append(fields, fieldError("group_name", "field required", "value_error.missing"))
	}
	if len(fields) > 0 {
		WriteValidation(w, fields...)
		return payload, false
	}
	return payload, true
}
