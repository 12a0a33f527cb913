package services

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/mockhub/mockhub-console/db"
	"github.com/mockhub/mockhub-console/models"
	"github.com/rs/zerolog"
)

// ServeMockService answers requests under /{username}/{endpoint}/ with the
// stored payload of the matching endpoint. Inactive groups are not served.
func ServeMockService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	vars := mux.Vars(r)
	username, segment, path := vars["username"], vars["endpoint"], vars["path"]

	user, err := svc.DB.GetUserByUsername(r.Context(), username)
	if err != nil {
		writeServeError(w, logger, err)
		return
	}

	group, err := svc.DB.GetGroupByEndpoint(r.Context(), user.ID, segment)
	if err != nil {
		writeServeError(w, logger, err)
		return
	}
	if !group.Active {
		logger.Debug().Str("endpoint", segment).Msg("Group is inactive")
		WriteDetail(w, http.StatusNotFound, "Not Found")
		return
	}

	endpoint, found := matchEndpoint(group.Data, r.Method, path)
	if !found {
		WriteDetail(w, http.StatusNotFound, "Not Found")
		return
	}

	logger.Info().Str("group", group.Endpoint).Str("method", endpoint.Method).Str("path", endpoint.Path).Msg("Serving mock payload")
	writePayload(w, endpoint.JSONData)
}

// matchEndpoint prefers a literal path over a templated one.
func matchEndpoint(endpoints []models.EndpointWire, method, path string) (models.EndpointWire, bool) {
	var templated *models.EndpointWire
	for i, e := range endpoints {
		if !strings.EqualFold(e.Method, method) || !db.MatchPath(e.Path, path) {
			continue
		}
		if db.NormalizePath(e.Path) == db.NormalizePath(path) {
			return e, true
		}
		if templated == nil {
			templated = &endpoints[i]
		}
	}
	if templated != nil {
		return *templated, true
	}
	return models.EndpointWire{}, false
}

// writePayload writes the stored document. Stored data that is not valid
// JSON is sent as a JSON string.
func writePayload(w http.ResponseWriter, raw json.RawMessage) {
	doc := string(raw)
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		doc = s
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if json.Valid([]byte(doc)) {
		w.Write([]byte(doc))
		return
	}
	json.NewEncoder(w).Encode(doc)
}

func writeServeError(w http.ResponseWriter, logger *zerolog.Logger, err error) {
	if errors.Is(err, db.ErrNotFound) {
		WriteDetail(w, http.StatusNotFound, "Not Found")
		return
	}
	logger.Error().Err(err).Msg("Database error serving mock")
	WriteDetail(w, http.StatusInternalServerError, "Internal Server Error")
}
