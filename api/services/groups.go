package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/mockhub/mockhub-console/models"
	"github.com/rs/zerolog"
)

const (
	msgGroupNotFound = "Group not found"
	msgGroupConflict = "A group with this endpoint already exists"
)

// GetGroupsService lists the groups owned by the caller.
func GetGroupsService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	owner, ok := currentUserID(w, r)
	if !ok {
		return
	}

	groups, err := svc.DB.ListGroups(r.Context(), owner)
	if err != nil {
		writeRepoError(w, logger, err, msgGroupNotFound, msgGroupConflict)
		return
	}

	logger.Info().Int("group_count", len(groups)).Msg("Successfully retrieved groups")
	WriteResponse(w, http.StatusOK, groups)
}

// GetGroupService returns a single group with its endpoints.
func GetGroupService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	owner, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	group, err := svc.DB.GetGroup(r.Context(), owner, id)
	if err != nil {
		writeRepoError(w, logger, err, msgGroupNotFound, msgGroupConflict)
		return
	}

	WriteResponse(w, http.StatusOK, group)
}

// CreateGroupService creates a group. The endpoint segment is fixed from
// then on.
func CreateGroupService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	owner, ok := currentUserID(w, r)
	if !ok {
		return
	}

	payload, ok := decodeGroup(w, r, true)
	if !ok {
		return
	}

	group, err := svc.DB.CreateGroup(r.Context(), owner, payload)
	if err != nil {
		writeRepoError(w, logger, err, msgGroupNotFound, msgGroupConflict)
		return
	}

	logger.Info().Int64("group_id", group.ID).Str("endpoint", group.Endpoint).Msg("Group created")
	WriteEnvelope(w, http.StatusCreated, group, fmt.Sprintf("/group/%d", group.ID))
}

// UpdateGroupService updates the name, description and status of a group.
func UpdateGroupService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	owner, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	payload, ok := decodeGroup(w, r, false)
	if !ok {
		return
	}

	group, err := svc.DB.UpdateGroup(r.Context(), owner, id, payload)
	if err != nil {
		writeRepoError(w, logger, err, msgGroupNotFound, msgGroupConflict)
		return
	}

	logger.Info().Int64("group_id", group.ID).Bool("active", group.Active).Msg("Group updated")
	WriteEnvelope(w, http.StatusOK, group)
}

// DeleteGroupService removes a group and its endpoints.
func DeleteGroupService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	owner, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := svc.DB.DeleteGroup(r.Context(), owner, id); err != nil {
		writeRepoError(w, logger, err, msgGroupNotFound, msgGroupConflict)
		return
	}

	logger.Info().Int64("group_id", id).Msg("Group deleted")
	WriteEnvelope(w, http.StatusOK, nil)
}

func decodeGroup(w http.ResponseWriter, r *http.Request, creating bool) (models.GroupPayload, bool) {
	var payload models.GroupPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Invalid request payload")
		WriteValidation(w, fieldError("body", "invalid JSON body", "value_error.jsondecode"))
		return payload, false
	}

	payload.Name = strings.TrimSpace(payload.Name)
	payload.Endpoint = strings.TrimSpace(payload.Endpoint)

	var fields []models.FieldError
	if payload.Name == "" {
		fields = append(fields, fieldError("name", "field required", "value_error.missing"))
	}
	if creating && !IsSegmentCompatible(payload.Endpoint) {
		fields = append(fields, fieldError("endpoint",
			"must contain only a-z, 0-9 and -, not start or end with - and be at most 63 characters",
			"value_error.str.regex"))
	}
	if len(fields) > 0 {
		WriteValidation(w, fields...)
		return payload, false
	}
	return payload, true
}
