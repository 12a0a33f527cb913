package services

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/mockhub/mockhub-console/api/middleware"
	"github.com/mockhub/mockhub-console/db"
	"github.com/mockhub/mockhub-console/internal/authn"
	"github.com/mockhub/mockhub-console/models"
	"github.com/rs/zerolog"
)

var segmentRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

func WriteResponse(w http.ResponseWriter, statusCode int, response interface{}, location ...string) {

	w.Header().Set("Content-Type", "application/json")

	// We don't want to cache API responses so the client receives most curent data
	w.Header().Set("Cache-Control", "max-age=0")

	// Conditionally set the Location header if provided
	if len(location) > 0 && location[0] != "" {
		w.Header().Set("Location", location[0])
	}

	w.WriteHeader(statusCode)

	if response != nil {
		if err := json.NewEncoder(w).Encode(response); err != nil {
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
			return
		}
	}
}

// WriteDetail writes an error body carrying a single message.
func WriteDetail(w http.ResponseWriter, statusCode int, detail string) {
	WriteResponse(w, statusCode, models.DetailResponse{Detail: detail})
}

// WriteValidation writes a 422 listing the failed fields.
func WriteValidation(w http.ResponseWriter, fields ...models.FieldError) {
	WriteResponse(w, http.StatusUnprocessableEntity, models.ValidationResponse{Detail: fields})
}

// WriteEnvelope wraps data in the {status, data} envelope.
func WriteEnvelope(w http.ResponseWriter, statusCode int, data interface{}, location ...string) {
	env := models.Envelope{Status: models.StatusSuccess}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
			return
		}
		env.Data = raw
	}
	WriteResponse(w, statusCode, env, location...)
}

// fieldError builds a validation failure for a body field.
func fieldError(field, msg, kind string) models.FieldError {
	return models.FieldError{Loc: []any{"body", field}, Msg: msg, Type: kind}
}

// IsSegmentCompatible returns true if name can be used as a URL path segment
func IsSegmentCompatible(name string) bool {
	return segmentRegex.MatchString(name)
}

// currentUserID returns the user id of the verified token, writing a 401
// when the request carries no usable claims.
func currentUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	logger := zerolog.Ctx(r.Context())

	claims, ok := r.Context().Value(middleware.ClaimsKey).(authn.Claims)
	if !ok {
		logger.Warn().Msg("Unauthorized request: missing claims")
		WriteDetail(w, http.StatusUnauthorized, "Unauthorized")
		return 0, false
	}

	id, err := claims.UserID()
	if err != nil {
		logger.Warn().Err(err).Msg("Unauthorized request: invalid subject")
		WriteDetail(w, http.StatusUnauthorized, "Unauthorized")
		return 0, false
	}
	return id, true
}

// pathID parses a numeric route variable, writing a 422 when it is not one.
func pathID(w http.ResponseWriter, r *http.Request, key string) (int64, bool) {
	raw := mux.Vars(r)[key]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		WriteValidation(w, models.FieldError{
			Loc:  []any{"path", key},
			Msg:  "value is not a valid integer",
			Type: "type_error.integer",
		})
		return 0, false
	}
	return id, true
}

// writeRepoError maps repository errors onto responses.
func writeRepoError(w http.ResponseWriter, logger *zerolog.Logger, err error, notFound, conflict string) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		logger.Debug().Err(err).Msg(notFound)
		WriteDetail(w, http.StatusNotFound, notFound)
	case errors.Is(err, db.ErrConflict):
		logger.Debug().Err(err).Msg(conflict)
		WriteDetail(w, http.StatusConflict, conflict)
	default:
		logger.Error().Err(err).Msg("Database error")
		WriteDetail(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
