package services

import (
	"errors"
	"net/http"

	"github.com/mockhub/mockhub-console/internal/client"
)

// Kind classifies a failed service call.
type Kind int

const (
	KindUnknown Kind = iota
	KindBadRequest
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindValidation
	KindServer
	KindConnectivity
)

var kindNames = map[Kind]string{
	KindUnknown:         "unknown",
	KindBadRequest:      "bad_request",
	KindUnauthenticated: "unauthenticated",
	KindForbidden:       "forbidden",
	KindNotFound:        "not_found",
	KindConflict:        "conflict",
	KindValidation:      "validation",
	KindServer:          "server",
	KindConnectivity:    "connectivity",
}

func (k Kind) String() string {
	return kindNames[k]
}

// Sentinels matched by errors.Is against an *APIError of the same kind.
var (
	ErrBadRequest      = errors.New("bad request")
	ErrUnauthenticated = errors.New("not authenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrValidation      = errors.New("validation failed")
	ErrServer          = errors.New("server error")
	ErrConnectivity    = errors.New("server unreachable")
)

var kindSentinels = map[Kind]error{
	KindBadRequest:      ErrBadRequest,
	KindUnauthenticated: ErrUnauthenticated,
	KindForbidden:       ErrForbidden,
	KindNotFound:        ErrNotFound,
	KindConflict:        ErrConflict,
	KindValidation:      ErrValidation,
	KindServer:          ErrServer,
	KindConnectivity:    ErrConnectivity,
}

// APIError is a classified failure with a message fit for the user.
type APIError struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func (e *APIError) Is(target error) bool {
	s, ok := kindSentinels[e.Kind]
	return ok && s == target
}

// messages holds the entity specific texts of the error table.
type messages struct {
	notFound string
	conflict string
}

var (
	groupMessages = messages{
		notFound: "Group not found",
		conflict: "A group with this endpoint already exists",
	}
	endpointMessages = messages{
		notFound: "Endpoint not found",
		conflict: "An endpoint with this path already exists",
	}
)

// classify turns an error returned by the client into an *APIError.
func classify(err error, m messages) error {
	if err == nil {
		return nil
	}

	var transportErr *client.TransportError
	if errors.As(err, &transportErr) {
		return &APIError{Kind: KindConnectivity, Message: "Server is not responding. Check your connection", Err: err}
	}

	var httpErr *client.HTTPError
	if !errors.As(err, &httpErr) {
		return &APIError{Kind: KindUnknown, Message: err.Error(), Err: err}
	}

	detail := httpErr.Detail()
	apiErr := &APIError{Status: httpErr.Status, Err: err}
	switch httpErr.Status {
	case http.StatusBadRequest:
		apiErr.Kind = KindBadRequest
		apiErr.Message = orDefault(detail.Summary(), "Invalid request data")
	case http.StatusUnauthorized:
		apiErr.Kind = KindUnauthenticated
		apiErr.Message = "Not authenticated. Please log in again"
	case http.StatusForbidden:
		apiErr.Kind = KindForbidden
		apiErr.Message = "Access denied"
	case http.StatusNotFound:
		apiErr.Kind = KindNotFound
		apiErr.Message = m.notFound
	case http.StatusConflict:
		apiErr.Kind = KindConflict
		apiErr.Message = m.conflict
	case http.StatusUnprocessableEntity:
		apiErr.Kind = KindValidation
		apiErr.Message = "Data validation failed"
		if fields := detail.FieldErrors(); len(fields) > 0 {
			apiErr.Message = detail.Summary()
		}
	case http.StatusInternalServerError:
		apiErr.Kind = KindServer
		apiErr.Message = "Internal server error"
	default:
		apiErr.Kind = KindUnknown
		apiErr.Message = orDefault(detail.Summary(), "Request failed")
	}
	return apiErr
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
