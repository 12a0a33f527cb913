package session

import "github.com/mockhub/mockhub-console/models"

// Status is the authentication state of a session.
type Status int

const (
	Anonymous Status = iota
	Authenticating
	Authenticated
)

func (s Status) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// State is a snapshot of the session handed to observers.
type State struct {
	Token   string
	User    *models.User
	Loading bool
	Error   string
	Status  Status
}

// RegisterInput holds the fields collected by the registration form.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}
