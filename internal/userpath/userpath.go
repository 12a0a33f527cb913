package userpath

import (
	"regexp"
	"strings"

	"github.com/mockhub/mockhub-console/models"
)

var repeatedSlashes = regexp.MustCompile(`/+`)

// UserSource provides the current user, or nil when there is none.
type UserSource interface {
	CurrentUser() *models.User
}

// Resolver builds per-user URLs for the current user.
type Resolver struct {
	Source UserSource
}

func New(source UserSource) *Resolver {
	return &Resolver{Source: source}
}

// Username is the user's name, else username, else the local part of
// the email, else empty.
func (r *Resolver) Username() string {
	var user *models.User
	if r.Source != nil {
		user = r.Source.CurrentUser()
	}
	return Username(user)
}

// UserPath returns /{username}/{endpoint}[/{path}]. The endpoint is kept
// even when empty, so UserPath("", "") is the path prefix.
func (r *Resolver) UserPath(endpoint, path string) string {
	base := "/" + endpoint
	if u := r.Username(); u != "" {
		base = "/" + u + "/" + endpoint
	}
	if path != "" {
		base += "/" + path
	}
	return collapse(base)
}

// PathPrefix returns /{username}/, or / without a user.
func (r *Resolver) PathPrefix() string {
	if u := r.Username(); u != "" {
		return "/" + u + "/"
	}
	return "/"
}

// FullURL joins baseURL with the user path.
func (r *Resolver) FullURL(baseURL, endpoint, path string) string {
	return strings.TrimRight(baseURL, "/") + r.UserPath(endpoint, path)
}

func Username(user *models.User) string {
	if user == nil {
		return ""
	}
	if user.Name != "" {
		return user.Name
	}
	if user.Username != "" {
		return user.Username
	}
	local, _, _ := strings.Cut(user.Email, "@")
	return local
}

func collapse(p string) string {
	return repeatedSlashes.ReplaceAllString(p, "/")
}
