package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// UserID identifies a user. Backends send either a number or a string
// such as a UUID; both are kept as text.
type UserID string

// NewUserID formats a numeric id.
func NewUserID(id int64) UserID {
	return UserID(strconv.FormatInt(id, 10))
}

func (id *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = UserID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("user id must be a string or a number: %w", err)
	}
	*id = UserID(n.String())
	return nil
}

// MarshalJSON writes integer ids as numbers and anything else as a string.
func (id UserID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// User represents the profile of the authenticated user.
type User struct {
	ID          UserID `json:"id"`
	Email       string `json:"email"`
	Username    string `json:"username,omitempty"`
	Name        string `json:"name,omitempty"`
	IsActive    bool   `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
	IsVerified  bool   `json:"is_verified"`
}

// RegisterRequest is the body sent to the registration endpoint.
type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	IsActive    bool   `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
	IsVerified  bool   `json:"is_verified"`
	RoleID      int    `json:"role_id"`
}

// TokenResponse is returned by the login endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// UserRecord is a stored account. Its ID shadows the profile id.
type UserRecord struct {
	User
	ID           int64  `json:"-"`
	PasswordHash string `json:"-"`
}

// Profile returns the public profile of the account.
func (r UserRecord) Profile() User {
	u := r.User
	u.ID = NewUserID(r.ID)
	return u
}
