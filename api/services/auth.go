package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"

	"github.com/mockhub/mockhub-console/db"
	"github.com/mockhub/mockhub-console/models"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const (
	ErrCodeUserAlreadyExists = "REGISTER_USER_ALREADY_EXISTS"
	ErrCodeBadCredentials    = "LOGIN_BAD_CREDENTIALS"

	DemoEmail    = "demo@mockhub.dev"
	DemoPassword = "demo"
)

// bcryptCost is lowered by tests.
var bcryptCost = bcrypt.DefaultCost

// RegisterService creates a new account.
func RegisterService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn().Err(err).Msg("Invalid request payload")
		WriteValidation(w, fieldError("body", "invalid JSON body", "value_error.jsondecode"))
		return
	}

	var fields []models.FieldError
	if _, err := mail.ParseAddress(req.Email); err != nil || !strings.Contains(req.Email, "@") {
		fields = append(fields, fieldError("email", "value is not a valid email address", "value_error.email"))
	}
	if req.Password == "" {
		fields = append(fields, fieldError("password", "field required", "value_error.missing"))
	}
	if len(fields) > 0 {
		logger.Warn().Int("field_errors", len(fields)).Msg("Registration rejected")
		WriteValidation(w, fields...)
		return
	}

	user, err := createUser(r.Context(), svc.DB, req)
	if errors.Is(err, db.ErrConflict) {
		logger.Info().Str("email", req.Email).Msg("Account already exists")
		WriteDetail(w, http.StatusBadRequest, ErrCodeUserAlreadyExists)
		return
	}
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create account")
		WriteDetail(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	logger.Info().Int64("user_id", user.ID).Msg("Account registered")
	WriteResponse(w, http.StatusCreated, user.Profile())
}

// LoginService exchanges form credentials for an access token.
func LoginService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	if err := r.ParseForm(); err != nil {
		logger.Warn().Err(err).Msg("Invalid form payload")
		WriteValidation(w, fieldError("body", "invalid form body", "value_error"))
		return
	}

	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")

	var fields []models.FieldError
	if username == "" {
		fields = append(fields, fieldError("username", "field required", "value_error.missing"))
	}
	if password == "" {
		fields = append(fields, fieldError("password", "field required", "value_error.missing"))
	}
	if len(fields) > 0 {
		WriteValidation(w, fields...)
		return
	}

	user, err := svc.DB.GetUserByEmail(r.Context(), username)
	if errors.Is(err, db.ErrNotFound) {
		user, err = svc.DB.GetUserByUsername(r.Context(), username)
	}
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		logger.Error().Err(err).Msg("Database error retrieving account")
		WriteDetail(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if err != nil || !user.IsActive ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		logger.Info().Str("username", username).Msg("Login rejected")
		WriteDetail(w, http.StatusBadRequest, ErrCodeBadCredentials)
		return
	}

	token, err := svc.Signer.Issue(user.ID, user.Email)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to issue token")
		WriteDetail(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	logger.Info().Int64("user_id", user.ID).Msg("Login succeeded")
	WriteResponse(w, http.StatusOK, models.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// LogoutService acknowledges a logout. Tokens are stateless so there is
// nothing to revoke.
func LogoutService(svc *Service, w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUserID(w, r); !ok {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetCurrentUserService returns the profile of the token's owner.
func GetCurrentUserService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	id, ok := currentUserID(w, r)
	if !ok {
		return
	}

	user, err := svc.DB.GetUser(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		logger.Warn().Int64("user_id", id).Msg("Token subject no longer exists")
		WriteDetail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err != nil {
		logger.Error().Err(err).Msg("Database error retrieving account")
		WriteDetail(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	WriteResponse(w, http.StatusOK, user.Profile())
}

// SeedDemo makes sure the demo account exists and owns the demo groups.
func SeedDemo(ctx context.Context, repo db.Repository) (models.User, error) {
	user, err := repo.GetUserByEmail(ctx, DemoEmail)
	if errors.Is(err, db.ErrNotFound) {
		user, err = createUser(ctx, repo, models.RegisterRequest{
			Username:   "demo",
			Email:      DemoEmail,
			Password:   DemoPassword,
			IsActive:   true,
			IsVerified: true,
		})
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to prepare demo account: %w", err)
	}

	if err := db.Seed(ctx, repo, user.ID); err != nil {
		return models.User{}, err
	}
	return user.Profile(), nil
}

func createUser(ctx context.Context, repo db.Repository, req models.RegisterRequest) (models.UserRecord, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return models.UserRecord{}, fmt.Errorf("failed to hash password: %w", err)
	}

	username := req.Username
	if username == "" {
		username, _, _ = strings.Cut(req.Email, "@")
	}

	return repo.CreateUser(ctx, models.UserRecord{
		User: models.User{
			Email:      req.Email,
			Username:   username,
			IsActive:   req.IsActive,
			IsVerified: req.IsVerified,
		},
		PasswordHash: string(hash),
	})
}
