package services

import (
	"github.com/mockhub/mockhub-console/db"
	"github.com/mockhub/mockhub-console/internal/appconfig"
	"github.com/mockhub/mockhub-console/internal/authn"
)

// Service contains all shared dependencies for handlers.
type Service struct {
	Config *appconfig.Config
	DB     db.Repository
	Signer *authn.Signer
}
