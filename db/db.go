package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mockhub/mockhub-console/internal/appconfig"
	"github.com/mockhub/mockhub-console/models"
	"github.com/rs/zerolog"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

// Repository stores the accounts, groups and endpoints of the mock backend.
// Group and endpoint operations are scoped to an owner.
type Repository interface {
	CreateUser(ctx context.Context, u models.UserRecord) (models.UserRecord, error)
	GetUser(ctx context.Context, id int64) (models.UserRecord, error)
	GetUserByEmail(ctx context.Context, email string) (models.UserRecord, error)
	GetUserByUsername(ctx context.Context, username string) (models.UserRecord, error)

	ListGroups(ctx context.Context, owner int64) ([]models.GroupWire, error)
	GetGroup(ctx context.Context, owner, id int64) (models.GroupWire, error)
	GetGroupByEndpoint(ctx context.Context, owner int64, endpoint string) (models.GroupWire, error)
	CreateGroup(ctx context.Context, owner int64, p models.GroupPayload) (models.GroupWire, error)
	UpdateGroup(ctx context.Context, owner, id int64, p models.GroupPayload) (models.GroupWire, error)
	DeleteGroup(ctx context.Context, owner, id int64) error

	ListEndpoints(ctx context.Context, owner int64, groupName string) ([]models.EndpointWire, error)
	GetEndpoint(ctx context.Context, owner, id int64) (models.EndpointWire, error)
	CreateEndpoint(ctx context.Context, owner int64, p models.EndpointPayload) (models.EndpointWire, error)
	UpdateEndpoint(ctx context.Context, owner, id int64, p models.EndpointPayload) (models.EndpointWire, error)
	DeleteEndpoint(ctx context.Context, owner, id int64) error

	Close() error
}

// NewRepository opens the repository named by the database configuration.
func NewRepository(cfg appconfig.DatabaseConfig, log *zerolog.Logger) (Repository, error) {
	switch cfg.Driver {
	case "memory", "":
		log.Debug().Msg("Using in-memory repository")
		return NewMemoryRepository(), nil
	case "postgres":
		hub, err := OpenHubDB(cfg, log)
		if err != nil {
			return nil, err
		}
		return hub, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// NormalizePath strips surrounding slashes from an endpoint path.
func NormalizePath(p string) string {
	return strings.Trim(p, "/")
}

// MatchPath reports whether path matches pattern segment by segment.
// A pattern segment written as {name} matches any single segment.
func MatchPath(pattern, path string) bool {
	ps := strings.Split(NormalizePath(pattern), "/")
	as := strings.Split(NormalizePath(path), "/")
	if len(ps) != len(as) {
		return false
	}
	for i := range ps {
		if strings.HasPrefix(ps[i], "{") && strings.HasSuffix(ps[i], "}") && as[i] != "" {
			continue
		}
		if ps[i] != as[i] {
			return false
		}
	}
	return true
}
