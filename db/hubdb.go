package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/mockhub/mockhub-console/internal/appconfig"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrations embed.FS

const uniqueViolation = "unique_violation"

var _ Repository = (*HubDB)(nil)

// HubDB is the Postgres repository.
type HubDB struct {
	DB     *sql.DB
	Log    *zerolog.Logger
	tunnel *Tunnel
}

// OpenHubDB connects to the configured database, through the SSH tunnel
// when one is configured.
func OpenHubDB(cfg appconfig.DatabaseConfig, log *zerolog.Logger) (*HubDB, error) {
	var tunnel *Tunnel
	if cfg.Tunnel.SSHHost != "" {
		var err error
		if tunnel, err = OpenTunnel(cfg.Tunnel, log); err != nil {
			return nil, fmt.Errorf("failed to open database tunnel: %w", err)
		}
	}

	hub, err := NewHubDB(cfg.Source, log)
	if err != nil {
		if tunnel != nil {
			tunnel.Close()
		}
		return nil, err
	}
	hub.tunnel = tunnel
	return hub, nil
}

// NewHubDB opens and pings the database at connStr.
func NewHubDB(connStr string, log *zerolog.Logger) (*HubDB, error) {
	if connStr == "" {
		log.Error().Msg("database source is not set")
		return nil, fmt.Errorf("database source is not set")
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open database connection")
		return nil, err
	}

	// Check we are actually connected
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Error().Err(err).Msg("Database connection failed during ping")
		db.Close()
		return nil, err
	}

	return &HubDB{DB: db, Log: log}, nil
}

func (h *HubDB) Close() error {
	if h.tunnel != nil {
		defer h.tunnel.Close()
	}
	if err := h.DB.Close(); err != nil {
		return err
	}
	h.Log.Info().Msg("database connection closed")
	return nil
}

// Migrate applies the embedded goose migrations.
func (h *HubDB) Migrate() error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.Up(h.DB, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	h.Log.Info().Msg("Migrations applied")
	return nil
}

// mapErr translates driver errors into repository errors.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrConflict, pqErr.Constraint)
	}
	return err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
