package appconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigRendersEnvironment(t *testing.T) {
	t.Setenv("MOCKHUB_SIGNING_KEY", "s3cret")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
api:
  baseUrl: http://api.example.com
  timeout: 5s
session:
  store: memory
mock:
  port: 9000
  signingKey: {{ .MOCKHUB_SIGNING_KEY }}
  database:
    driver: postgres
    source: postgres://localhost/mockhub
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "http://api.example.com", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, "memory", cfg.Session.Store)
	assert.Equal(t, 9000, cfg.Mock.Port)
	assert.Equal(t, "s3cret", cfg.Mock.SigningKey)
	assert.Equal(t, "postgres", cfg.Mock.Database.Driver)

	// untouched sections fall back to defaults
	assert.Equal(t, "/login", cfg.Routes.Login)
	assert.Equal(t, "/", cfg.Routes.Home)
	assert.Equal(t, "/users/me", cfg.API.UserPath)
	assert.Equal(t, DefaultTokenTTL, cfg.Mock.TokenTTL)
}

func TestLoadConfigWithoutPath(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, DefaultTimeout, cfg.API.Timeout)
	assert.Equal(t, "file", cfg.Session.Store)
	assert.NotEmpty(t, cfg.Session.Path)
	assert.Equal(t, "memory", cfg.Mock.Database.Driver)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigTunnelDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
mock:
  database:
    driver: postgres
    source: postgres://localhost:5433/mockhub
    tunnel:
      sshUser: ops
      sshHost: bastion.example.com
      remoteHost: db.internal
      privateKeyPath: /keys/id_ed25519
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	tunnel := cfg.Mock.Database.Tunnel
	assert.Equal(t, "22", tunnel.SSHPort)
	assert.Equal(t, "5432", tunnel.RemotePort)
	assert.Equal(t, "5433", tunnel.LocalPort)

	assert.Empty(t, Default().Mock.Database.Tunnel.SSHPort, "no tunnel without a host")
}
