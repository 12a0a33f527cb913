package appconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"
)

const (
	DefaultBaseURL  = "http://localhost:8086"
	DefaultTimeout  = 30 * time.Second
	DefaultTokenTTL = time.Hour
)

// Config holds all configuration details
type Config struct {
	API     APIConfig     `yaml:"api"`
	Session SessionConfig `yaml:"session"`
	Routes  RoutesConfig  `yaml:"routes"`
	Mock    MockConfig    `yaml:"mock"`
}

// APIConfig defines how the client reaches the backend
type APIConfig struct {
	BaseURL  string        `yaml:"baseUrl"`
	Timeout  time.Duration `yaml:"timeout"`
	UserPath string        `yaml:"userPath"`
}

// SessionConfig defines where the session is persisted between runs
type SessionConfig struct {
	Store string      `yaml:"store"` // file, memory or redis
	Path  string      `yaml:"path"`
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig defines the redis connection details
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// RoutesConfig names the navigation entry points
type RoutesConfig struct {
	Login string `yaml:"login"`
	Home  string `yaml:"home"`
}

// MockConfig configures the bundled mock backend
type MockConfig struct {
	Host       string         `yaml:"host"`
	Port       int            `yaml:"port"`
	SigningKey string         `yaml:"signingKey"`
	TokenTTL   time.Duration  `yaml:"tokenTtl"`
	Seed       bool           `yaml:"seed"`
	Database   DatabaseConfig `yaml:"database"`
}

// DatabaseConfig defines the database connection details
type DatabaseConfig struct {
	Driver string       `yaml:"driver"` // memory or postgres
	Source string       `yaml:"source"`
	Tunnel TunnelConfig `yaml:"tunnel"`
}

// TunnelConfig describes an SSH tunnel to a database behind a bastion.
// The tunnel is only opened when SSHHost is set.
type TunnelConfig struct {
	SSHUser        string `yaml:"sshUser"`
	SSHHost        string `yaml:"sshHost"`
	SSHPort        string `yaml:"sshPort"`
	RemoteHost     string `yaml:"remoteHost"`
	RemotePort     string `yaml:"remotePort"`
	LocalPort      string `yaml:"localPort"`
	PrivateKeyPath string `yaml:"privateKeyPath"`
	KnownHostsPath string `yaml:"knownHostsPath"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig loads and parses the configuration from a given file path.
// An empty path yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("failed to load .env file")
	}

	if path == "" {
		log.Debug().Msg("no config file given, using defaults")
		return Default(), nil
	}

	// Parse the template file
	tmpl, err := template.ParseFiles(path)
	if err != nil {
		log.Error().Err(err).Msg("error parsing config file template")
		return nil, err
	}

	// Create a map of environment variables
	envVars := loadEnvVars()

	// Execute the template with environment variables
	var buf bytes.Buffer
	err = tmpl.Execute(&buf, envVars)
	if err != nil {
		log.Error().Err(err).Msg("error executing config file template")
		return nil, err
	}

	// Load and unmarshal the YAML
	var config Config
	if err := yaml.Unmarshal(buf.Bytes(), &config); err != nil {
		log.Error().Err(err).Msg("failed to unmarshal config YAML")
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultTimeout
	}
	if c.API.UserPath == "" {
		c.API.UserPath = "/users/me"
	}
	if c.Session.Store == "" {
		c.Session.Store = "file"
	}
	if c.Session.Path == "" {
		c.Session.Path = defaultSessionPath()
	}
	if c.Session.Redis.Prefix == "" {
		c.Session.Redis.Prefix = "mockhub:"
	}
	if c.Routes.Login == "" {
		c.Routes.Login = "/login"
	}
	if c.Routes.Home == "" {
		c.Routes.Home = "/"
	}
	if c.Mock.Host == "" {
		c.Mock.Host = "0.0.0.0"
	}
	if c.Mock.Port == 0 {
		c.Mock.Port = 8086
	}
	if c.Mock.TokenTTL == 0 {
		c.Mock.TokenTTL = DefaultTokenTTL
	}
	if c.Mock.Database.Driver == "" {
		c.Mock.Database.Driver = "memory"
	}
	if c.Mock.Database.Tunnel.SSHHost != "" {
		if c.Mock.Database.Tunnel.SSHPort == "" {
			c.Mock.Database.Tunnel.SSHPort = "22"
		}
		if c.Mock.Database.Tunnel.RemotePort == "" {
			c.Mock.Database.Tunnel.RemotePort = "5432"
		}
		if c.Mock.Database.Tunnel.LocalPort == "" {
			c.Mock.Database.Tunnel.LocalPort = "5433"
		}
	}
}

// defaultSessionPath places the session file in the user config directory
func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "mockhub", "session.json")
}

// loadEnvVars loads environment variables into a map
func loadEnvVars() map[string]string {
	envVars := make(map[string]string)
	for _, env := range os.Environ() {
		kv := strings.SplitN(env, "=", 2)
		if len(kv) == 2 {
			envVars[kv[0]] = kv[1]
		}
	}
	return envVars
}
