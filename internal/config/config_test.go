// ABOUTME: Tests for YAML config loading, env expansion and validation
// ABOUTME: Uses temp files written per test

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "gateway.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

const validConfig = `
server:
  http_addr: "localhost:8080"

database:
  path: "/tmp/gateway.db"

auth:
  jwt_secret: "test-secret"
  session_lifetime: "168h"

logging:
  level: "debug"
  format: "json"
`

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", cfg.Server.HTTPAddr)
	assert.Equal(t, "/tmp/gateway.db", cfg.Database.Path)
	assert.Equal(t, "test-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, 168*time.Hour, cfg.Auth.SessionLifetime)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_JWT_SECRET", "from-env")

	cfg, err := Load(writeConfig(t, `
server:
  http_addr: "localhost:8080"
database:
  path: "/tmp/gateway.db"
auth:
  jwt_secret: "${TEST_JWT_SECRET}"
`))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidDuration(t *testing.T) {
	_, err := Load(writeConfig(t, `
server:
  http_addr: "localhost:8080"
database:
  path: "/tmp/gateway.db"
auth:
  jwt_secret: "x"
  session_lifetime: "one week"
`))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing http_addr", func(c *Config) { c.Server.HTTPAddr = "" }},
		{"missing database path", func(c *Config) { c.Database.Path = "" }},
		{"missing jwt secret", func(c *Config) { c.Auth.JWTSecret = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Server:   ServerConfig{HTTPAddr: "localhost:8080"},
				Database: DatabaseConfig{Path: "/tmp/gateway.db"},
				Auth:     AuthConfig{JWTSecret: "x"},
			}
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
