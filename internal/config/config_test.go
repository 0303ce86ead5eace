// NexOps - Client Operations Management API
// Copyright 2026 NexLayer
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexlayer/nexops

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSecret = "config-test-secret-at-least-32-chars!"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", validSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Security.RateLimit.Intake)
	assert.Equal(t, 5, cfg.Security.RateLimit.Login)
	assert.Equal(t, 100, cfg.Security.RateLimit.API)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", validSecret)
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("ADMIN_EMAILS", "ceo@nexlayer.io, ops@nexlayer.io")
	t.Setenv("RATE_LIMIT_INTAKE", "7")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"ceo@nexlayer.io", "ops@nexlayer.io"}, cfg.Security.AdminEmails)
	assert.Equal(t, 7, cfg.Security.RateLimit.Intake)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 7070
security:
  jwt_secret: file-provided-secret-32-characters!!
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 7070
security:
  jwt_secret: file-provided-secret-32-characters!!
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("HTTP_PORT", "6060")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 6060, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := defaultConfig()
		cfg.Security.JWTSecret = validSecret
		return cfg
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("missing jwt secret", func(t *testing.T) {
		cfg := base()
		cfg.Security.JWTSecret = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("short jwt secret", func(t *testing.T) {
		cfg := base()
		cfg.Security.JWTSecret = "short"
		assert.Error(t, cfg.Validate())
	})

	t.Run("invalid port", func(t *testing.T) {
		cfg := base()
		cfg.Server.Port = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("zero rate limit rejected when enabled", func(t *testing.T) {
		cfg := base()
		cfg.Security.RateLimit.Intake = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("zero rate limit allowed when disabled", func(t *testing.T) {
		cfg := base()
		cfg.Security.RateLimit.Disabled = true
		cfg.Security.RateLimit.Intake = 0
		assert.NoError(t, cfg.Validate())
	})
}
