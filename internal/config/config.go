// NexOps - Client Operations Management API
// Copyright 2026 NexLayer
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexlayer/nexops

// Package config defines the application configuration and its layered
// loader. Precedence is ENV > file > defaults.
package config

import (
	"fmt"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Firewall FirewallConfig `koanf:"firewall"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// SecurityConfig holds authentication, authorization, and rate limit
// settings.
type SecurityConfig struct {
	// JWTSecret signs and verifies bearer tokens. Required, minimum 32
	// characters.
	JWTSecret string `koanf:"jwt_secret"`

	// AdminEmails is the allow-list that grants the owner role when no
	// higher-trust source yields one.
	AdminEmails []string `koanf:"admin_emails"`

	CORSOrigins []string `koanf:"cors_origins"`

	// CasbinPolicyPath overrides the embedded policy when set.
	CasbinPolicyPath string `koanf:"casbin_policy_path"`

	RateLimit RateLimitConfig `koanf:"rate_limit"`
}

// RateLimitConfig holds per-endpoint-class request budgets. Each class
// is counted per client address over a one minute window.
type RateLimitConfig struct {
	Disabled bool `koanf:"disabled"`

	// Intake caps request-intake submissions per minute.
	Intake int `koanf:"intake"`

	// Login caps login attempts per minute.
	Login int `koanf:"login"`

	// API caps all other authenticated calls per minute.
	API int `koanf:"api"`
}

// FirewallConfig holds the request screening denylist.
type FirewallConfig struct {
	// Patterns overrides the built-in denylist when non-empty.
	Patterns []string `koanf:"patterns"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks invariants that would otherwise surface as confusing
// runtime failures.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("security.jwt_secret must be at least 32 characters")
	}
	if !c.Security.RateLimit.Disabled {
		if c.Security.RateLimit.Intake < 1 {
			return fmt.Errorf("security.rate_limit.intake must be at least 1")
		}
		if c.Security.RateLimit.Login < 1 {
			return fmt.Errorf("security.rate_limit.login must be at least 1")
		}
		if c.Security.RateLimit.API < 1 {
			return fmt.Errorf("security.rate_limit.api must be at least 1")
		}
	}
	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
