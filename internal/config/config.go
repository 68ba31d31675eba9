// Package config is the typekeeper configuration: the core bot settings
// plus database, reminders, caching, sessions and the health listener.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	coreconfig "github.com/m3rciful/typekeeper/core/config"
	coredatabase "github.com/m3rciful/typekeeper/core/database"
)

const (
	DefaultTimezone   = "Europe/Moscow"
	DefaultCacheTTL   = 5 * time.Minute
	DefaultSessionTTL = 24 * time.Hour

	SessionsMemory = "memory"
	SessionsRedis  = "redis"
)

// RemindersConfig controls the reminder scanner.
type RemindersConfig struct {
	// Timezone is the zone schedule and deadline times are written in.
	Timezone string `yaml:"timezone" envconfig:"REMINDERS_TIMEZONE"`
	// Enabled defaults to true; a pointer keeps an explicit false apart from absent.
	Enabled *bool `yaml:"enabled" envconfig:"REMINDERS_ENABLED"`
	// Spec is a standard 5-field cron expression.
	Spec string `yaml:"spec" envconfig:"REMINDERS_SPEC"`

	location *time.Location
}

// Location returns the parsed Timezone. Valid after Normalize.
func (r RemindersConfig) Location() *time.Location {
	if r.location == nil {
		return time.UTC
	}
	return r.location
}

// On reports whether reminders should run.
func (r RemindersConfig) On() bool {
	return r.Enabled == nil || *r.Enabled
}

type CacheConfig struct {
	TTL time.Duration `yaml:"ttl" envconfig:"CACHE_TTL"`
}

// SessionsConfig selects where in-progress conversations live.
type SessionsConfig struct {
	Backend  string        `yaml:"backend" envconfig:"SESSIONS_BACKEND"`
	TTL      time.Duration `yaml:"ttl" envconfig:"SESSIONS_TTL"`
	RedisURL string        `yaml:"redis_url" envconfig:"REDIS_URL"`
	Prefix   string        `yaml:"prefix" envconfig:"SESSIONS_PREFIX"`
}

// HTTPConfig configures the health listener; an empty Listen disables it.
type HTTPConfig struct {
	Listen string `yaml:"listen" envconfig:"HTTP_LISTEN"`
}

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database  coredatabase.Config `yaml:"database"`
	Reminders RemindersConfig     `yaml:"reminders"`
	Cache     CacheConfig         `yaml:"cache"`
	Sessions  SessionsConfig      `yaml:"sessions"`
	HTTP      HTTPConfig          `yaml:"http"`
}

// CoreConfig exposes the embedded core section.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// Load reads .env (when present), the YAML file at path and the
// environment, then validates the result. Any error is fatal for startup.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates every section and fills defaults.
func (c *Config) Normalize() error {
	if err := coreconfig.Normalize(&c.Config); err != nil {
		return err
	}
	if err := c.Database.Normalize(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	tz := strings.TrimSpace(c.Reminders.Timezone)
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("config: invalid reminders.timezone %q: %w", tz, err)
	}
	c.Reminders.Timezone, c.Reminders.location = tz, loc
	if strings.TrimSpace(c.Reminders.Spec) == "" {
		c.Reminders.Spec = "* * * * *"
	}

	if c.Cache.TTL <= 0 {
		c.Cache.TTL = DefaultCacheTTL
	}

	if c.Sessions.TTL <= 0 {
		c.Sessions.TTL = DefaultSessionTTL
	}
	if c.Sessions.Prefix == "" {
		c.Sessions.Prefix = "typekeeper:session:"
	}
	switch strings.ToLower(strings.TrimSpace(c.Sessions.Backend)) {
	case "", SessionsMemory:
		c.Sessions.Backend = SessionsMemory
	case SessionsRedis:
		c.Sessions.Backend = SessionsRedis
		if strings.TrimSpace(c.Sessions.RedisURL) == "" {
			return errors.New("config: sessions.redis_url (REDIS_URL) is required for the redis backend")
		}
	default:
		return fmt.Errorf("config: invalid sessions.backend %q; allowed: memory, redis", c.Sessions.Backend)
	}

	c.HTTP.Listen = strings.TrimSpace(c.HTTP.Listen)
	return nil
}
