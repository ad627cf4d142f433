package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	HTTPAddr string `yaml:"http_addr"`
	WSAddr   string `yaml:"ws_addr"`

	RedisURL    string `yaml:"redis_url"`
	DatabaseURL string `yaml:"database_url"`
	MigrateDB   bool   `yaml:"migrate_db"`

	MatchTTLSec int `yaml:"match_ttl_sec"`
	QueueTTLSec int `yaml:"queue_ttl_sec"`

	AllowedOrigin string `yaml:"allowed_origin"`
	MessagesDir   string `yaml:"messages_dir"`
}

func (c *AppConfig) MatchTTL() time.Duration { return time.Duration(c.MatchTTLSec) * time.Second }
func (c *AppConfig) QueueTTL() time.Duration { return time.Duration(c.QueueTTLSec) * time.Second }

// Load reads CONFIG_FILE (YAML, optional) and then the environment, which
// wins over the file.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		HTTPAddr:      ":8080",
		WSAddr:        ":8081",
		MatchTTLSec:   86400,
		QueueTTLSec:   600,
		AllowedOrigin: "http://localhost:4200",
	}

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	setString(&cfg.HTTPAddr, "HTTP_ADDR")
	setString(&cfg.WSAddr, "WS_ADDR")
	setString(&cfg.RedisURL, "REDIS_URL")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.AllowedOrigin, "ALLOWED_ORIGIN")
	setString(&cfg.MessagesDir, "MESSAGES_DIR")
	setPositiveInt(&cfg.MatchTTLSec, "MATCH_TTL_SEC")
	setPositiveInt(&cfg.QueueTTLSec, "QUEUE_TTL_SEC")
	if v := strings.TrimSpace(os.Getenv("DB_MIGRATE")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.MigrateDB = b
		}
	}

	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.MatchTTLSec <= 0 || cfg.QueueTTLSec <= 0 {
		return nil, errors.New("MATCH_TTL_SEC and QUEUE_TTL_SEC must be positive")
	}
	return cfg, nil
}

func loadFile(path string, cfg *AppConfig) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setPositiveInt(dst *int, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*dst = n
		}
	}
}
