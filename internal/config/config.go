package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    Server    `yaml:"server"`
	Log       Log       `yaml:"log"`
	Redis     Redis     `yaml:"redis"`
	Postgres  Postgres  `yaml:"postgres"`
	Quiz      Quiz      `yaml:"quiz"`
	Auth      Auth      `yaml:"auth"`
	RateLimit RateLimit `yaml:"rate_limit"`
	// AllowList entries are registered at startup; existing emails are kept.
	AllowList []AllowedEntry `yaml:"allow_list"`
}

type Server struct {
	Port string `yaml:"port" env:"PORT"`
}

type Log struct {
	Level string `yaml:"level" env:"LOG_LEVEL"`
	File  string `yaml:"file" env:"LOG_FILE"`
	Dev   bool   `yaml:"dev" env:"LOG_DEV"`
}

type Redis struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
	TTL      string `yaml:"ttl" env:"REDIS_TTL"`
}

type Postgres struct {
	URL string `yaml:"url" env:"POSTGRES_URL"`
}

type Quiz struct {
	ActiveID      string  `yaml:"active_id" env:"QUIZ_ACTIVE_ID"`
	QuestionCount int     `yaml:"question_count" env:"QUIZ_QUESTION_COUNT"`
	GraceSeconds  float64 `yaml:"grace_seconds" env:"QUIZ_GRACE_SECONDS"`
	TTL           string  `yaml:"ttl" env:"QUIZ_TTL"`
	SeedFile      string  `yaml:"seed_file" env:"QUIZ_SEED_FILE"`
}

type Auth struct {
	JWTSecret    string `yaml:"jwt_secret" env:"AUTH_JWT_SECRET"`
	TokenTTL     string `yaml:"token_ttl" env:"AUTH_TOKEN_TTL"`
	Issuer       string `yaml:"issuer" env:"AUTH_ISSUER"`
	AdminKeyHash string `yaml:"admin_key_hash" env:"AUTH_ADMIN_KEY_HASH"`
	SecureCookie bool   `yaml:"secure_cookie" env:"AUTH_SECURE_COOKIE"`
}

type RateLimit struct {
	AuthPerMinute int `yaml:"auth_per_minute" env:"RATE_LIMIT_AUTH_PER_MINUTE"`
	APIPerMinute  int `yaml:"api_per_minute" env:"RATE_LIMIT_API_PER_MINUTE"`
}

type AllowedEntry struct {
	Email string `yaml:"email"`
	Name  string `yaml:"name"`
	Phone string `yaml:"phone"`
}

const (
	IssuerJWT     = "jwt"
	IssuerSession = "session"
)

// Load reads YAML config from path, then applies environment overrides and defaults.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, err
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing environment: %w", err)
	}
	cfg.applyDefaults()
	return cfg, cfg.validate()
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Quiz.ActiveID == "" {
		c.Quiz.ActiveID = "active"
	}
	if c.Quiz.QuestionCount <= 0 {
		c.Quiz.QuestionCount = 15
	}
	if c.Quiz.GraceSeconds <= 0 {
		c.Quiz.GraceSeconds = 2
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = IssuerJWT
	}
	if c.RateLimit.AuthPerMinute <= 0 {
		c.RateLimit.AuthPerMinute = 20
	}
	if c.RateLimit.APIPerMinute <= 0 {
		c.RateLimit.APIPerMinute = 120
	}
}

func (c Config) validate() error {
	switch c.Auth.Issuer {
	case IssuerJWT:
		if c.Auth.JWTSecret == "" {
			return errors.New("auth.jwt_secret is required when auth.issuer is jwt")
		}
	case IssuerSession:
	default:
		return fmt.Errorf("unknown auth.issuer %q", c.Auth.Issuer)
	}
	return nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
