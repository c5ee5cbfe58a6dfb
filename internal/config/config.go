// Package config loads runtime settings for the API server from the
// environment, with an optional .env file layered underneath.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DBConfig holds the PostgreSQL connection settings.
type DBConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Schema   string
	LogLevel string // silent, error, warn, info
}

// S3Config describes the S3-compatible bucket used for avatars. An empty
// Bucket disables avatar uploads.
type S3Config struct {
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

// Config holds runtime settings for the API server.
type Config struct {
	Port          int
	DB            DBConfig
	SessionSecret string
	LoginURL      string
	// CORSAllowedOrigins lists exact origins; empty disables CORS.
	CORSAllowedOrigins []string
	S3                 S3Config
	AvatarMaxBytes     int64
	ShutdownTimeout    time.Duration
}

// Load reads .env (if present) and then the process environment.
// Variables already set in the environment win over .env entries.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		DB: DBConfig{
			Host:     getenv("BLUEPRINT_DB_HOST", "localhost"),
			Port:     getenv("BLUEPRINT_DB_PORT", "5432"),
			Username: getenv("BLUEPRINT_DB_USERNAME", "postgres"),
			Password: os.Getenv("BLUEPRINT_DB_PASSWORD"),
			Database: getenv("BLUEPRINT_DB_DATABASE", "todos"),
			Schema:   os.Getenv("BLUEPRINT_DB_SCHEMA"),
			LogLevel: getenv("DB_LOG_LEVEL", "warn"),
		},
		SessionSecret:      os.Getenv("SESSION_SECRET"),
		LoginURL:           getenv("LOGIN_URL", "/login"),
		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		S3: S3Config{
			Endpoint:      os.Getenv("S3_ENDPOINT"),
			Region:        getenv("S3_REGION", "us-east-1"),
			Bucket:        os.Getenv("S3_BUCKET"),
			AccessKey:     os.Getenv("S3_ACCESS_KEY"),
			SecretKey:     os.Getenv("S3_SECRET_KEY"),
			PublicBaseURL: os.Getenv("S3_PUBLIC_BASE_URL"),
		},
		ShutdownTimeout: 5 * time.Second,
	}

	port, err := strconv.Atoi(getenv("PORT", "8080"))
	if err != nil || port <= 0 || port > 65535 {
		return nil, fmt.Errorf("invalid PORT %q", os.Getenv("PORT"))
	}
	cfg.Port = port

	maxBytes, err := strconv.ParseInt(getenv("AVATAR_MAX_BYTES", "5242880"), 10, 64)
	if err != nil || maxBytes <= 0 {
		return nil, fmt.Errorf("invalid AVATAR_MAX_BYTES %q", os.Getenv("AVATAR_MAX_BYTES"))
	}
	cfg.AvatarMaxBytes = maxBytes

	if cfg.SessionSecret == "" {
		return nil, errors.New("SESSION_SECRET is required")
	}

	// Cross-origin requests carry the session cookie, so every allowed
	// origin must be spelled out.
	for _, o := range cfg.CORSAllowedOrigins {
		if strings.Contains(o, "*") {
			return nil, fmt.Errorf("invalid CORS_ALLOWED_ORIGINS entry %q: wildcards are not allowed", o)
		}
	}

	return cfg, nil
}

// DSN returns the key/value connection string understood by pgx.
func (c DBConfig) DSN() string {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.Host, c.Username, c.Password, c.Database, c.Port)
	if c.Schema != "" {
		dsn += " search_path=" + c.Schema
	}
	return dsn
}

// AvatarsEnabled reports whether an avatar bucket is configured.
func (c S3Config) AvatarsEnabled() bool {
	return c.Bucket != ""
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
