package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("PORT", "")
	t.Setenv("BLUEPRINT_DB_HOST", "")
	t.Setenv("S3_BUCKET", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("AVATAR_MAX_BYTES", "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Empty(t, cfg.CORSAllowedOrigins)
	assert.Equal(t, int64(5<<20), cfg.AvatarMaxBytes)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.S3.AvatarsEnabled())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("PORT", "9090")
	t.Setenv("BLUEPRINT_DB_HOST", "db")
	t.Setenv("BLUEPRINT_DB_SCHEMA", "app")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("S3_BUCKET", "avatars")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.S3.AvatarsEnabled())
	assert.Contains(t, cfg.DB.DSN(), "host=db")
	assert.Contains(t, cfg.DB.DSN(), "search_path=app")
}

func TestFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"SESSION_SECRET": ""}},
		{"bad port", map[string]string{"SESSION_SECRET": "x", "PORT": "http"}},
		{"port out of range", map[string]string{"SESSION_SECRET": "x", "PORT": "70000"}},
		{"bad avatar limit", map[string]string{"SESSION_SECRET": "x", "AVATAR_MAX_BYTES": "-1"}},
		{"wildcard origin", map[string]string{"SESSION_SECRET": "x", "CORS_ALLOWED_ORIGINS": "https://app.example,https://*"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PORT", "")
			t.Setenv("AVATAR_MAX_BYTES", "")
			t.Setenv("CORS_ALLOWED_ORIGINS", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
