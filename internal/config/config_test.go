package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: "9090"
auth:
  jwt_secret: s3cret
redis:
  addr: localhost:6379
cors:
  allowed_origins: ["https://nextstepz.vn"]
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Address())
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 168*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 10*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, []string{"https://nextstepz.vn"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 120, cfg.RateLimit.PerMinute)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, int64(5<<20), cfg.S3.MaxUploadSize)
}

func TestLoadFromFileRequiresSecret(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"9090\"\n"), 0o600))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestLoadClient(t *testing.T) {
	t.Setenv("COMMUNITY_BASE_URL", "https://api.nextstepz.vn/api/v1/community")
	t.Setenv("COMMUNITY_TOKEN", "tok")

	c, err := LoadClient()
	require.NoError(t, err)
	assert.Equal(t, "https://api.nextstepz.vn/api/v1/community", c.BaseURL)
	assert.Equal(t, "tok", c.Token)
	assert.Equal(t, 30*time.Second, c.Timeout)
}

func TestLoadStorageNeedsNoSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/community")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	s, err := LoadStorage()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/community", s.Database.PostgresDSN)
	assert.Equal(t, "localhost:6379", s.Redis.Addr)
	assert.Equal(t, "community", s.Redis.Prefix)
}
