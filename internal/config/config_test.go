package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  host: 127.0.0.1\n"))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr())
	assert.Equal(t, uint64(100000), cfg.Limits.MaxRing)
	assert.Equal(t, 1000, cfg.Limits.MaxBatch)
	assert.Equal(t, 4096, cfg.Cache.Size)
	assert.Equal(t, "hexspiral:", cfg.Redis.KeyPrefix)
	assert.Equal(t, time.Hour, cfg.Redis.TTL())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Redis.Enabled)
	assert.Empty(t, cfg.JWT.Secret)
}

func TestLoadKeepsExplicitValues(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  port: 9000
jwt:
  secret: s3cret
  issuer: tests
redis:
  enabled: true
  ttl_minutes: 5
limits:
  max_ring: 50
  max_batch: 3
log:
  level: debug
`))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, "tests", cfg.JWT.Issuer)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Redis.TTL())
	assert.Equal(t, uint64(50), cfg.Limits.MaxRing)
	assert.Equal(t, 3, cfg.Limits.MaxBatch)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "server: [unterminated"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "data/spiral.db", cfg.Database.Path)
}
