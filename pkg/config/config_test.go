package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 2*time.Minute, cfg.Dashboard.CacheTTL)
	assert.Equal(t, int64(5*1024*1024), cfg.Import.MaxFileSizeBytes)
	assert.Equal(t, "asset.history", cfg.Events.SubjectPrefix)
	assert.Empty(t, cfg.Events.NATSURL)
	assert.Contains(t, cfg.Documents.AllowedMIMEs, "application/pdf")
}

func TestLoadFromEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("PORT", "9090")
	t.Setenv("DASHBOARD_CACHE_TTL", "45s")
	t.Setenv("NATS_URL", "nats://localhost:4222")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test ,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 45*time.Second, cfg.Dashboard.CacheTTL)
	assert.Equal(t, "nats://localhost:4222", cfg.Events.NATSURL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.Equal(t, 3*time.Second, parseDuration("3s", time.Minute))
}

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
