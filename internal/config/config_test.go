package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("REMOTE_BASE_URL", "https://pos.example.com/api")
	t.Setenv("TOAST_TTL_MILLIS", "")
	t.Setenv("BRANCH_CACHE_BACKEND", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://pos.example.com/api", cfg.Remote.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Toast.TTL())
	assert.Equal(t, "memory", cfg.BranchCache.Backend)
	assert.Equal(t, 5*time.Minute, cfg.BranchCache.TTL())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("REMOTE_BASE_URL", "https://pos.example.com/api")
	t.Setenv("REMOTE_TENANT_SLUG", "downtown")
	t.Setenv("TOAST_TTL_MILLIS", "1500")
	t.Setenv("BULK_DELETE_CONCURRENCY", "not-a-number")
	t.Setenv("APP_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "downtown", cfg.Remote.TenantSlug)
	assert.Equal(t, 1500*time.Millisecond, cfg.Toast.TTL())
	assert.Equal(t, 8, cfg.Manager.BulkDeleteConcurrency)
	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
}

func TestLoadRejectsBadRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "x")

	_, err := Load()
	require.Error(t, err)
}
