package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 72*time.Hour, cfg.JWT.Expire)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, 4, cfg.Notifier.Workers)
	assert.Empty(t, cfg.Admin.UserIDs)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "c.yaml")
	require.NoError(t, os.WriteFile(p, []byte("server:\n  port: 9000\nredis:\n  addr: \"127.0.0.1:6379\"\nadmin:\n  user_ids: [\"u-1\", \"u-2\"]\n"), 0o600))
	t.Setenv("CONFIG_PATH", p)
	t.Setenv("TIEBA_DATABASE_DRIVER", "postgres")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, ":9000", cfg.Server.Addr())
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "notify", cfg.Redis.ChannelPrefix)
	assert.Equal(t, []string{"u-1", "u-2"}, cfg.Admin.UserIDs)
}
