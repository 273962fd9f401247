package config_test

import (
	"testing"

	"report-service/core/config"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := config.LoadConfig(t.TempDir())
	assert.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "reports", cfg.Storage.Bucket)
	assert.Equal(t, 1000, cfg.Repository.MaxItems)
	assert.Equal(t, 60, cfg.Sync.IntervalSeconds)
	assert.Equal(t, 90, cfg.Sync.RetentionDays)
	assert.True(t, cfg.Sync.SchedulerEnabled)
	assert.Equal(t, "reports", cfg.Reports.ArchivePrefix)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SYNC_ROOT_ID", "root-node-123")
	t.Setenv("DATABASE_DRIVER", "sqlite")

	cfg, err := config.LoadConfig(t.TempDir())
	assert.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "root-node-123", cfg.Sync.RootID)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}
