package ocrflow_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ocrflow "github.com/ChinaCraig/DocManage-sub000"
)

func TestDefaultConfig(t *testing.T) {
	cfg := ocrflow.DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 4, cfg.MaxConcurrentTasks)
	assert.Equal(t, 2*time.Minute, cfg.SingleTaskTimeout)
	assert.Equal(t, int64(2048), cfg.MaxMemoryMB)
	assert.Equal(t, 20, cfg.MaxItemsPerBatch)
	assert.True(t, cfg.MonitoringEnabled)
}

func TestConfigForProfile(t *testing.T) {
	img := ocrflow.ConfigForProfile(ocrflow.ProfileImage)
	require.NoError(t, img.Validate())
	assert.Equal(t, 30*time.Second, img.SingleTaskTimeout)
	assert.Equal(t, int64(1024), img.MaxMemoryMB)
	assert.Equal(t, 50, img.MaxItemsPerBatch)

	doc := ocrflow.ConfigForProfile(ocrflow.ProfileDocument)
	require.NoError(t, doc.Validate())
	assert.Equal(t, 5*time.Minute, doc.SingleTaskTimeout)
	assert.Equal(t, int64(4096), doc.MaxMemoryMB)
	assert.Equal(t, 10, doc.MaxItemsPerBatch)

	assert.Equal(t, ocrflow.DefaultConfig(), ocrflow.ConfigForProfile("bogus"))
}

func TestConfigValidate(t *testing.T) {
	cfg := ocrflow.DefaultConfig()
	cfg.MaxConcurrentTasks = -1

	err := cfg.Validate()
	var cfgErr *ocrflow.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "MaxConcurrentTasks", cfgErr.Field)
	assert.Contains(t, err.Error(), "MaxConcurrentTasks")
}
