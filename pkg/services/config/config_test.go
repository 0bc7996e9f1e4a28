package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func clearProviderEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AZURE_SUBSCRIPTION_ID", "")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")
	t.Setenv("AUTO_OPTIMIZE", "")
	t.Setenv("CPU_THRESHOLD", "")
	t.Setenv("MEMORY_THRESHOLD", "")
	t.Setenv("OPTIMIZATION_INTERVAL_HOURS", "")
	t.Setenv("REPORT_DIR", "")
	t.Setenv("SERVER_ADDR", "")
}

func TestLoad(t *testing.T) {
	t.Run("defaults with nothing configured", func(t *testing.T) {
		clearProviderEnv(t)

		cfg := Load()

		assert.False(t, cfg.AWSEnabled)
		assert.False(t, cfg.AzureEnabled)
		assert.False(t, cfg.GCPEnabled)
		assert.False(t, cfg.AutoOptimize)
		assert.Equal(t, 10.0, cfg.CPUThresholdPercent)
		assert.Equal(t, 80.0, cfg.MemoryThresholdPercent)
		assert.Equal(t, 6, cfg.RunIntervalHours)
		assert.Equal(t, ".", cfg.ReportDir)
		assert.Equal(t, ":8080", cfg.ServerAddr)
	})

	t.Run("credential presence enables a provider", func(t *testing.T) {
		clearProviderEnv(t)
		t.Setenv("AWS_ACCESS_KEY_ID", "AKIAEXAMPLE")
		t.Setenv("GOOGLE_CLOUD_PROJECT", "my-project")

		cfg := Load()

		assert.True(t, cfg.AWSEnabled)
		assert.False(t, cfg.AzureEnabled)
		assert.True(t, cfg.GCPEnabled)
	})

	t.Run("overrides take effect", func(t *testing.T) {
		clearProviderEnv(t)
		t.Setenv("AUTO_OPTIMIZE", "true")
		t.Setenv("CPU_THRESHOLD", "25.5")
		t.Setenv("OPTIMIZATION_INTERVAL_HOURS", "12")
		t.Setenv("REPORT_DIR", "/var/reports")
		t.Setenv("SERVER_ADDR", ":9090")

		cfg := Load()

		assert.True(t, cfg.AutoOptimize)
		assert.Equal(t, 25.5, cfg.CPUThresholdPercent)
		assert.Equal(t, 12, cfg.RunIntervalHours)
		assert.Equal(t, "/var/reports", cfg.ReportDir)
		assert.Equal(t, ":9090", cfg.ServerAddr)
	})
}
