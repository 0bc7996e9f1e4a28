package config

import (
	"github.com/de-tools/cloud-optimizer/pkg/models/domain"
	"github.com/spf13/viper"
)

const (
	DefaultCPUThresholdPercent    = 10.0
	DefaultMemoryThresholdPercent = 80.0
	DefaultRunIntervalHours       = 6
	DefaultServerAddr             = ":8080"
)

// Load builds the process Config from the environment. A provider is enabled
// by the presence of its primary identifier; absence disables it without
// error.
func Load() domain.Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("CPU_THRESHOLD", DefaultCPUThresholdPercent)
	v.SetDefault("MEMORY_THRESHOLD", DefaultMemoryThresholdPercent)
	v.SetDefault("OPTIMIZATION_INTERVAL_HOURS", DefaultRunIntervalHours)
	v.SetDefault("REPORT_DIR", ".")
	v.SetDefault("SERVER_ADDR", DefaultServerAddr)

	return domain.Config{
		AWSEnabled:             v.GetString("AWS_ACCESS_KEY_ID") != "",
		AzureEnabled:           v.GetString("AZURE_SUBSCRIPTION_ID") != "",
		GCPEnabled:             v.GetString("GOOGLE_CLOUD_PROJECT") != "",
		AutoOptimize:           v.GetBool("AUTO_OPTIMIZE"),
		CPUThresholdPercent:    v.GetFloat64("CPU_THRESHOLD"),
		MemoryThresholdPercent: v.GetFloat64("MEMORY_THRESHOLD"),
		RunIntervalHours:       v.GetInt("OPTIMIZATION_INTERVAL_HOURS"),
		ReportDir:              v.GetString("REPORT_DIR"),
		ServerAddr:             v.GetString("SERVER_ADDR"),
	}
}
