package domain

// Config is constructed once at process start from the environment and
// passed to every component; no component reads env vars on its own.
type Config struct {
	AWSEnabled   bool
	AzureEnabled bool
	GCPEnabled   bool

	AutoOptimize bool

	CPUThresholdPercent float64
	// MemoryThresholdPercent is accepted from the environment for forward
	// compatibility; no classifier consumes it yet.
	MemoryThresholdPercent float64

	RunIntervalHours int

	ReportDir  string
	ServerAddr string
}
