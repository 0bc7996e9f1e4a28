package domain

type Issue string

const (
	IssueLowUtilization   Issue = "low_utilization"
	IssueUnattachedVolume Issue = "unattached_volume"
	IssueMissingLifecycle Issue = "missing_lifecycle_policy"
)

// Finding pairs a resource with the verdict computed for it in one run.
// AvgCPUPercent is set only for utilization verdicts; presence checks
// (unattached volumes, missing lifecycle policies) leave it nil so report
// readers can tell "no metric involved" apart from "zero utilization".
type Finding struct {
	Record        ResourceRecord `json:"record"`
	Issue         Issue          `json:"issue,omitempty"`
	AvgCPUPercent *float64       `json:"avg_cpu_percent,omitempty"`
}

type ProviderStatus string

const (
	StatusOK            ProviderStatus = "ok"
	StatusNotConfigured ProviderStatus = "not_configured"
	StatusFailed        ProviderStatus = "failed"
)

// ProviderFindings is the normalized per-provider result shape. Status lets
// a report reader distinguish "nothing flagged" from "collection failed" and
// "provider disabled". SpendSummary is an optional map of actual per-service
// spend over the last 30 days, separate from the placeholder savings
// estimates in the report.
type ProviderFindings struct {
	Status        ProviderStatus     `json:"status"`
	Error         string             `json:"error,omitempty"`
	Compute       []Finding          `json:"compute"`
	BlockStorage  []Finding          `json:"block_storage"`
	Databases     []Finding          `json:"databases"`
	ObjectStorage []Finding          `json:"object_storage"`
	SpendSummary  map[string]float64 `json:"spend_summary,omitempty"`
}

func NewProviderFindings(status ProviderStatus) ProviderFindings {
	return ProviderFindings{
		Status:        status,
		Compute:       []Finding{},
		BlockStorage:  []Finding{},
		Databases:     []Finding{},
		ObjectStorage: []Finding{},
	}
}
