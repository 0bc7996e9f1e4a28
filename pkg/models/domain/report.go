package domain

// Report is the outcome of one full run: the three providers' findings plus
// the derived recommendation list and the summed savings estimate. Savings
// figures are flat per-resource placeholders, not billing data.
type Report struct {
	Timestamp               string           `json:"timestamp"`
	AWS                     ProviderFindings `json:"aws"`
	Azure                   ProviderFindings `json:"azure"`
	GCP                     ProviderFindings `json:"gcp"`
	EstimatedMonthlySavings float64          `json:"estimated_monthly_savings"`
	Recommendations         []string         `json:"recommendations"`
}

// TimestampLayout is a sortable, zoneless UTC form.
const TimestampLayout = "2006-01-02T15:04:05"
