package report

import (
	"fmt"
	"time"

	"github.com/de-tools/cloud-optimizer/pkg/models/domain"
)

// Flat per-instance monthly savings placeholders. These are labeled
// estimates, not computed from billing data.
const (
	awsComputeSavings   = 50
	azureComputeSavings = 40
	gcpComputeSavings   = 45
)

// Aggregate merges the three providers' findings into a Report, deriving one
// recommendation per flagged compute finding and summing the placeholder
// savings. It is total over any combination of (possibly empty) inputs.
func Aggregate(aws, azure, gcp domain.ProviderFindings) *domain.Report {
	rep := &domain.Report{
		Timestamp:       time.Now().UTC().Format(domain.TimestampLayout),
		AWS:             aws,
		Azure:           azure,
		GCP:             gcp,
		Recommendations: []string{},
	}

	for _, f := range aws.Compute {
		if f.Issue != domain.IssueLowUtilization {
			continue
		}
		rep.EstimatedMonthlySavings += awsComputeSavings
		rep.Recommendations = append(rep.Recommendations,
			fmt.Sprintf("Consider stopping or downsizing AWS EC2 instance %s", f.Record.ID))
	}

	for _, f := range azure.Compute {
		if f.Issue != domain.IssueLowUtilization {
			continue
		}
		rep.EstimatedMonthlySavings += azureComputeSavings
		rep.Recommendations = append(rep.Recommendations,
			fmt.Sprintf("Consider stopping or downsizing Azure VM %s", f.Record.Name))
	}

	for _, f := range gcp.Compute {
		if f.Issue != domain.IssueLowUtilization {
			continue
		}
		rep.EstimatedMonthlySavings += gcpComputeSavings
		rep.Recommendations = append(rep.Recommendations,
			fmt.Sprintf("Consider stopping or downsizing GCP instance %s", f.Record.Name))
	}

	return rep
}
