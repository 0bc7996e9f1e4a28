package report

import (
	"testing"
	"time"

	"github.com/de-tools/cloud-optimizer/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lowUtilCompute(id, name string, avg float64) domain.Finding {
	return domain.Finding{
		Record: domain.ResourceRecord{
			ID:   id,
			Name: name,
			Kind: domain.KindCompute,
		},
		Issue:         domain.IssueLowUtilization,
		AvgCPUPercent: &avg,
	}
}

func TestAggregate(t *testing.T) {
	t.Run("no configured providers yields empty report", func(t *testing.T) {
		empty := domain.NewProviderFindings(domain.StatusNotConfigured)

		rep := Aggregate(empty, empty, empty)

		assert.Equal(t, float64(0), rep.EstimatedMonthlySavings)
		assert.Equal(t, []string{}, rep.Recommendations)
		assert.Empty(t, rep.AWS.Compute)
		assert.Empty(t, rep.Azure.Compute)
		assert.Empty(t, rep.GCP.Compute)
	})

	t.Run("one recommendation per flagged compute finding", func(t *testing.T) {
		aws := domain.NewProviderFindings(domain.StatusOK)
		aws.Compute = append(aws.Compute, lowUtilCompute("i-1234567890abcdef0", "web", 4.0))

		azure := domain.NewProviderFindings(domain.StatusOK)
		azure.Compute = append(azure.Compute, lowUtilCompute("/subscriptions/s/resourceGroups/rg/providers/Microsoft.Compute/virtualMachines/vm-1", "vm-1", 2.5))

		gcp := domain.NewProviderFindings(domain.StatusOK)
		gcp.Compute = append(gcp.Compute, lowUtilCompute("123", "worker-1", 1.0))

		rep := Aggregate(aws, azure, gcp)

		require.Len(t, rep.Recommendations, 3)
		assert.Equal(t, float64(50+40+45), rep.EstimatedMonthlySavings)
		assert.Contains(t, rep.Recommendations[0], "AWS EC2 instance i-1234567890abcdef0")
		assert.Contains(t, rep.Recommendations[1], "Azure VM vm-1")
		assert.Contains(t, rep.Recommendations[2], "GCP instance worker-1")
	})

	t.Run("non-compute findings do not add savings", func(t *testing.T) {
		aws := domain.NewProviderFindings(domain.StatusOK)
		aws.BlockStorage = append(aws.BlockStorage, domain.Finding{
			Record: domain.ResourceRecord{ID: "vol-1", Kind: domain.KindBlockStorage},
			Issue:  domain.IssueUnattachedVolume,
		})
		aws.ObjectStorage = append(aws.ObjectStorage, domain.Finding{
			Record: domain.ResourceRecord{ID: "bucket-1", Kind: domain.KindObjectStorage},
			Issue:  domain.IssueMissingLifecycle,
		})
		aws.Databases = append(aws.Databases, domain.Finding{
			Record: domain.ResourceRecord{ID: "db-1", Kind: domain.KindDatabase},
			Issue:  domain.IssueLowUtilization,
		})

		rep := Aggregate(aws, domain.NewProviderFindings(domain.StatusNotConfigured), domain.NewProviderFindings(domain.StatusNotConfigured))

		assert.Equal(t, float64(0), rep.EstimatedMonthlySavings)
		assert.Empty(t, rep.Recommendations)
		// The findings themselves are preserved in the report.
		assert.Len(t, rep.AWS.BlockStorage, 1)
		assert.Len(t, rep.AWS.ObjectStorage, 1)
		assert.Len(t, rep.AWS.Databases, 1)
	})

	t.Run("failed provider sections pass through", func(t *testing.T) {
		failed := domain.NewProviderFindings(domain.StatusFailed)
		failed.Error = "authentication failed"

		rep := Aggregate(failed, domain.NewProviderFindings(domain.StatusOK), domain.NewProviderFindings(domain.StatusNotConfigured))

		assert.Equal(t, domain.StatusFailed, rep.AWS.Status)
		assert.Equal(t, "authentication failed", rep.AWS.Error)
		assert.Equal(t, domain.StatusOK, rep.Azure.Status)
		assert.Equal(t, domain.StatusNotConfigured, rep.GCP.Status)
	})

	t.Run("timestamp is sortable zoneless UTC", func(t *testing.T) {
		rep := Aggregate(
			domain.NewProviderFindings(domain.StatusNotConfigured),
			domain.NewProviderFindings(domain.StatusNotConfigured),
			domain.NewProviderFindings(domain.StatusNotConfigured),
		)

		parsed, err := time.Parse(domain.TimestampLayout, rep.Timestamp)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().UTC(), parsed, time.Minute)
	})
}
