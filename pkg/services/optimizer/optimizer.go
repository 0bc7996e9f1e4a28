package optimizer

import (
	"context"

	"github.com/de-tools/cloud-optimizer/pkg/models/domain"
)

const (
	ProviderAWS   = "aws"
	ProviderAzure = "azure"
	ProviderGCP   = "gcp"
)

// ResourceProvider is one cloud provider's analysis and remediation surface.
type ResourceProvider interface {
	Name() string
	// Analyze enumerates every supported resource kind within the provider's
	// scope, samples and classifies each resource, and returns the findings.
	// An error covers the whole provider; partial results are not returned.
	Analyze(ctx context.Context) (domain.ProviderFindings, error)
	// StopCompute issues the provider's stop/deallocate call for a single
	// compute resource. Stopping an already-stopped resource is benign.
	StopCompute(ctx context.Context, rec domain.ResourceRecord) error
}

// ProviderFactory creates a provider from the process config.
type ProviderFactory func(ctx context.Context, cfg domain.Config) (ResourceProvider, error)
