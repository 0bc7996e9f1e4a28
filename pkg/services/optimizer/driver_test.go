package optimizer

import (
	"context"
	"errors"
	"testing"

	"github.com/de-tools/cloud-optimizer/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockProvider struct {
	mock.Mock
	name string
}

func (m *mockProvider) Name() string {
	return m.name
}

func (m *mockProvider) Analyze(ctx context.Context) (domain.ProviderFindings, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.ProviderFindings), args.Error(1)
}

func (m *mockProvider) StopCompute(ctx context.Context, rec domain.ResourceRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

type mockSink struct {
	mock.Mock
}

func (m *mockSink) Save(rep *domain.Report, filename string) (string, error) {
	args := m.Called(rep, filename)
	return args.String(0), args.Error(1)
}

func staticFactory(p ResourceProvider) ProviderFactory {
	return func(context.Context, domain.Config) (ResourceProvider, error) {
		return p, nil
	}
}

func failingFactory(err error) ProviderFactory {
	return func(context.Context, domain.Config) (ResourceProvider, error) {
		return nil, err
	}
}

func okSink() *mockSink {
	sink := new(mockSink)
	sink.On("Save", mock.Anything, mock.Anything).Return("optimization_report_20240101_000000.json", nil)
	return sink
}

func awsFindingsWith(compute ...domain.Finding) domain.ProviderFindings {
	findings := domain.NewProviderFindings(domain.StatusOK)
	findings.Compute = append(findings.Compute, compute...)
	return findings
}

func lowUtilFinding(id string, avg float64) domain.Finding {
	return domain.Finding{
		Record:        domain.ResourceRecord{ID: id, Name: id, Kind: domain.KindCompute},
		Issue:         domain.IssueLowUtilization,
		AvgCPUPercent: &avg,
	}
}

func TestDriver_RunOnce(t *testing.T) {
	ctx := context.Background()

	t.Run("no configured providers yields empty report", func(t *testing.T) {
		driver := NewDriver(domain.Config{}, NewRegistry(nil), okSink())

		rep, err := driver.RunOnce(ctx)
		require.NoError(t, err)

		assert.Equal(t, domain.StatusNotConfigured, rep.AWS.Status)
		assert.Equal(t, domain.StatusNotConfigured, rep.Azure.Status)
		assert.Equal(t, domain.StatusNotConfigured, rep.GCP.Status)
		assert.Equal(t, float64(0), rep.EstimatedMonthlySavings)
		assert.Equal(t, []string{}, rep.Recommendations)
	})

	t.Run("provider failure does not affect the others", func(t *testing.T) {
		awsProvider := &mockProvider{name: ProviderAWS}
		awsProvider.On("Analyze", mock.Anything).
			Return(domain.ProviderFindings{}, errors.New("authentication failure"))

		azureProvider := &mockProvider{name: ProviderAzure}
		azureProvider.On("Analyze", mock.Anything).
			Return(awsFindingsWith(lowUtilFinding("vm-1", 3.0)), nil)

		driver := NewDriver(
			domain.Config{AWSEnabled: true, AzureEnabled: true},
			NewRegistry(map[string]ProviderFactory{
				ProviderAWS:   staticFactory(awsProvider),
				ProviderAzure: staticFactory(azureProvider),
			}),
			okSink(),
		)

		rep, err := driver.RunOnce(ctx)
		require.NoError(t, err)

		assert.Equal(t, domain.StatusFailed, rep.AWS.Status)
		assert.Contains(t, rep.AWS.Error, "authentication failure")
		assert.Empty(t, rep.AWS.Compute)

		assert.Equal(t, domain.StatusOK, rep.Azure.Status)
		require.Len(t, rep.Azure.Compute, 1)
		assert.Equal(t, domain.StatusNotConfigured, rep.GCP.Status)
	})

	t.Run("provider construction failure degrades to failed section", func(t *testing.T) {
		driver := NewDriver(
			domain.Config{GCPEnabled: true},
			NewRegistry(map[string]ProviderFactory{
				ProviderGCP: failingFactory(errors.New("no credentials file")),
			}),
			okSink(),
		)

		rep, err := driver.RunOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusFailed, rep.GCP.Status)
		assert.Contains(t, rep.GCP.Error, "no credentials file")
	})

	t.Run("repeated analysis of unchanged state yields identical findings", func(t *testing.T) {
		awsProvider := &mockProvider{name: ProviderAWS}
		awsProvider.On("Analyze", mock.Anything).
			Return(awsFindingsWith(lowUtilFinding("i-1", 4.0), lowUtilFinding("i-2", 7.5)), nil)

		driver := NewDriver(
			domain.Config{AWSEnabled: true},
			NewRegistry(map[string]ProviderFactory{ProviderAWS: staticFactory(awsProvider)}),
			okSink(),
		)

		first, err := driver.RunOnce(ctx)
		require.NoError(t, err)
		second, err := driver.RunOnce(ctx)
		require.NoError(t, err)

		assert.Equal(t, first.AWS, second.AWS)
		assert.Equal(t, first.Recommendations, second.Recommendations)
		assert.Equal(t, first.EstimatedMonthlySavings, second.EstimatedMonthlySavings)
	})

	t.Run("report save failure fails the run", func(t *testing.T) {
		sink := new(mockSink)
		sink.On("Save", mock.Anything, mock.Anything).Return("", errors.New("disk full"))

		driver := NewDriver(domain.Config{}, NewRegistry(nil), sink)

		_, err := driver.RunOnce(ctx)
		assert.ErrorContains(t, err, "failed to save report")
	})

	t.Run("last report is retained", func(t *testing.T) {
		driver := NewDriver(domain.Config{}, NewRegistry(nil), okSink())

		assert.Nil(t, driver.LastReport())
		rep, err := driver.RunOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, rep, driver.LastReport())
	})
}

func TestDriver_Remediation(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled by default", func(t *testing.T) {
		awsProvider := &mockProvider{name: ProviderAWS}
		awsProvider.On("Analyze", mock.Anything).
			Return(awsFindingsWith(lowUtilFinding("i-1", 4.0)), nil)

		driver := NewDriver(
			domain.Config{AWSEnabled: true},
			NewRegistry(map[string]ProviderFactory{ProviderAWS: staticFactory(awsProvider)}),
			okSink(),
		)

		_, err := driver.RunOnce(ctx)
		require.NoError(t, err)

		awsProvider.AssertNotCalled(t, "StopCompute", mock.Anything, mock.Anything)
		// Report-only runs analyze each provider exactly once.
		awsProvider.AssertNumberOfCalls(t, "Analyze", 1)
	})

	t.Run("stops flagged compute when auto-optimize is enabled", func(t *testing.T) {
		awsProvider := &mockProvider{name: ProviderAWS}
		findings := awsFindingsWith(lowUtilFinding("i-1", 4.0), lowUtilFinding("i-2", 2.0))
		findings.BlockStorage = append(findings.BlockStorage, domain.Finding{
			Record: domain.ResourceRecord{ID: "vol-1", Kind: domain.KindBlockStorage},
			Issue:  domain.IssueUnattachedVolume,
		})
		awsProvider.On("Analyze", mock.Anything).Return(findings, nil)
		awsProvider.On("StopCompute", mock.Anything, mock.Anything).Return(nil)

		driver := NewDriver(
			domain.Config{AWSEnabled: true, AutoOptimize: true},
			NewRegistry(map[string]ProviderFactory{ProviderAWS: staticFactory(awsProvider)}),
			okSink(),
		)

		_, err := driver.RunOnce(ctx)
		require.NoError(t, err)

		// Findings are re-derived fresh for remediation.
		awsProvider.AssertNumberOfCalls(t, "Analyze", 2)
		awsProvider.AssertNumberOfCalls(t, "StopCompute", 2)
		awsProvider.AssertCalled(t, "StopCompute", mock.Anything, findings.Compute[0].Record)
		awsProvider.AssertCalled(t, "StopCompute", mock.Anything, findings.Compute[1].Record)
		// Block storage is flag-only, never remediated.
		awsProvider.AssertNotCalled(t, "StopCompute", mock.Anything, findings.BlockStorage[0].Record)
	})

	t.Run("a failed stop does not abort the remaining stops", func(t *testing.T) {
		awsProvider := &mockProvider{name: ProviderAWS}
		awsProvider.On("Analyze", mock.Anything).
			Return(awsFindingsWith(lowUtilFinding("i-1", 4.0), lowUtilFinding("i-2", 2.0)), nil)
		awsProvider.On("StopCompute", mock.Anything, mock.MatchedBy(func(rec domain.ResourceRecord) bool {
			return rec.ID == "i-1"
		})).Return(errors.New("instance state changed"))
		awsProvider.On("StopCompute", mock.Anything, mock.MatchedBy(func(rec domain.ResourceRecord) bool {
			return rec.ID == "i-2"
		})).Return(nil)

		driver := NewDriver(
			domain.Config{AWSEnabled: true, AutoOptimize: true},
			NewRegistry(map[string]ProviderFactory{ProviderAWS: staticFactory(awsProvider)}),
			okSink(),
		)

		_, err := driver.RunOnce(ctx)
		require.NoError(t, err)
		awsProvider.AssertNumberOfCalls(t, "StopCompute", 2)
	})
}

func TestDriver_Busy(t *testing.T) {
	driver := NewDriver(domain.Config{}, NewRegistry(nil), okSink())
	assert.False(t, driver.Busy())
}
