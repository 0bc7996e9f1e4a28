package azure

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v4"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/costmanagement/armcostmanagement"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/monitor/armmonitor"
	"github.com/rs/zerolog"

	"github.com/de-tools/cloud-optimizer/pkg/models/domain"
	"github.com/de-tools/cloud-optimizer/pkg/services/optimizer"
)

type Provider struct {
	subscriptionID string
	vms            *armcompute.VirtualMachinesClient
	metrics        *armmonitor.MetricsClient
	costFactory    *armcostmanagement.ClientFactory
	classifier     optimizer.Classifier
}

func ProviderFactory(_ context.Context, cfg domain.Config) (optimizer.ResourceProvider, error) {
	azCfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	vms, err := armcompute.NewVirtualMachinesClient(azCfg.SubscriptionID, azCfg.Credentials, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure compute client: %w", err)
	}

	metrics, err := armmonitor.NewMetricsClient(azCfg.Credentials, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure monitor client: %w", err)
	}

	costFactory, err := armcostmanagement.NewClientFactory(azCfg.Credentials, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure cost management client: %w", err)
	}

	return &Provider{
		subscriptionID: azCfg.SubscriptionID,
		vms:            vms,
		metrics:        metrics,
		costFactory:    costFactory,
		classifier:     optimizer.NewClassifier(cfg.CPUThresholdPercent),
	}, nil
}

func (p *Provider) Name() string {
	return optimizer.ProviderAzure
}

func (p *Provider) Analyze(ctx context.Context) (domain.ProviderFindings, error) {
	findings := domain.NewProviderFindings(domain.StatusOK)

	pager := p.vms.NewListAllPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return domain.ProviderFindings{}, fmt.Errorf("failed to list Azure VMs: %w", err)
		}

		for _, vm := range page.Value {
			if vm.ID == nil || vm.Name == nil {
				continue
			}

			sample, err := p.sampleCPU(ctx, *vm.ID)
			if err != nil {
				return domain.ProviderFindings{}, err
			}

			mean, underutilized, ok := p.classifier.Classify(sample)
			if !ok || !underutilized {
				continue
			}

			findings.Compute = append(findings.Compute, domain.Finding{
				Record: domain.ResourceRecord{
					ID:   *vm.ID,
					Name: *vm.Name,
					Kind: domain.KindCompute,
					Attributes: map[string]string{
						"vm_size": vmSize(vm),
					},
				},
				Issue:         domain.IssueLowUtilization,
				AvgCPUPercent: &mean,
			})
		}
	}

	if p.costFactory != nil {
		spend, err := p.spendSummary(ctx)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to fetch Azure spend summary")
		} else {
			findings.SpendSummary = spend
		}
	}

	return findings, nil
}

// StopCompute deallocates the VM so compute charges stop accruing. The
// long-running operation is started but not awaited.
func (p *Provider) StopCompute(ctx context.Context, rec domain.ResourceRecord) error {
	resourceGroup, err := resourceGroupFromID(rec.ID)
	if err != nil {
		return err
	}

	_, err = p.vms.BeginDeallocate(ctx, resourceGroup, rec.Name, nil)
	if err != nil {
		return fmt.Errorf("failed to deallocate Azure VM %s: %w", rec.Name, err)
	}
	return nil
}

// sampleCPU fetches the trailing 24h of hourly "Percentage CPU" averages
// from Azure Monitor for one VM resource.
func (p *Provider) sampleCPU(ctx context.Context, resourceID string) (domain.MetricSample, error) {
	end := time.Now().UTC()
	start := end.Add(-24 * time.Hour)
	timespan := fmt.Sprintf("%s/%s", start.Format(time.RFC3339), end.Format(time.RFC3339))

	resp, err := p.metrics.List(ctx, resourceID, &armmonitor.MetricsClientListOptions{
		Timespan:    to.Ptr(timespan),
		Interval:    to.Ptr("PT1H"),
		Metricnames: to.Ptr("Percentage CPU"),
		Aggregation: to.Ptr("Average"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics for %s: %w", resourceID, err)
	}

	return metricsToSample(resp.Value), nil
}

func metricsToSample(metrics []*armmonitor.Metric) domain.MetricSample {
	var sample domain.MetricSample
	for _, metric := range metrics {
		if metric == nil {
			continue
		}
		for _, series := range metric.Timeseries {
			if series == nil {
				continue
			}
			for _, point := range series.Data {
				if point == nil || point.Average == nil {
					continue
				}
				ts := time.Time{}
				if point.TimeStamp != nil {
					ts = *point.TimeStamp
				}
				sample = append(sample, domain.MetricPoint{Timestamp: ts, Value: *point.Average})
			}
		}
	}
	sort.Slice(sample, func(i, j int) bool {
		return sample[i].Timestamp.Before(sample[j].Timestamp)
	})
	return sample
}

// resourceGroupFromID extracts the resource group segment from a full ARM
// resource ID.
func resourceGroupFromID(id string) (string, error) {
	parts := strings.Split(id, "/")
	for i, part := range parts {
		if strings.EqualFold(part, "resourceGroups") && i+1 < len(parts) {
			return parts[i+1], nil
		}
	}
	return "", fmt.Errorf("no resource group in resource ID %q", id)
}

func vmSize(vm *armcompute.VirtualMachine) string {
	if vm.Properties == nil || vm.Properties.HardwareProfile == nil || vm.Properties.HardwareProfile.VMSize == nil {
		return ""
	}
	return string(*vm.Properties.HardwareProfile.VMSize)
}
