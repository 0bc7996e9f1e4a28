package gcp

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	compute "cloud.google.com/go/compute/apiv1"
	computepb "cloud.google.com/go/compute/apiv1/computepb"
	monitoring "cloud.google.com/go/monitoring/apiv3/v2"
	"cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/de-tools/cloud-optimizer/pkg/models/domain"
	"github.com/de-tools/cloud-optimizer/pkg/services/optimizer"
)

const cpuMetricType = "compute.googleapis.com/instance/cpu/utilization"

type Provider struct {
	projectID  string
	instances  *compute.InstancesClient
	metrics    *monitoring.MetricClient
	buckets    *storage.Client
	classifier optimizer.Classifier
}

func ProviderFactory(ctx context.Context, cfg domain.Config) (optimizer.ResourceProvider, error) {
	gcpCfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	instances, err := compute.NewInstancesRESTClient(ctx, gcpCfg.ClientOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCP compute client: %w", err)
	}

	metrics, err := monitoring.NewMetricClient(ctx, gcpCfg.ClientOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCP monitoring client: %w", err)
	}

	buckets, err := storage.NewClient(ctx, gcpCfg.ClientOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCP storage client: %w", err)
	}

	return &Provider{
		projectID:  gcpCfg.ProjectID,
		instances:  instances,
		metrics:    metrics,
		buckets:    buckets,
		classifier: optimizer.NewClassifier(cfg.CPUThresholdPercent),
	}, nil
}

func (p *Provider) Name() string {
	return optimizer.ProviderGCP
}

func (p *Provider) Analyze(ctx context.Context) (domain.ProviderFindings, error) {
	findings := domain.NewProviderFindings(domain.StatusOK)

	if err := p.analyzeInstances(ctx, &findings); err != nil {
		return domain.ProviderFindings{}, err
	}
	if err := p.analyzeBuckets(ctx, &findings); err != nil {
		return domain.ProviderFindings{}, err
	}

	return findings, nil
}

func (p *Provider) StopCompute(ctx context.Context, rec domain.ResourceRecord) error {
	zone := rec.Attributes["zone"]
	if zone == "" {
		return fmt.Errorf("no zone recorded for GCP instance %s", rec.Name)
	}

	_, err := p.instances.Stop(ctx, &computepb.StopInstanceRequest{
		Project:  p.projectID,
		Zone:     zone,
		Instance: rec.Name,
	})
	if err != nil {
		return fmt.Errorf("failed to stop GCP instance %s: %w", rec.Name, err)
	}
	return nil
}

func (p *Provider) analyzeInstances(ctx context.Context, findings *domain.ProviderFindings) error {
	req := &computepb.AggregatedListInstancesRequest{
		Project: p.projectID,
	}

	it := p.instances.AggregatedList(ctx, req)
	for {
		pair, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to list GCP instances: %w", err)
		}
		if pair.Value == nil {
			continue
		}

		for _, instance := range pair.Value.Instances {
			if instance.GetStatus() != "RUNNING" {
				continue
			}

			sample, err := p.sampleCPU(ctx, instance.GetId())
			if err != nil {
				return err
			}

			mean, underutilized, ok := p.classifier.Classify(sample)
			if !ok || !underutilized {
				continue
			}

			zone := lastSegment(instance.GetZone())
			findings.Compute = append(findings.Compute, domain.Finding{
				Record: domain.ResourceRecord{
					ID:   fmt.Sprintf("%d", instance.GetId()),
					Name: instance.GetName(),
					Kind: domain.KindCompute,
					Attributes: map[string]string{
						"machine_type": lastSegment(instance.GetMachineType()),
						"zone":         zone,
					},
				},
				Issue:         domain.IssueLowUtilization,
				AvgCPUPercent: &mean,
			})
		}
	}
	return nil
}

func (p *Provider) analyzeBuckets(ctx context.Context, findings *domain.ProviderFindings) error {
	it := p.buckets.Buckets(ctx, p.projectID)
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to list GCS buckets: %w", err)
		}

		hasLifecycle := len(attrs.Lifecycle.Rules) > 0

		f := domain.Finding{
			Record: domain.ResourceRecord{
				ID:   attrs.Name,
				Name: attrs.Name,
				Kind: domain.KindObjectStorage,
				Attributes: map[string]string{
					"location":         attrs.Location,
					"storage_class":    attrs.StorageClass,
					"lifecycle_policy": fmt.Sprintf("%t", hasLifecycle),
				},
			},
		}
		if !hasLifecycle {
			f.Issue = domain.IssueMissingLifecycle
		}
		findings.ObjectStorage = append(findings.ObjectStorage, f)
	}
	return nil
}

// sampleCPU fetches the trailing 24h of hourly mean CPU utilization from
// Cloud Monitoring. Values arrive as a 0..1 fraction and are scaled to
// percent to match the other providers.
func (p *Provider) sampleCPU(ctx context.Context, instanceID uint64) (domain.MetricSample, error) {
	end := time.Now().UTC()
	start := end.Add(-24 * time.Hour)

	req := &monitoringpb.ListTimeSeriesRequest{
		Name: fmt.Sprintf("projects/%s", p.projectID),
		Filter: fmt.Sprintf(
			`metric.type = %q AND resource.labels.instance_id = "%d"`,
			cpuMetricType, instanceID,
		),
		Interval: &monitoringpb.TimeInterval{
			StartTime: timestamppb.New(start),
			EndTime:   timestamppb.New(end),
		},
		Aggregation: &monitoringpb.Aggregation{
			AlignmentPeriod:  durationpb.New(time.Hour),
			PerSeriesAligner: monitoringpb.Aggregation_ALIGN_MEAN,
		},
		View: monitoringpb.ListTimeSeriesRequest_FULL,
	}

	var sample domain.MetricSample
	it := p.metrics.ListTimeSeries(ctx, req)
	for {
		series, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get CPU metrics for instance %d: %w", instanceID, err)
		}

		for _, point := range series.GetPoints() {
			ts := time.Time{}
			if interval := point.GetInterval(); interval.GetEndTime() != nil {
				ts = interval.GetEndTime().AsTime()
			}
			sample = append(sample, domain.MetricPoint{
				Timestamp: ts,
				Value:     point.GetValue().GetDoubleValue() * 100,
			})
		}
	}

	sort.Slice(sample, func(i, j int) bool {
		return sample[i].Timestamp.Before(sample[j].Timestamp)
	})
	return sample, nil
}

func lastSegment(url string) string {
	if url == "" {
		return ""
	}
	parts := strings.Split(url, "/")
	return parts[len(parts)-1]
}
