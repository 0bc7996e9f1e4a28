package aws

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/de-tools/cloud-optimizer/pkg/models/domain"
	"github.com/de-tools/cloud-optimizer/pkg/services/optimizer"
)

type ec2API interface {
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	DescribeVolumes(ctx context.Context, params *ec2.DescribeVolumesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVolumesOutput, error)
	StopInstances(ctx context.Context, params *ec2.StopInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StopInstancesOutput, error)
}

type cloudWatchAPI interface {
	GetMetricStatistics(ctx context.Context, params *cloudwatch.GetMetricStatisticsInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricStatisticsOutput, error)
}

type rdsAPI interface {
	DescribeDBInstances(ctx context.Context, params *rds.DescribeDBInstancesInput, optFns ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error)
}

type s3API interface {
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
	GetBucketLifecycleConfiguration(ctx context.Context, params *s3.GetBucketLifecycleConfigurationInput, optFns ...func(*s3.Options)) (*s3.GetBucketLifecycleConfigurationOutput, error)
}

type costExplorerAPI interface {
	GetCostAndUsage(ctx context.Context, params *costexplorer.GetCostAndUsageInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error)
}

// Clients groups the AWS service clients the provider depends on.
// CostExplorer is optional; when nil the spend summary is skipped.
type Clients struct {
	EC2          ec2API
	CloudWatch   cloudWatchAPI
	RDS          rdsAPI
	S3           s3API
	CostExplorer costExplorerAPI
}

type Provider struct {
	clients    Clients
	classifier optimizer.Classifier
}

func ProviderFactory(ctx context.Context, cfg domain.Config) (optimizer.ResourceProvider, error) {
	awsCfg, err := LoadConfig(ctx)
	if err != nil {
		return nil, err
	}

	return New(Clients{
		EC2:          ec2.NewFromConfig(*awsCfg),
		CloudWatch:   cloudwatch.NewFromConfig(*awsCfg),
		RDS:          rds.NewFromConfig(*awsCfg),
		S3:           s3.NewFromConfig(*awsCfg),
		CostExplorer: costexplorer.NewFromConfig(*awsCfg),
	}, optimizer.NewClassifier(cfg.CPUThresholdPercent)), nil
}

func New(clients Clients, classifier optimizer.Classifier) *Provider {
	return &Provider{clients: clients, classifier: classifier}
}

func (p *Provider) Name() string {
	return optimizer.ProviderAWS
}

func (p *Provider) Analyze(ctx context.Context) (domain.ProviderFindings, error) {
	findings := domain.NewProviderFindings(domain.StatusOK)

	if err := p.analyzeInstances(ctx, &findings); err != nil {
		return domain.ProviderFindings{}, err
	}
	if err := p.analyzeVolumes(ctx, &findings); err != nil {
		return domain.ProviderFindings{}, err
	}
	if err := p.analyzeDatabases(ctx, &findings); err != nil {
		return domain.ProviderFindings{}, err
	}
	if err := p.analyzeBuckets(ctx, &findings); err != nil {
		return domain.ProviderFindings{}, err
	}

	// Spend context is best-effort; a Cost Explorer failure never fails the
	// provider.
	if p.clients.CostExplorer != nil {
		spend, err := p.spendSummary(ctx)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to fetch AWS spend summary")
		} else {
			findings.SpendSummary = spend
		}
	}

	return findings, nil
}

func (p *Provider) StopCompute(ctx context.Context, rec domain.ResourceRecord) error {
	_, err := p.clients.EC2.StopInstances(ctx, &ec2.StopInstancesInput{
		InstanceIds: []string{rec.ID},
	})
	if err != nil {
		return fmt.Errorf("failed to stop EC2 instance %s: %w", rec.ID, err)
	}
	return nil
}

func (p *Provider) analyzeInstances(ctx context.Context, findings *domain.ProviderFindings) error {
	resp, err := p.clients.EC2.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		Filters: []ec2types.Filter{
			{
				Name:   aws.String("instance-state-name"),
				Values: []string{"running"},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to describe EC2 instances: %w", err)
	}

	for _, reservation := range resp.Reservations {
		for _, instance := range reservation.Instances {
			id := aws.ToString(instance.InstanceId)

			sample, err := p.sampleCPU(ctx, "AWS/EC2", "InstanceId", id)
			if err != nil {
				return err
			}

			mean, underutilized, ok := p.classifier.Classify(sample)
			if !ok || !underutilized {
				continue
			}

			findings.Compute = append(findings.Compute, domain.Finding{
				Record: domain.ResourceRecord{
					ID:   id,
					Name: instanceName(instance),
					Kind: domain.KindCompute,
					Attributes: map[string]string{
						"instance_type": string(instance.InstanceType),
					},
				},
				Issue:         domain.IssueLowUtilization,
				AvgCPUPercent: &mean,
			})
		}
	}
	return nil
}

// analyzeVolumes flags unattached volumes unconditionally: their existence
// while detached is the signal, no metric sampling is involved.
func (p *Provider) analyzeVolumes(ctx context.Context, findings *domain.ProviderFindings) error {
	resp, err := p.clients.EC2.DescribeVolumes(ctx, &ec2.DescribeVolumesInput{})
	if err != nil {
		return fmt.Errorf("failed to describe EBS volumes: %w", err)
	}

	for _, volume := range resp.Volumes {
		if volume.State != ec2types.VolumeStateAvailable {
			continue
		}
		findings.BlockStorage = append(findings.BlockStorage, domain.Finding{
			Record: domain.ResourceRecord{
				ID:   aws.ToString(volume.VolumeId),
				Name: aws.ToString(volume.VolumeId),
				Kind: domain.KindBlockStorage,
				Attributes: map[string]string{
					"size_gb":     strconv.FormatInt(int64(aws.ToInt32(volume.Size)), 10),
					"volume_type": string(volume.VolumeType),
					"state":       "unattached",
				},
			},
			Issue: domain.IssueUnattachedVolume,
		})
	}
	return nil
}

func (p *Provider) analyzeDatabases(ctx context.Context, findings *domain.ProviderFindings) error {
	resp, err := p.clients.RDS.DescribeDBInstances(ctx, &rds.DescribeDBInstancesInput{})
	if err != nil {
		return fmt.Errorf("failed to describe RDS instances: %w", err)
	}

	for _, db := range resp.DBInstances {
		id := aws.ToString(db.DBInstanceIdentifier)

		sample, err := p.sampleCPU(ctx, "AWS/RDS", "DBInstanceIdentifier", id)
		if err != nil {
			return err
		}

		mean, underutilized, ok := p.classifier.Classify(sample)
		if !ok || !underutilized {
			continue
		}

		findings.Databases = append(findings.Databases, domain.Finding{
			Record: domain.ResourceRecord{
				ID:   id,
				Name: id,
				Kind: domain.KindDatabase,
				Attributes: map[string]string{
					"instance_class": aws.ToString(db.DBInstanceClass),
					"engine":         aws.ToString(db.Engine),
				},
			},
			Issue:         domain.IssueLowUtilization,
			AvgCPUPercent: &mean,
		})
	}
	return nil
}

func (p *Provider) analyzeBuckets(ctx context.Context, findings *domain.ProviderFindings) error {
	resp, err := p.clients.S3.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return fmt.Errorf("failed to list S3 buckets: %w", err)
	}

	for _, bucket := range resp.Buckets {
		name := aws.ToString(bucket.Name)

		size, err := p.bucketSizeBytes(ctx, name)
		if err != nil {
			return err
		}

		hasLifecycle := p.hasLifecycle(ctx, name)

		f := domain.Finding{
			Record: domain.ResourceRecord{
				ID:   name,
				Name: name,
				Kind: domain.KindObjectStorage,
				Attributes: map[string]string{
					"size_bytes":       strconv.FormatFloat(size, 'f', -1, 64),
					"lifecycle_policy": strconv.FormatBool(hasLifecycle),
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

// sampleCPU fetches the trailing 24h of hourly average CPUUtilization. An
// empty result means the provider has no datapoints for the resource.
func (p *Provider) sampleCPU(ctx context.Context, namespace, dimension, value string) (domain.MetricSample, error) {
	end := time.Now().UTC()

	resp, err := p.clients.CloudWatch.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String(namespace),
		MetricName: aws.String("CPUUtilization"),
		Dimensions: []cwtypes.Dimension{
			{Name: aws.String(dimension), Value: aws.String(value)},
		},
		StartTime:  aws.Time(end.Add(-24 * time.Hour)),
		EndTime:    aws.Time(end),
		Period:     aws.Int32(3600),
		Statistics: []cwtypes.Statistic{cwtypes.StatisticAverage},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s metrics for %s: %w", namespace, value, err)
	}

	return datapointsToSample(resp.Datapoints), nil
}

func (p *Provider) bucketSizeBytes(ctx context.Context, bucket string) (float64, error) {
	end := time.Now().UTC()

	resp, err := p.clients.CloudWatch.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String("AWS/S3"),
		MetricName: aws.String("BucketSizeBytes"),
		Dimensions: []cwtypes.Dimension{
			{Name: aws.String("BucketName"), Value: aws.String(bucket)},
			{Name: aws.String("StorageType"), Value: aws.String("StandardStorage")},
		},
		StartTime:  aws.Time(end.Add(-30 * 24 * time.Hour)),
		EndTime:    aws.Time(end),
		Period:     aws.Int32(86400),
		Statistics: []cwtypes.Statistic{cwtypes.StatisticAverage},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get size metrics for bucket %s: %w", bucket, err)
	}

	sample := datapointsToSample(resp.Datapoints)
	if sample.Empty() {
		return 0, nil
	}
	return sample[len(sample)-1].Value, nil
}

// hasLifecycle treats any lookup error as "no lifecycle configured"; buckets
// without one return NoSuchLifecycleConfiguration rather than an empty list.
func (p *Provider) hasLifecycle(ctx context.Context, bucket string) bool {
	resp, err := p.clients.S3.GetBucketLifecycleConfiguration(ctx, &s3.GetBucketLifecycleConfigurationInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		return false
	}
	return len(resp.Rules) > 0
}

func datapointsToSample(datapoints []cwtypes.Datapoint) domain.MetricSample {
	sample := make(domain.MetricSample, 0, len(datapoints))
	for _, dp := range datapoints {
		if dp.Average == nil {
			continue
		}
		sample = append(sample, domain.MetricPoint{
			Timestamp: aws.ToTime(dp.Timestamp),
			Value:     *dp.Average,
		})
	}
	// CloudWatch returns datapoints in no particular order.
	sort.Slice(sample, func(i, j int) bool {
		return sample[i].Timestamp.Before(sample[j].Timestamp)
	})
	return sample
}

func instanceName(instance ec2types.Instance) string {
	for _, tag := range instance.Tags {
		if aws.ToString(tag.Key) == "Name" {
			return aws.ToString(tag.Value)
		}
	}
	return aws.ToString(instance.InstanceId)
}
