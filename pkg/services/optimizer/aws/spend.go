package aws

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
)

// spendSummary returns actual unblended spend per service over the trailing
// 30 days. It provides context alongside the placeholder savings estimates
// and is never used to compute them.
func (p *Provider) spendSummary(ctx context.Context) (map[string]float64, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -30)

	result, err := p.clients.CostExplorer.GetCostAndUsage(ctx, &costexplorer.GetCostAndUsageInput{
		TimePeriod: &types.DateInterval{
			Start: aws.String(start.Format("2006-01-02")),
			End:   aws.String(end.Format("2006-01-02")),
		},
		Granularity: types.GranularityMonthly,
		Metrics:     []string{"UnblendedCost"},
		Filter: &types.Expression{
			Not: &types.Expression{
				Dimensions: &types.DimensionValues{
					Key:    types.DimensionRecordType,
					Values: []string{"Credit", "Refund"},
				},
			},
		},
		GroupBy: []types.GroupDefinition{
			{
				Type: types.GroupDefinitionTypeDimension,
				Key:  aws.String("SERVICE"),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get cost and usage: %w", err)
	}

	spend := make(map[string]float64)
	for _, resultByTime := range result.ResultsByTime {
		for _, group := range resultByTime.Groups {
			if len(group.Keys) == 0 {
				continue
			}
			metric, ok := group.Metrics["UnblendedCost"]
			if !ok || metric.Amount == nil {
				continue
			}
			amount, err := strconv.ParseFloat(*metric.Amount, 64)
			if err != nil {
				continue
			}
			spend[group.Keys[0]] += amount
		}
	}
	return spend, nil
}
