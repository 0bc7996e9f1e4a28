package azure

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/costmanagement/armcostmanagement"
)

// spendSummary queries actual cost per service over the trailing 30 days,
// scoped to the subscription. Like the AWS variant it is context only.
func (p *Provider) spendSummary(ctx context.Context) (map[string]float64, error) {
	client := p.costFactory.NewQueryClient()

	timeFrom := time.Now().AddDate(0, 0, -30)
	timeTo := time.Now()

	exportType := armcostmanagement.ExportTypeActualCost
	granularity := armcostmanagement.GranularityTypeDaily
	timeframe := armcostmanagement.TimeframeTypeCustom
	dimension := armcostmanagement.QueryColumnTypeDimension

	params := armcostmanagement.QueryDefinition{
		Type: &exportType,
		Dataset: &armcostmanagement.QueryDataset{
			Granularity: &granularity,
			Aggregation: map[string]*armcostmanagement.QueryAggregation{
				"totalCost": {
					Name:     to.Ptr("Cost"),
					Function: to.Ptr(armcostmanagement.FunctionTypeSum),
				},
			},
			Grouping: []*armcostmanagement.QueryGrouping{
				{
					Name: to.Ptr("ServiceName"),
					Type: &dimension,
				},
			},
		},
		Timeframe: &timeframe,
		TimePeriod: &armcostmanagement.QueryTimePeriod{
			From: &timeFrom,
			To:   &timeTo,
		},
	}

	scope := fmt.Sprintf("/subscriptions/%s", p.subscriptionID)
	result, err := client.Usage(ctx, scope, params, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query costs: %w", err)
	}

	spend := make(map[string]float64)
	for _, row := range result.Properties.Rows {
		if len(row) < 3 {
			continue
		}
		cost, okCost := row[0].(float64)
		service, okName := row[2].(string)
		if !okCost || !okName {
			continue
		}
		spend[service] += cost
	}
	return spend, nil
}
