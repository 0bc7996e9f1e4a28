package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
)

const (
	DefaultRegion = "us-east-1" // Default region if not specified in the environment
)

// LoadConfig resolves credentials from the environment (access keys, shared
// config) the standard SDK way.
func LoadConfig(ctx context.Context) (*awssdk.Config, error) {
	awsCfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithDefaultRegion(DefaultRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	// Test the credentials
	_, err = awsCfg.Credentials.Retrieve(ctx)
	if err != nil {
		return nil, fmt.Errorf("invalid AWS credentials: %w", err)
	}

	return &awsCfg, nil
}
