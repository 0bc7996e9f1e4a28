package gcp

import (
	"fmt"
	"os"

	"google.golang.org/api/option"
)

type Config struct {
	ProjectID string
	// ClientOptions carry the service-account credential file when one is
	// configured; otherwise application default credentials apply.
	ClientOptions []option.ClientOption
}

func LoadConfig() (*Config, error) {
	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if projectID == "" {
		return nil, fmt.Errorf("no GCP project configured")
	}

	cfg := &Config{ProjectID: projectID}
	if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		cfg.ClientOptions = append(cfg.ClientOptions, option.WithCredentialsFile(credFile))
	}
	return cfg, nil
}
