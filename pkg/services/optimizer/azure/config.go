package azure

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"gopkg.in/ini.v1"
)

const (
	DefaultRegion = "eastus"
)

type Config struct {
	SubscriptionID string
	TenantID       string
	ClientID       string
	Region         string
	Credentials    azcore.TokenCredential
}

// LoadConfig resolves the subscription from AZURE_SUBSCRIPTION_ID, falling
// back to the default profile in ~/.azure/config when the variable is unset.
func LoadConfig() (*Config, error) {
	config := &Config{
		SubscriptionID: os.Getenv("AZURE_SUBSCRIPTION_ID"),
		TenantID:       os.Getenv("AZURE_TENANT_ID"),
		ClientID:       os.Getenv("AZURE_CLIENT_ID"),
		Region:         DefaultRegion,
	}

	if config.SubscriptionID == "" {
		if err := loadProfile(config); err != nil {
			return nil, err
		}
	}

	if config.SubscriptionID == "" {
		return nil, fmt.Errorf("no Azure subscription ID configured")
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}
	config.Credentials = cred
	return config, nil
}

func loadProfile(config *Config) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("unable to get home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, ".azure", "config")
	cfg, err := ini.Load(configPath)
	if err != nil {
		return fmt.Errorf("unable to load Azure config file: %w", err)
	}

	section, err := cfg.GetSection("default")
	if err != nil {
		return fmt.Errorf("default profile not found in Azure config: %w", err)
	}

	config.SubscriptionID = section.Key("subscription").String()
	config.TenantID = section.Key("tenant").String()
	config.ClientID = section.Key("client_id").String()
	config.Region = section.Key("region").MustString(DefaultRegion)
	return nil
}
