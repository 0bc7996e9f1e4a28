package main

import (
	"fmt"
	"os"

	"github.com/de-tools/cloud-optimizer/pkg/services/config"
	"github.com/de-tools/cloud-optimizer/pkg/services/optimizer"
	"github.com/de-tools/cloud-optimizer/pkg/services/optimizer/aws"
	"github.com/de-tools/cloud-optimizer/pkg/services/optimizer/azure"
	"github.com/de-tools/cloud-optimizer/pkg/services/optimizer/gcp"
	"github.com/de-tools/cloud-optimizer/pkg/terminal"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cli := terminal.NewCLI(terminal.Options{
		Config: config.Load(),
		Registry: optimizer.NewRegistry(map[string]optimizer.ProviderFactory{
			optimizer.ProviderAWS:   aws.ProviderFactory,
			optimizer.ProviderAzure: azure.ProviderFactory,
			optimizer.ProviderGCP:   gcp.ProviderFactory,
		}),
		Logger: logger,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
