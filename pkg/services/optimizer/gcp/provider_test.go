package gcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLastSegment(t *testing.T) {
	t.Run("strips the API URL prefix", func(t *testing.T) {
		url := "https://www.googleapis.com/compute/v1/projects/p/zones/us-central1-a/machineTypes/e2-micro"
		assert.Equal(t, "e2-micro", lastSegment(url))
	})

	t.Run("plain value passes through", func(t *testing.T) {
		assert.Equal(t, "us-central1-a", lastSegment("us-central1-a"))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, "", lastSegment(""))
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("requires a project", func(t *testing.T) {
		t.Setenv("GOOGLE_CLOUD_PROJECT", "")

		_, err := LoadConfig()
		assert.ErrorContains(t, err, "no GCP project configured")
	})

	t.Run("reads project from the environment", func(t *testing.T) {
		t.Setenv("GOOGLE_CLOUD_PROJECT", "my-project")
		t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "my-project", cfg.ProjectID)
		assert.Empty(t, cfg.ClientOptions)
	})

	t.Run("picks up a credential file when set", func(t *testing.T) {
		t.Setenv("GOOGLE_CLOUD_PROJECT", "my-project")
		t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/tmp/sa.json")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Len(t, cfg.ClientOptions, 1)
	})
}
