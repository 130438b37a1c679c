package origin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("FRONTEND_BUCKET", "approvals-frontend")
	t.Setenv("FRONTEND_KEY_PREFIX", "release-42")
	t.Setenv("AWS_REGION", "ap-southeast-2")
	t.Setenv("CACHE_CONTROL", "no-cache")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, Config{
		Bucket:       "approvals-frontend",
		KeyPrefix:    "release-42",
		Region:       "ap-southeast-2",
		NotFoundKey:  DefaultNotFoundKey,
		CacheControl: "no-cache",
		LogLevel:     "debug",
	}, cfg)
}

func TestConfigFromEnvDisablesNotFoundPage(t *testing.T) {
	t.Setenv("FRONTEND_BUCKET", "approvals-frontend")
	t.Setenv("NOT_FOUND_KEY", "")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Empty(t, cfg.NotFoundKey)
}

func TestConfigFromEnvRequiresBucket(t *testing.T) {
	t.Setenv("FRONTEND_BUCKET", "")

	_, err := ConfigFromEnv()
	assert.EqualError(t, err, "FRONTEND_BUCKET must be set")
}
