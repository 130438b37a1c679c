package origin

import (
	"os"

	"github.com/pkg/errors"
)

const (
	// DefaultNotFoundKey is the export's not-found page.
	DefaultNotFoundKey = "404.html"

	// DefaultCacheControl makes browsers revalidate on every load.
	DefaultCacheControl = "public, max-age=0, must-revalidate"

	// DefaultLogLevel is used when LOG_LEVEL is unset.
	DefaultLogLevel = "info"
)

// Config configures the origin handler and its backing store.
type Config struct {
	// Bucket holding the export. Only used by the S3 store.
	Bucket string
	// KeyPrefix is prepended to every S3 key.
	KeyPrefix string
	// Region of the bucket.
	Region string
	// NotFoundKey is served with status 404 for missing objects. Empty
	// disables the page.
	NotFoundKey string
	// CacheControl is set on every successful response.
	CacheControl string
	// LogLevel for the origin loggers.
	LogLevel string
}

// DefaultConfig returns the configuration used by the preview server.
func DefaultConfig() Config {
	return Config{
		NotFoundKey:  DefaultNotFoundKey,
		CacheControl: DefaultCacheControl,
		LogLevel:     DefaultLogLevel,
	}
}

// ConfigFromEnv reads the origin Lambda configuration from the environment.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		Bucket:       os.Getenv("FRONTEND_BUCKET"),
		KeyPrefix:    os.Getenv("FRONTEND_KEY_PREFIX"),
		Region:       os.Getenv("AWS_REGION"),
		NotFoundKey:  getEnv("NOT_FOUND_KEY", DefaultNotFoundKey),
		CacheControl: getEnv("CACHE_CONTROL", DefaultCacheControl),
		LogLevel:     getEnv("LOG_LEVEL", DefaultLogLevel),
	}
	if cfg.Bucket == "" {
		return Config{}, errors.New("FRONTEND_BUCKET must be set")
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}
