package relayhub

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables read by NewFromEnv.
const (
	// EnvDSN names the RelayHub deployment host, e.g. "api3.relayhub.io:13443".
	EnvDSN = "RELAYHUB_DSN"
	// EnvAPIKey names the API key.
	EnvAPIKey = "RELAYHUB_API_KEY"
	// EnvUseHTTP, when set to a truthy value, switches to plain HTTP.
	EnvUseHTTP = "RELAYHUB_USE_HTTP"
)

// NewFromEnv creates a client from environment variables, loading a
// .env file from the working directory first when one exists. It fails
// fast with a descriptive error if a required variable is absent,
// before any network activity. Explicit options take precedence over
// the environment.
func NewFromEnv(opts ...Option) (*Client, error) {
	// Best-effort: a missing .env file is not an error.
	_ = godotenv.Load()

	dsn := os.Getenv(EnvDSN)
	if dsn == "" {
		return nil, fmt.Errorf("relayhub: %s environment variable is required", EnvDSN)
	}

	apiKey := os.Getenv(EnvAPIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("relayhub: %s environment variable is required", EnvAPIKey)
	}

	var envOpts []Option
	if v := os.Getenv(EnvUseHTTP); v != "" {
		useHTTP, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("relayhub: %s: invalid boolean %q", EnvUseHTTP, v)
		}
		if useHTTP {
			envOpts = append(envOpts, WithHTTP())
		}
	}

	return New(dsn, apiKey, append(envOpts, opts...)...)
}
