// Package config loads the SDK configuration from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/vitwit/tonpay/types"
	"github.com/vitwit/tonpay/utils"
	"gopkg.in/yaml.v3"
)

// Environment variables overlaid on the file configuration.
const (
	EnvAPIURL        = "TONPAY_API_URL"
	EnvAPIKey        = "TONPAY_API_KEY"
	EnvTimeout       = "TONPAY_TIMEOUT"
	EnvPollInterval  = "TONPAY_POLL_INTERVAL"
	EnvPollTimeout   = "TONPAY_POLL_TIMEOUT"
	EnvLogLevel      = "TONPAY_LOG_LEVEL"
	EnvEnableMetrics = "TONPAY_ENABLE_METRICS"
	EnvAsset         = "TONPAY_ASSET"
	EnvManifestURL   = "TONPAY_MANIFEST_URL"
	EnvBridgeURL     = "TONPAY_BRIDGE_URL"
)

// Load reads the YAML file at path, overlays the environment (including a .env file in the
// working directory, when present), applies defaults and validates the result.
// An empty path skips the file.
func Load(path string) (*types.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, configError("failed to load .env file", err)
	}

	var cfg types.Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, configError("failed to read config file", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, configError("failed to parse config file", err)
		}
	}

	if err := overlayEnv(&cfg); err != nil {
		return nil, err
	}

	cfg = cfg.WithDefaults()
	if err := utils.ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromEnv builds the configuration from environment variables only.
func FromEnv() (*types.Config, error) {
	return Load("")
}

func overlayEnv(cfg *types.Config) error {
	if v, ok := lookup(EnvAPIURL); ok {
		cfg.APIURL = v
	}
	if v, ok := lookup(EnvAPIKey); ok {
		cfg.APIKey = v
	}
	if v, ok := lookup(EnvLogLevel); ok {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v, ok := lookup(EnvAsset); ok {
		cfg.Asset = types.Asset(strings.ToLower(v))
	}
	if v, ok := lookup(EnvManifestURL); ok {
		cfg.Connector.ManifestURL = v
	}
	if v, ok := lookup(EnvBridgeURL); ok {
		cfg.Connector.BridgeURL = v
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{EnvTimeout, &cfg.Timeout},
		{EnvPollInterval, &cfg.PollInterval},
		{EnvPollTimeout, &cfg.PollTimeout},
	}
	for _, d := range durations {
		v, ok := lookup(d.key)
		if !ok {
			continue
		}
		parsed, err := parseDuration(v)
		if err != nil {
			return configError(fmt.Sprintf("invalid %s", d.key), err)
		}
		*d.dst = parsed
	}

	if v, ok := lookup(EnvEnableMetrics); ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return configError(fmt.Sprintf("invalid %s", EnvEnableMetrics), err)
		}
		cfg.EnableMetrics = enabled
	}

	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// parseDuration accepts Go durations ("90s", "5m") and bare seconds ("300").
func parseDuration(v string) (time.Duration, error) {
	if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}

func configError(msg string, err error) error {
	return &types.Error{
		Code:    types.CodeConfigError,
		Message: msg,
		Err:     err,
	}
}
