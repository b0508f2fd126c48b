package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// Environment variables that override file values.
const (
	EnvAppName        = "APP_NAME"
	EnvAppEnv         = "APP_ENV"
	EnvAppDebug       = "APP_DEBUG"
	EnvAppVersion     = "APP_VERSION"
	EnvHealthToken    = "HEALTH_TOKEN"
	EnvDatabaseDriver = "DATABASE_DRIVER"
	EnvDatabaseDSN    = "DATABASE_DSN"
	EnvRedisURL       = "REDIS_URL"
)

// LoadConfig loads configuration from a file path. An empty path yields
// a configuration built from defaults and environment overrides only.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return finalize(&Config{}), nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}

	data, err := os.ReadFile(absPath) //nolint:gosec // operator-supplied config path
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return parseConfig(data)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(data)
}

// parseConfig parses YAML data into a Config.
func parseConfig(data []byte) (*Config, error) {
	content := substituteEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(content), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return finalize(&cfg), nil
}

func finalize(cfg *Config) *Config {
	applyEnvOverrides(cfg)
	cfg.ApplyDefaults()
	return cfg
}

// substituteEnvVars replaces ${VAR} and ${VAR:-default} patterns with
// environment variable values. "$$" escapes a literal dollar sign.
func substituteEnvVars(content string) string {
	content = strings.ReplaceAll(content, "$$", "\x00ESCAPED_DOLLAR\x00")

	result := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		if value, exists := os.LookupEnv(submatches[1]); exists {
			return value
		}
		if len(submatches) >= 3 {
			return submatches[2]
		}
		return ""
	})

	return strings.ReplaceAll(result, "\x00ESCAPED_DOLLAR\x00", "$")
}

// applyEnvOverrides applies well-known environment variables on top of
// the parsed file.
func applyEnvOverrides(cfg *Config) {
	overrideString(EnvAppName, &cfg.App.Name)
	overrideString(EnvAppEnv, &cfg.App.Environment)
	overrideString(EnvAppVersion, &cfg.App.Version)
	overrideString(EnvHealthToken, &cfg.Health.Token)
	overrideString(EnvDatabaseDriver, &cfg.Database.Driver)
	overrideString(EnvDatabaseDSN, &cfg.Database.DSN)

	if value, ok := os.LookupEnv(EnvAppDebug); ok {
		if debug, err := strconv.ParseBool(value); err == nil {
			cfg.App.Debug = debug
		}
	}

	if value, ok := os.LookupEnv(EnvRedisURL); ok && value != "" {
		if cfg.Redis == nil {
			cfg.Redis = &RedisConfig{}
		}
		cfg.Redis.URL = value
	}
}

func overrideString(key string, target *string) {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		*target = value
	}
}
