package main

import "os"

// Environment variables read by the CLI flags.
const (
	envConfigPath = "AVAPROBE_CONFIG_PATH"
	envLogLevel   = "AVAPROBE_LOG_LEVEL"
	envLogFormat  = "AVAPROBE_LOG_FORMAT"
	envCheckAddr  = "AVAPROBE_CHECK_ADDR"
)

// getEnvOrDefault returns the environment variable value or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
