// Package config holds application configuration loaded from environment
// variables. There is no database or auth configuration: the server keeps
// all room state in memory and does not authenticate socket identity beyond
// the connection itself.
package config

import "os"

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port     string
	LogLevel string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:     envOrDefault("PORT", "8009"),
		LogLevel: envOrDefault("LOG_LEVEL", "info"),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
