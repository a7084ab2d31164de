package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the plant diagnosis service
type Config struct {
	// Server configuration
	Port string

	// Gemini configuration
	GeminiAPIKey string
	GeminiModel  string

	// Outbound model call configuration
	ModelTimeout time.Duration

	// Upload configuration
	MaxUploadBytes    int64
	MaxImageDimension int

	// CORS configuration
	AllowedOrigins []string

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables
func Load() *Config {
	config := &Config{
		// Server defaults
		Port: getEnv("PORT", "8000"),

		// Gemini defaults
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash-latest"),

		// Model call defaults (30 seconds)
		ModelTimeout: getDurationEnv("MODEL_TIMEOUT", 30*time.Second),

		// Upload defaults (10 MiB, downscale to 1024px before the outbound call)
		MaxUploadBytes:    getInt64Env("MAX_UPLOAD_BYTES", 10*1024*1024),
		MaxImageDimension: getIntEnv("MAX_IMAGE_DIMENSION", 1024),

		// CORS defaults
		AllowedOrigins: getStringSliceEnv("ALLOWED_ORIGINS", "*"),

		// Logging defaults
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return config
}

// getStringSliceEnv gets a comma-separated string environment variable and returns it as a string slice
func getStringSliceEnv(key, defaultValue string) []string {
	value := getEnv(key, defaultValue)
	if value == "" {
		return []string{}
	}

	parts := strings.Split(value, ",")
	var values []string
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv gets a duration environment variable or returns a default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getIntEnv gets an integer environment variable or returns a default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getInt64Env gets a 64-bit integer environment variable or returns a default value
func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
