// Package config holds the §6.4 configuration enumeration, loaded the
// way the teacher's config.go loads its Config: a getEnv(key, default)
// helper per field, plus godotenv for .env files since the engine is
// also driven from a CLI (tools/livekit-publisher/main.go's
// `_ = godotenv.Load()` before flag parsing).
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/absoluteAquarian/monosound/internal/stream"
)

// Config is the §6.4 configuration enumeration.
type Config struct {
	// StreamBufferLengthInSeconds is the per-read duration, clamped to
	// stream.MinBufferSeconds/stream.MaxBufferSeconds.
	StreamBufferLengthInSeconds float64

	// AllowEchoOversampling is loaded and stored, but no filter reads
	// it: an echo filter's output is always the length of its input,
	// so no tail is generated beyond the source either way.
	AllowEchoOversampling bool

	// LogDirectory, if set alongside LogFilters, is where filtered
	// one-shot effects are written as WAVs for inspection.
	LogDirectory string

	// LogFilters enables writing filtered one-shot effects to disk.
	LogFilters bool

	// DefaultStreamFocusBehavior is the engine-wide fallback a stream
	// uses unless it sets its own override (§4.6).
	DefaultStreamFocusBehavior stream.FocusBehavior
}

// Default returns the §6.4 default configuration.
func Default() Config {
	return Config{
		StreamBufferLengthInSeconds: 0.01,
		AllowEchoOversampling:       false,
		LogDirectory:                "",
		LogFilters:                  false,
		DefaultStreamFocusBehavior:  stream.KeepPlaying,
	}
}

// Load builds a Config from environment variables, falling back to
// §6.4's defaults for anything unset. It loads a .env file first (best
// effort, matching the teacher's `_ = godotenv.Load()`) so callers can
// keep local overrides out of their shell profile.
func Load() Config {
	_ = godotenv.Load()

	cfg := Default()
	cfg.StreamBufferLengthInSeconds = stream.ClampBufferSeconds(
		getEnvFloat("MONOSOUND_STREAM_BUFFER_SECONDS", cfg.StreamBufferLengthInSeconds))
	cfg.AllowEchoOversampling = getEnvBool("MONOSOUND_ALLOW_ECHO_OVERSAMPLING", cfg.AllowEchoOversampling)
	cfg.LogDirectory = getEnv("MONOSOUND_LOG_DIRECTORY", cfg.LogDirectory)
	cfg.LogFilters = getEnvBool("MONOSOUND_LOG_FILTERS", cfg.LogFilters)
	if getEnvBool("MONOSOUND_DEFAULT_FOCUS_PAUSE", cfg.DefaultStreamFocusBehavior == stream.PauseOnLostFocus) {
		cfg.DefaultStreamFocusBehavior = stream.PauseOnLostFocus
	} else {
		cfg.DefaultStreamFocusBehavior = stream.KeepPlaying
	}
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			return v
		}
	}
	return defaultValue
}
