package config

import (
	"os"
	"testing"

	"github.com/absoluteAquarian/monosound/internal/stream"
)

func TestDefaultMatchesSpecDefaults(t *testing.T) {
	cfg := Default()
	if cfg.StreamBufferLengthInSeconds != 0.01 {
		t.Errorf("StreamBufferLengthInSeconds = %v, want 0.01", cfg.StreamBufferLengthInSeconds)
	}
	if cfg.AllowEchoOversampling {
		t.Errorf("AllowEchoOversampling = true, want false")
	}
	if cfg.LogFilters {
		t.Errorf("LogFilters = true, want false")
	}
	if cfg.DefaultStreamFocusBehavior != stream.KeepPlaying {
		t.Errorf("DefaultStreamFocusBehavior = %v, want KeepPlaying", cfg.DefaultStreamFocusBehavior)
	}
}

func TestLoadClampsStreamBufferLength(t *testing.T) {
	t.Setenv("MONOSOUND_STREAM_BUFFER_SECONDS", "10")
	cfg := Load()
	if cfg.StreamBufferLengthInSeconds != stream.MaxBufferSeconds {
		t.Errorf("expected an out-of-range override to clamp to %v, got %v", stream.MaxBufferSeconds, cfg.StreamBufferLengthInSeconds)
	}
}

func TestLoadReadsBoolAndStringOverrides(t *testing.T) {
	t.Setenv("MONOSOUND_ALLOW_ECHO_OVERSAMPLING", "true")
	t.Setenv("MONOSOUND_LOG_FILTERS", "true")
	t.Setenv("MONOSOUND_LOG_DIRECTORY", "/tmp/monosound-logs")
	t.Setenv("MONOSOUND_DEFAULT_FOCUS_PAUSE", "true")

	cfg := Load()
	if !cfg.AllowEchoOversampling {
		t.Errorf("expected AllowEchoOversampling override to take effect")
	}
	if !cfg.LogFilters {
		t.Errorf("expected LogFilters override to take effect")
	}
	if cfg.LogDirectory != "/tmp/monosound-logs" {
		t.Errorf("LogDirectory = %q, want /tmp/monosound-logs", cfg.LogDirectory)
	}
	if cfg.DefaultStreamFocusBehavior != stream.PauseOnLostFocus {
		t.Errorf("expected DefaultStreamFocusBehavior override to select PauseOnLostFocus")
	}
}

func TestLoadFallsBackToDefaultsWhenUnset(t *testing.T) {
	for _, key := range []string{
		"MONOSOUND_STREAM_BUFFER_SECONDS",
		"MONOSOUND_ALLOW_ECHO_OVERSAMPLING",
		"MONOSOUND_LOG_DIRECTORY",
		"MONOSOUND_LOG_FILTERS",
		"MONOSOUND_DEFAULT_FOCUS_PAUSE",
	} {
		os.Unsetenv(key)
	}

	cfg := Load()
	if cfg != Default() {
		t.Errorf("Load() with no overrides = %+v, want Default() = %+v", cfg, Default())
	}
}
