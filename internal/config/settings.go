package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Settings is the runtime-tunable configuration, loaded from an optional JSON
// file. Fields are pointers so a partial file only overrides what it names;
// the Get* methods supply defaults for everything else.
type Settings struct {
	ServerURL *string `json:"server_url,omitempty"`

	// Debounce windows per parameter group. Duration strings like "30ms".
	MixDebounce  *string `json:"mix_debounce,omitempty"`
	BeamDebounce *string `json:"beam_debounce,omitempty"`

	RequestTimeout *string `json:"request_timeout,omitempty"`
	BeamResolution *int    `json:"beam_resolution,omitempty"`
}

const (
	defaultServerURL      = "http://localhost:8000"
	defaultMixDebounce    = 1000 * time.Millisecond
	defaultBeamDebounce   = 30 * time.Millisecond
	defaultRequestTimeout = 30 * time.Second
	defaultBeamResolution = 300
)

// DefaultSettings returns an empty Settings; every getter falls back to its
// built-in default.
func DefaultSettings() *Settings {
	return &Settings{}
}

// LoadSettings reads a Settings JSON file. Missing fields keep their
// defaults, so partial configs are safe.
func LoadSettings(path string) (*Settings, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("settings file must have .json extension, got %q", ext)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}
	s := DefaultSettings()
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse settings JSON: %w", err)
	}
	return s, nil
}

func (s *Settings) GetServerURL() string {
	if s.ServerURL != nil {
		return *s.ServerURL
	}
	return defaultServerURL
}

func duration(raw *string, def time.Duration) time.Duration {
	if raw == nil {
		return def
	}
	d, err := time.ParseDuration(*raw)
	if err != nil || d < 0 {
		return def
	}
	return d
}

func (s *Settings) GetMixDebounce() time.Duration {
	return duration(s.MixDebounce, defaultMixDebounce)
}

func (s *Settings) GetBeamDebounce() time.Duration {
	return duration(s.BeamDebounce, defaultBeamDebounce)
}

func (s *Settings) GetRequestTimeout() time.Duration {
	return duration(s.RequestTimeout, defaultRequestTimeout)
}

func (s *Settings) GetBeamResolution() int {
	if s.BeamResolution != nil && *s.BeamResolution > 0 {
		return *s.BeamResolution
	}
	return defaultBeamResolution
}
