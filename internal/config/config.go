// Package config provides configuration helpers for depthsense commands.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables recognized by the depthsense commands.
const (
	EnvModel    = "DEPTHSENSE_MODEL"
	EnvLabels   = "DEPTHSENSE_LABELS"
	EnvReplay   = "DEPTHSENSE_REPLAY"
	EnvRemote   = "DEPTHSENSE_REMOTE"
	EnvConfig   = "DEPTHSENSE_CONFIG"
	EnvLogLevel = "LOG_LEVEL"
)

// String returns the value of key, or def when unset or empty.
func String(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Int returns key parsed as an int, or def when unset or unparsable.
func Int(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Float returns key parsed as a float64, or def when unset or unparsable.
func Float(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// LoadFile decodes a YAML or JSON file into v.
// The format is picked from the extension; anything not .json is read as YAML.
// A missing file is reported as an error so callers can decide whether an
// explicit path was required.
func LoadFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	return nil
}
