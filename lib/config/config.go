// Copyright 2026 The Nappo Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable consulted when no --config
// flag is given.
const EnvVar = "NAPPO_CONFIG"

// RunConfig holds file-sourced defaults for the bootstrap command.
// Every field has a flag counterpart; flags override.
type RunConfig struct {
	// Architecture is the default target architecture.
	Architecture string `yaml:"architecture"`

	// Version is the default target runtime version.
	Version string `yaml:"version"`

	// OutputDir is the default output directory.
	OutputDir string `yaml:"output_dir"`

	// WorkDir is the default parent for scoped working directories.
	WorkDir string `yaml:"work_dir"`

	// Compression is the default output compression.
	Compression string `yaml:"compression"`

	// FeedManifest is the path of a JSONC manifest replacing the
	// embedded default.
	FeedManifest string `yaml:"feed_manifest"`
}

// Locate returns the config file path from the flag value or the
// NAPPO_CONFIG environment variable, in that order. Empty means no
// config file is in use.
func Locate(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(EnvVar)
}

// Load reads and strictly decodes a run config file. Unknown keys are
// an error: a typo in a config file should fail loudly, not silently
// fall back to defaults.
func Load(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var runConfig RunConfig
	if err := decoder.Decode(&runConfig); err != nil {
		if errors.Is(err, io.EOF) {
			// An empty config file is a valid no-op.
			return &RunConfig{}, nil
		}
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &runConfig, nil
}
