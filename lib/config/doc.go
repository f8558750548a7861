// Copyright 2026 The Nappo Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the optional nappo run configuration file.
//
// The file is YAML and is located by exactly one of:
//   - the --config flag, or
//   - the NAPPO_CONFIG environment variable.
//
// There is no search path and no automatic discovery: deterministic,
// auditable configuration with no hidden overrides. Values from the
// file act as defaults; command-line flags always win.
package config
