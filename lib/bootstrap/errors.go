// Copyright 2026 The Nappo Authors
// SPDX-License-Identifier: Apache-2.0

package bootstrap

import "fmt"

// ConfigError reports invalid run configuration: an unsupported
// architecture, a malformed version, or a bad URL template. It always
// occurs before any network activity.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// FetchError reports a failed artifact download: transport failure or
// a non-2xx response.
type FetchError struct {
	// Artifact is the name of the artifact being fetched.
	Artifact string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Artifact, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ExtractError reports a corrupt or unexpected archive: unrecognized
// format, truncated data, traversal attempts, or an archive with no
// contents (which usually signals a naming/version mismatch upstream).
type ExtractError struct {
	// Artifact is the name of the artifact being extracted.
	Artifact string
	Err      error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Artifact, e.Err)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

// RepackError reports a failure assembling or writing the output
// tarball.
type RepackError struct {
	Err error
}

func (e *RepackError) Error() string {
	return fmt.Sprintf("repack: %v", e.Err)
}

func (e *RepackError) Unwrap() error {
	return e.Err
}

func configErrorf(format string, args ...any) error {
	return &ConfigError{Err: fmt.Errorf(format, args...)}
}
