// Copyright 2026 The Nappo Authors
// SPDX-License-Identifier: Apache-2.0

// Package bootstrap implements the nappo pipeline: resolve a run
// configuration from the artifact manifest, fetch and extract each
// artifact, and repack the extracted trees into one deterministic
// output tarball with a JSON manifest sidecar.
//
// The stages are strictly sequential — fetch never starts on a bad
// configuration, and repack never starts unless every artifact fetched
// and extracted successfully. Every failure is fatal and typed as one
// of ConfigError, FetchError, ExtractError, or RepackError; no partial
// tarball is ever left at the output path.
package bootstrap
