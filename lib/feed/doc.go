// Copyright 2026 The Nappo Authors
// SPDX-License-Identifier: Apache-2.0

// Package feed defines the artifact manifest: the configuration data
// that names the supported CPU architectures, the bootstrap artifacts
// with their source URL templates, and the NuGet feed alias table.
//
// Manifests are authored as JSONC files (JSON extended with comments
// and trailing commas). A default manifest is embedded in the binary
// and used when no --feeds file is given. The artifact list is
// deliberately configuration data rather than code: upstream release
// layouts change, and a manifest edit must be enough to track them.
//
// URL templates use ${NAME} placeholder references drawn from a fixed,
// enumerated set (ARCH, VERSION, NAME). Unknown placeholders are
// rejected at manifest validation time and unresolved references are
// an error at expansion time, never passed through silently.
package feed
