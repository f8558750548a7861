// Copyright 2026 The Nappo Authors
// SPDX-License-Identifier: Apache-2.0

package bootstrap

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/nappo-build/nappo/lib/archive"
	"github.com/nappo-build/nappo/lib/feed"
)

// Options are the raw user inputs to a bootstrap run, before
// validation against the manifest.
type Options struct {
	// Architecture is the target CPU architecture identifier.
	Architecture string

	// Version is the target runtime version string.
	Version string

	// OutputDir is where the output tarball is written. Defaults to
	// the current directory.
	OutputDir string

	// WorkDir optionally places the scoped temporary working
	// directory under a specific parent. Empty uses the system
	// temporary directory.
	WorkDir string

	// Compression selects the output tarball compression ("none",
	// "gzip", "zstd"). Defaults to gzip.
	Compression string

	// KeepWorkDir leaves the working directory in place after the
	// run, for debugging.
	KeepWorkDir bool
}

// ResolvedArtifact is an ArtifactSpec with its URL template fully
// substituted and its archive format parsed.
type ResolvedArtifact struct {
	// Name identifies the artifact.
	Name string

	// URL is the fully-substituted source URL.
	URL string

	// Format is the pinned archive format, or FormatUnknown to sniff
	// after download.
	Format archive.Format

	// StagePath is the directory inside the output tarball this
	// artifact's contents land under.
	StagePath string
}

// Config is the validated configuration for a single bootstrap run.
type Config struct {
	// Architecture is the validated target architecture.
	Architecture string

	// Version is the validated target version.
	Version *semver.Version

	// OutputPath is the full path the output tarball is written to.
	OutputPath string

	// WorkDirParent is the parent for the scoped working directory
	// ("" means the system temporary directory).
	WorkDirParent string

	// KeepWorkDir leaves the working directory behind after the run.
	KeepWorkDir bool

	// Compression is the output tarball compression.
	Compression archive.Compression

	// Artifacts are the resolved artifacts to fetch, in manifest
	// order.
	Artifacts []ResolvedArtifact
}

// ResolveConfig validates options against the manifest and produces a
// run configuration. All failures are ConfigError; no network activity
// happens here or on any failing path.
func ResolveConfig(options Options, manifest *feed.Manifest) (*Config, error) {
	architecture, exists := manifest.Architectures[options.Architecture]
	if !exists {
		return nil, configErrorf("unsupported architecture %q (supported: %s)",
			options.Architecture, strings.Join(manifest.ArchitectureNames(), ", "))
	}

	version, err := semver.StrictNewVersion(options.Version)
	if err != nil {
		return nil, configErrorf("malformed version %q: %w", options.Version, err)
	}

	compressionName := options.Compression
	if compressionName == "" {
		compressionName = "gzip"
	}
	compression, err := archive.ParseCompression(compressionName)
	if err != nil {
		return nil, &ConfigError{Err: err}
	}

	// ${ARCH} substitutes the architecture identifier unless the
	// manifest maps it to a different upstream spelling.
	urlName := options.Architecture
	if architecture.URLName != "" {
		urlName = architecture.URLName
	}

	artifacts := make([]ResolvedArtifact, 0, len(manifest.Artifacts))
	for _, spec := range manifest.Artifacts {
		values := map[string]string{
			feed.PlaceholderArch:    urlName,
			feed.PlaceholderVersion: options.Version,
			feed.PlaceholderName:    spec.Name,
		}
		url, err := feed.Expand(spec.URLTemplate, values)
		if err != nil {
			return nil, configErrorf("artifact %q: %w", spec.Name, err)
		}

		format := archive.FormatUnknown
		if spec.Format != "" {
			format, err = archive.ParseFormat(spec.Format)
			if err != nil {
				return nil, configErrorf("artifact %q: %w", spec.Name, err)
			}
		}

		stagePath := spec.StagePath
		if stagePath == "" {
			stagePath = spec.Name
		}

		artifacts = append(artifacts, ResolvedArtifact{
			Name:      spec.Name,
			URL:       url,
			Format:    format,
			StagePath: stagePath,
		})
	}

	outputDir := options.OutputDir
	if outputDir == "" {
		outputDir = "."
	}
	outputName := fmt.Sprintf("nappo-bootstrap-%s-%s%s",
		options.Version, options.Architecture, compression.Extension())

	return &Config{
		Architecture:  options.Architecture,
		Version:       version,
		OutputPath:    filepath.Join(outputDir, outputName),
		WorkDirParent: options.WorkDir,
		KeepWorkDir:   options.KeepWorkDir,
		Compression:   compression,
		Artifacts:     artifacts,
	}, nil
}
