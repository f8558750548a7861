// Copyright 2026 The Nappo Authors
// SPDX-License-Identifier: Apache-2.0

package feed

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/tidwall/jsonc"
)

// manifestSchemaVersion is the manifest format version this binary
// understands. Bumped on incompatible layout changes.
const manifestSchemaVersion = 1

//go:embed default.jsonc
var defaultManifestData []byte

// ArtifactSpec describes one downloadable bootstrap artifact: where it
// comes from and where its contents land inside the output tarball.
// Immutable after manifest load.
type ArtifactSpec struct {
	// Name identifies the artifact (e.g., "sdk", "runtime").
	Name string `json:"name"`

	// URLTemplate is the source URL with ${ARCH}/${VERSION}/${NAME}
	// placeholders.
	URLTemplate string `json:"url_template"`

	// Format optionally pins the archive format ("zip", "tar",
	// "tar.gz", "tar.zst", "tar.lz4"). Empty means sniff from magic
	// bytes after download.
	Format string `json:"format,omitempty"`

	// StagePath is the directory inside the output tarball that this
	// artifact's extracted contents are staged under. Defaults to Name.
	StagePath string `json:"stage_path,omitempty"`
}

// Architecture holds per-architecture manifest settings.
type Architecture struct {
	// URLName is the identifier substituted for ${ARCH} in URL
	// templates when it differs from the architecture key (e.g.,
	// "aarch64" feeds publish under "arm64").
	URLName string `json:"url_name,omitempty"`
}

// Manifest is the artifact configuration for a nappo run: the allowed
// architecture set, the artifact list, and the NuGet feed alias table.
type Manifest struct {
	SchemaVersion int                     `json:"schema_version"`
	Architectures map[string]Architecture `json:"architectures"`
	Artifacts     []ArtifactSpec          `json:"artifacts"`
	Feeds         map[string]string       `json:"feeds,omitempty"`
}

// Parse strips JSONC comments and trailing commas from data, then
// unmarshals and validates the manifest.
func Parse(data []byte) (*Manifest, error) {
	stripped := jsonc.ToJSON(data)

	var manifest Manifest
	if err := json.Unmarshal(stripped, &manifest); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	if err := manifest.validate(); err != nil {
		return nil, err
	}
	return &manifest, nil
}

// ReadFile reads a JSONC manifest file from disk.
func ReadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	manifest, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return manifest, nil
}

var loadDefault = sync.OnceValues(func() (*Manifest, error) {
	return Parse(defaultManifestData)
})

// Default returns the manifest embedded in the binary. The embedded
// data is validated at first use; a malformed embedded manifest is a
// build defect, reported as a panic rather than a recoverable error.
func Default() *Manifest {
	manifest, err := loadDefault()
	if err != nil {
		panic(fmt.Sprintf("embedded default manifest is invalid: %v", err))
	}
	return manifest
}

// ArchitectureNames returns the sorted list of supported architecture
// identifiers, for error messages and help output.
func (m *Manifest) ArchitectureNames() []string {
	names := make([]string, 0, len(m.Architectures))
	for name := range m.Architectures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FeedNames returns the sorted list of feed aliases.
func (m *Manifest) FeedNames() []string {
	names := make([]string, 0, len(m.Feeds))
	for name := range m.Feeds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// validate checks structural requirements: schema version, at least one
// architecture and artifact, unique artifact names, and templates that
// reference only known placeholders.
func (m *Manifest) validate() error {
	if m.SchemaVersion != manifestSchemaVersion {
		return fmt.Errorf("unsupported manifest schema_version %d (want %d)", m.SchemaVersion, manifestSchemaVersion)
	}
	if len(m.Architectures) == 0 {
		return fmt.Errorf("manifest defines no architectures")
	}
	if len(m.Artifacts) == 0 {
		return fmt.Errorf("manifest defines no artifacts")
	}

	seen := make(map[string]bool, len(m.Artifacts))
	for i, artifact := range m.Artifacts {
		if artifact.Name == "" {
			return fmt.Errorf("artifact %d: name is required", i)
		}
		// Names become directory names under the working directory and
		// the default stage path, so they must be plain path segments.
		if strings.ContainsAny(artifact.Name, `/\`) || artifact.Name == "." || artifact.Name == ".." {
			return fmt.Errorf("artifact %q: name must be a single path segment", artifact.Name)
		}
		if seen[artifact.Name] {
			return fmt.Errorf("artifact %q: duplicate name", artifact.Name)
		}
		seen[artifact.Name] = true

		if artifact.URLTemplate == "" {
			return fmt.Errorf("artifact %q: url_template is required", artifact.Name)
		}
		if err := ValidateTemplate(artifact.URLTemplate); err != nil {
			return fmt.Errorf("artifact %q: %w", artifact.Name, err)
		}
		if artifact.StagePath != "" {
			if err := validateStagePath(artifact.StagePath); err != nil {
				return fmt.Errorf("artifact %q: %w", artifact.Name, err)
			}
		}
	}
	return nil
}

// validateStagePath rejects stage paths that would place an artifact's
// contents outside the staging directory. Stage paths use forward
// slashes regardless of platform.
func validateStagePath(stagePath string) error {
	if path.IsAbs(stagePath) || strings.HasPrefix(stagePath, `\`) {
		return fmt.Errorf("stage_path %q is absolute", stagePath)
	}
	cleaned := path.Clean(stagePath)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return fmt.Errorf("stage_path %q escapes the staging directory", stagePath)
	}
	return nil
}
