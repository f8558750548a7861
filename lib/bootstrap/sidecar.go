// Copyright 2026 The Nappo Authors
// SPDX-License-Identifier: Apache-2.0

package bootstrap

import (
	"encoding/json"
	"fmt"
	"os"
)

// SidecarSuffix is appended to the output path to name the manifest
// sidecar.
const SidecarSuffix = ".manifest.json"

// Sidecar is the JSON manifest written next to the output tarball. It
// records what went into the tarball so the downstream build can audit
// provenance without unpacking anything. No timestamps: the sidecar is
// as reproducible as the tarball it describes.
type Sidecar struct {
	Architecture string            `json:"architecture"`
	Version      string            `json:"version"`
	OutputDigest string            `json:"output_digest"`
	Members      []string          `json:"members"`
	Artifacts    []SidecarArtifact `json:"artifacts"`
}

// SidecarArtifact records one fetched input.
type SidecarArtifact struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Digest string `json:"digest"`
	Size   int64  `json:"size"`
}

func (p *Pipeline) writeSidecar(tarball *OutputTarball, artifacts []FetchedArtifact) error {
	sidecar := Sidecar{
		Architecture: p.config.Architecture,
		Version:      p.config.Version.Original(),
		OutputDigest: tarball.Digest,
		Members:      tarball.Members,
		Artifacts:    make([]SidecarArtifact, 0, len(artifacts)),
	}
	for _, artifact := range artifacts {
		sidecar.Artifacts = append(sidecar.Artifacts, SidecarArtifact{
			Name:   artifact.Spec.Name,
			URL:    artifact.Spec.URL,
			Digest: artifact.Digest,
			Size:   artifact.Size,
		})
	}

	data, err := json.MarshalIndent(sidecar, "", "  ")
	if err != nil {
		return &RepackError{Err: fmt.Errorf("encoding sidecar: %w", err)}
	}
	data = append(data, '\n')

	path := tarball.Path + SidecarSuffix
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &RepackError{Err: fmt.Errorf("writing sidecar: %w", err)}
	}
	return nil
}
