// Copyright 2026 The Nappo Authors
// SPDX-License-Identifier: Apache-2.0

package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nappo-build/nappo/lib/archive"
	"github.com/nappo-build/nappo/lib/fetch"
)

// FetchArtifacts downloads and extracts every configured artifact into
// the run's working directory. Any failure aborts the whole stage; the
// guarantee that every returned artifact has a non-empty extracted
// directory is what allows repack to start.
func (p *Pipeline) FetchArtifacts(ctx context.Context, workDir string) ([]FetchedArtifact, error) {
	artifacts := make([]FetchedArtifact, 0, len(p.config.Artifacts))

	for _, spec := range p.config.Artifacts {
		artifact, err := p.fetchOne(ctx, spec, workDir)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, *artifact)
	}
	return artifacts, nil
}

func (p *Pipeline) fetchOne(ctx context.Context, spec ResolvedArtifact, workDir string) (*FetchedArtifact, error) {
	downloadDir := filepath.Join(workDir, "download", spec.Name)
	if err := os.MkdirAll(downloadDir, 0o755); err != nil {
		return nil, &FetchError{Artifact: spec.Name, Err: err}
	}

	p.logger.Info("fetching artifact", "artifact", spec.Name, "url", spec.URL)

	result, err := fetch.Download(ctx, p.httpClient, spec.URL, downloadDir)
	if err != nil {
		return nil, &FetchError{Artifact: spec.Name, Err: err}
	}
	p.logger.Debug("fetched artifact",
		"artifact", spec.Name, "size", result.Size, "digest", result.Digest)

	format := spec.Format
	if format == archive.FormatUnknown {
		format, err = archive.Detect(result.Path)
		if err != nil {
			return nil, &ExtractError{Artifact: spec.Name, Err: err}
		}
		p.logger.Debug("detected archive format", "artifact", spec.Name, "format", format.String())
	}

	extractedDir := filepath.Join(workDir, "extract", spec.Name)
	if err := os.MkdirAll(extractedDir, 0o755); err != nil {
		return nil, &ExtractError{Artifact: spec.Name, Err: err}
	}
	if err := archive.Extract(result.Path, extractedDir, format); err != nil {
		return nil, &ExtractError{Artifact: spec.Name, Err: err}
	}

	// An archive that extracts to nothing usually means the upstream
	// naming or version convention changed out from under the URL
	// template.
	entries, err := os.ReadDir(extractedDir)
	if err != nil {
		return nil, &ExtractError{Artifact: spec.Name, Err: err}
	}
	if len(entries) == 0 {
		return nil, &ExtractError{Artifact: spec.Name,
			Err: fmt.Errorf("archive from %s contained no files", spec.URL)}
	}

	return &FetchedArtifact{
		Spec:         spec,
		ArchivePath:  result.Path,
		ExtractedDir: extractedDir,
		Digest:       result.Digest,
		Size:         result.Size,
	}, nil
}
