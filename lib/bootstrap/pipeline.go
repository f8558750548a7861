// Copyright 2026 The Nappo Authors
// SPDX-License-Identifier: Apache-2.0

package bootstrap

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/nappo-build/nappo/lib/archive"
	"github.com/nappo-build/nappo/lib/fetch"
)

// FetchedArtifact is one artifact after the fetch and extract stages.
// Its archive and extracted directory live under the run's scoped
// working directory and are removed with it.
type FetchedArtifact struct {
	// Spec is the resolved artifact this was fetched from.
	Spec ResolvedArtifact

	// ArchivePath is the downloaded archive file.
	ArchivePath string

	// ExtractedDir holds the archive's extracted contents. Guaranteed
	// to exist and be non-empty before repack begins.
	ExtractedDir string

	// Digest is the hex BLAKE3 digest of the downloaded archive.
	Digest string

	// Size is the archive size in bytes.
	Size int64
}

// OutputTarball describes the final pipeline product.
type OutputTarball struct {
	// Path is the location of the written tarball.
	Path string

	// Members are the sorted member paths inside the tarball.
	Members []string

	// Digest is the hex BLAKE3 digest of the tarball file.
	Digest string
}

// Pipeline runs the bootstrap stages for one configuration. Stages are
// strictly sequential; the pipeline holds no state between runs beyond
// the configuration itself.
type Pipeline struct {
	config     *Config
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a pipeline. A nil httpClient uses http.DefaultClient; a
// nil logger discards.
func New(config *Config, httpClient *http.Client, logger *slog.Logger) *Pipeline {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{
		config:     config,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Run executes fetch, extract, and repack. The scoped working
// directory is removed on every exit path unless the configuration
// asks to keep it. On failure nothing is left at the output path.
func (p *Pipeline) Run(ctx context.Context) (*OutputTarball, error) {
	workDir, err := os.MkdirTemp(p.config.WorkDirParent, "nappo-*")
	if err != nil {
		return nil, fmt.Errorf("creating working directory: %w", err)
	}
	defer func() {
		if p.config.KeepWorkDir {
			p.logger.Info("keeping working directory", "dir", workDir)
			return
		}
		if err := os.RemoveAll(workDir); err != nil {
			p.logger.Warn("cleaning working directory", "dir", workDir, "error", err)
		}
	}()

	artifacts, err := p.FetchArtifacts(ctx, workDir)
	if err != nil {
		return nil, err
	}

	tarball, err := p.Repack(artifacts, workDir)
	if err != nil {
		return nil, err
	}

	if err := p.writeSidecar(tarball, artifacts); err != nil {
		return nil, err
	}
	return tarball, nil
}

// Repack stages every artifact's extracted tree under its stage path
// and writes the output tarball. The tarball appears at the output
// path only on success (written to a partial path, renamed at the
// end).
func (p *Pipeline) Repack(artifacts []FetchedArtifact, workDir string) (*OutputTarball, error) {
	stagingDir := filepath.Join(workDir, "stage")

	for _, artifact := range artifacts {
		// Manifest validation already rejects escaping stage paths;
		// check the join target anyway so a hand-built config cannot
		// write outside the working directory.
		target := filepath.Join(stagingDir, filepath.FromSlash(artifact.Spec.StagePath))
		if target != stagingDir && !strings.HasPrefix(target, stagingDir+string(os.PathSeparator)) {
			return nil, &RepackError{Err: fmt.Errorf("stage path %q for %s escapes the staging directory",
				artifact.Spec.StagePath, artifact.Spec.Name)}
		}
		if err := copyTree(artifact.ExtractedDir, target); err != nil {
			return nil, &RepackError{Err: fmt.Errorf("staging %s: %w", artifact.Spec.Name, err)}
		}
	}

	entries, err := os.ReadDir(stagingDir)
	if err != nil {
		return nil, &RepackError{Err: fmt.Errorf("reading staging directory: %w", err)}
	}
	if len(entries) == 0 {
		return nil, &RepackError{Err: fmt.Errorf("staging directory is empty: no artifact produced content")}
	}

	p.logger.Info("writing output tarball",
		"path", p.config.OutputPath, "compression", p.config.Compression.String())

	members, err := archive.WriteTarball(p.config.OutputPath, stagingDir, p.config.Compression)
	if err != nil {
		return nil, &RepackError{Err: err}
	}

	digest, err := fetch.DigestFile(p.config.OutputPath)
	if err != nil {
		return nil, &RepackError{Err: err}
	}

	return &OutputTarball{
		Path:    p.config.OutputPath,
		Members: members,
		Digest:  digest,
	}, nil
}

// copyTree copies the tree rooted at source into target, preserving
// directory structure, symlinks, and executable bits.
func copyTree(source, target string) error {
	return filepath.WalkDir(source, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relative, err := filepath.Rel(source, path)
		if err != nil {
			return err
		}
		destination := filepath.Join(target, relative)

		info, err := entry.Info()
		if err != nil {
			return err
		}

		switch {
		case info.IsDir():
			return os.MkdirAll(destination, 0o755)

		case info.Mode()&fs.ModeSymlink != 0:
			linkTarget, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(linkTarget, destination)

		case info.Mode().IsRegular():
			return copyFile(path, destination, info.Mode().Perm())

		default:
			return fmt.Errorf("%s: unsupported file type %s", path, info.Mode())
		}
	})
}

func copyFile(source, destination string, mode os.FileMode) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(destination, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
