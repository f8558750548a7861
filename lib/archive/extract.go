// Copyright 2026 The Nappo Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"archive/tar"
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Extract unpacks the archive at archivePath into destDir, which must
// already exist. Member paths are validated against traversal: absolute
// paths and paths escaping destDir via ".." are rejected.
func Extract(archivePath, destDir string, format Format) error {
	switch format {
	case FormatZip:
		return extractZip(archivePath, destDir)
	case FormatTar, FormatTarGz, FormatTarZstd, FormatTarLz4:
		return extractTarFile(archivePath, destDir, format)
	default:
		return fmt.Errorf("cannot extract format %s", format)
	}
}

func extractTarFile(archivePath, destDir string, format Format) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", archivePath, err)
	}
	defer file.Close()

	var reader io.Reader
	switch format {
	case FormatTar:
		reader = file
	case FormatTarGz:
		gzipReader, err := gzip.NewReader(file)
		if err != nil {
			return fmt.Errorf("%s: %w", archivePath, err)
		}
		defer gzipReader.Close()
		reader = gzipReader
	case FormatTarZstd:
		zstdReader, err := zstd.NewReader(file)
		if err != nil {
			return fmt.Errorf("%s: %w", archivePath, err)
		}
		defer zstdReader.Close()
		reader = zstdReader
	case FormatTarLz4:
		reader = lz4.NewReader(file)
	}

	if err := extractTar(reader, destDir); err != nil {
		return fmt.Errorf("%s: %w", archivePath, err)
	}
	return nil
}

func extractTar(reader io.Reader, destDir string) error {
	tarReader := tar.NewReader(reader)

	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading tar: %w", err)
		}

		target, err := securePath(destDir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("creating directory: %w", err)
			}

		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("creating directory: %w", err)
			}
			if err := writeMember(target, tarReader, header.FileInfo().Mode().Perm()); err != nil {
				return err
			}

		case tar.TypeSymlink:
			// Link targets must stay inside the extraction root.
			if err := validateLinkTarget(destDir, target, header.Linkname); err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("creating directory: %w", err)
			}
			if err := os.Symlink(header.Linkname, target); err != nil {
				return fmt.Errorf("creating symlink %s: %w", header.Name, err)
			}

		default:
			// Hard links, devices, and fifos are not expected in
			// bootstrap archives; skip rather than fail.
			continue
		}
	}
}

func extractZip(archivePath, destDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", archivePath, err)
	}
	defer reader.Close()

	for _, member := range reader.File {
		target, err := securePath(destDir, member.Name)
		if err != nil {
			return err
		}

		mode := member.FileInfo().Mode()
		if mode.IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("creating directory: %w", err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("creating directory: %w", err)
		}

		// Zip symlink entries carry the link target as their body.
		if mode&os.ModeSymlink != 0 {
			linkTarget, err := zipLinkTarget(member)
			if err != nil {
				return err
			}
			if err := validateLinkTarget(destDir, target, linkTarget); err != nil {
				return err
			}
			if err := os.Symlink(linkTarget, target); err != nil {
				return fmt.Errorf("creating symlink %s: %w", member.Name, err)
			}
			continue
		}

		memberReader, err := member.Open()
		if err != nil {
			return fmt.Errorf("opening member %s: %w", member.Name, err)
		}
		err = writeMember(target, memberReader, mode.Perm())
		memberReader.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// maxLinkTarget bounds how much of a zip symlink member's body is read
// as a link target.
const maxLinkTarget = 4 << 10

func zipLinkTarget(member *zip.File) (string, error) {
	reader, err := member.Open()
	if err != nil {
		return "", fmt.Errorf("opening member %s: %w", member.Name, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(io.LimitReader(reader, maxLinkTarget))
	if err != nil {
		return "", fmt.Errorf("reading symlink %s: %w", member.Name, err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("symlink %s has empty target", member.Name)
	}
	return string(data), nil
}

func writeMember(target string, reader io.Reader, mode os.FileMode) error {
	file, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("creating %s: %w", target, err)
	}
	if _, err := io.Copy(file, reader); err != nil {
		file.Close()
		return fmt.Errorf("writing %s: %w", target, err)
	}
	return file.Close()
}

// securePath joins a member name onto the extraction root, rejecting
// absolute names and names that escape the root via "..".
func securePath(destDir, name string) (string, error) {
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("archive member %q has absolute path", name)
	}
	target := filepath.Join(destDir, name)
	if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) && target != filepath.Clean(destDir) {
		return "", fmt.Errorf("archive member %q escapes extraction directory", name)
	}
	return target, nil
}

// validateLinkTarget rejects symlinks whose resolved target lies
// outside the extraction root.
func validateLinkTarget(destDir, linkPath, linkTarget string) error {
	if filepath.IsAbs(linkTarget) {
		return fmt.Errorf("symlink %s has absolute target %q", linkPath, linkTarget)
	}
	resolved := filepath.Join(filepath.Dir(linkPath), linkTarget)
	if !strings.HasPrefix(resolved, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return fmt.Errorf("symlink %s target %q escapes extraction directory", linkPath, linkTarget)
	}
	return nil
}
