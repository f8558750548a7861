// Copyright 2026 The Nappo Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression identifies the compression applied to an output tarball.
type Compression uint8

const (
	// CompressionNone writes a plain tar.
	CompressionNone Compression = iota

	// CompressionGzip writes a tar.gz. Default: every downstream
	// consumer can read it.
	CompressionGzip

	// CompressionZstd writes a tar.zst. Better ratio and much faster
	// decode than gzip when the consumer supports it.
	CompressionZstd
)

// String returns the flag spelling of the compression choice.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCompression parses a compression choice from its flag spelling.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "none":
		return CompressionNone, nil
	case "gzip":
		return CompressionGzip, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("unknown compression %q (supported: none, gzip, zstd)", name)
	}
}

// Extension returns the output file extension for the compression
// choice, including the leading dot.
func (c Compression) Extension() string {
	switch c {
	case CompressionGzip:
		return ".tar.gz"
	case CompressionZstd:
		return ".tar.zst"
	default:
		return ".tar"
	}
}

// WriteTarball archives the tree rooted at root into a tarball at
// outputPath and returns the sorted list of member names.
//
// The output is deterministic: members are ordered lexicographically,
// timestamps are the Unix epoch, ownership is 0/0, and mode bits are
// normalized (0644/0755 for files by executable bit, 0755 for
// directories). Two runs over identical trees produce byte-identical
// tarballs.
//
// The tarball is written to outputPath + ".partial" and renamed into
// place on success; on failure the partial file is removed and nothing
// is left at outputPath.
func WriteTarball(outputPath, root string, compression Compression) (members []string, err error) {
	partialPath := outputPath + ".partial"

	file, err := os.Create(partialPath)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", partialPath, err)
	}
	defer func() {
		if err != nil {
			file.Close()
			os.Remove(partialPath)
		}
	}()

	var sink io.Writer = file
	var closers []io.Closer

	switch compression {
	case CompressionGzip:
		gzipWriter := gzip.NewWriter(file)
		sink = gzipWriter
		closers = append(closers, gzipWriter)
	case CompressionZstd:
		zstdWriter, err := zstd.NewWriter(file)
		if err != nil {
			return nil, fmt.Errorf("creating zstd writer: %w", err)
		}
		sink = zstdWriter
		closers = append(closers, zstdWriter)
	}

	tarWriter := tar.NewWriter(sink)

	members, err = collectMembers(root)
	if err != nil {
		return nil, err
	}

	for _, member := range members {
		if err := writeTarMember(tarWriter, root, member); err != nil {
			return nil, err
		}
	}

	if err := tarWriter.Close(); err != nil {
		return nil, fmt.Errorf("finalizing tar: %w", err)
	}
	for _, closer := range closers {
		if err := closer.Close(); err != nil {
			return nil, fmt.Errorf("finalizing compression: %w", err)
		}
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("closing %s: %w", partialPath, err)
	}

	if err := os.Rename(partialPath, outputPath); err != nil {
		os.Remove(partialPath)
		return nil, fmt.Errorf("renaming %s into place: %w", partialPath, err)
	}
	return members, nil
}

// collectMembers walks root and returns the sorted slash-separated
// relative paths of every directory, file, and symlink under it.
func collectMembers(root string) ([]string, error) {
	var members []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		relative, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		members = append(members, filepath.ToSlash(relative))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	sort.Strings(members)
	return members, nil
}

func writeTarMember(tarWriter *tar.Writer, root, member string) error {
	path := filepath.Join(root, filepath.FromSlash(member))
	info, err := os.Lstat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	header := &tar.Header{
		Name:    member,
		ModTime: time.Unix(0, 0),
		Format:  tar.FormatUSTAR,
	}

	switch {
	case info.Mode().IsDir():
		header.Typeflag = tar.TypeDir
		header.Name += "/"
		header.Mode = 0o755

	case info.Mode()&fs.ModeSymlink != 0:
		linkTarget, err := os.Readlink(path)
		if err != nil {
			return fmt.Errorf("readlink %s: %w", path, err)
		}
		header.Typeflag = tar.TypeSymlink
		header.Linkname = linkTarget
		header.Mode = 0o777

	case info.Mode().IsRegular():
		header.Typeflag = tar.TypeReg
		header.Size = info.Size()
		header.Mode = 0o644
		if info.Mode()&0o100 != 0 {
			header.Mode = 0o755
		}

	default:
		return fmt.Errorf("%s: unsupported file type %s", path, info.Mode())
	}

	if err := tarWriter.WriteHeader(header); err != nil {
		return fmt.Errorf("writing header for %s: %w", member, err)
	}

	if header.Typeflag == tar.TypeReg {
		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		_, err = io.Copy(tarWriter, file)
		file.Close()
		if err != nil {
			return fmt.Errorf("writing %s: %w", member, err)
		}
	}
	return nil
}
