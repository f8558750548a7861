// Copyright 2026 The Nappo Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Format identifies an archive container format.
type Format uint8

const (
	// FormatUnknown is the zero value; Detect never returns it
	// without an error.
	FormatUnknown Format = iota

	// FormatZip is a zip archive.
	FormatZip

	// FormatTar is an uncompressed tar archive.
	FormatTar

	// FormatTarGz is a gzip-compressed tar archive.
	FormatTarGz

	// FormatTarZstd is a zstd-compressed tar archive.
	FormatTarZstd

	// FormatTarLz4 is an lz4-frame-compressed tar archive.
	FormatTarLz4
)

// String returns the manifest spelling of the format.
func (f Format) String() string {
	switch f {
	case FormatZip:
		return "zip"
	case FormatTar:
		return "tar"
	case FormatTarGz:
		return "tar.gz"
	case FormatTarZstd:
		return "tar.zst"
	case FormatTarLz4:
		return "tar.lz4"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(f))
	}
}

// ParseFormat parses a format from its manifest spelling.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "zip":
		return FormatZip, nil
	case "tar":
		return FormatTar, nil
	case "tar.gz", "tgz":
		return FormatTarGz, nil
	case "tar.zst":
		return FormatTarZstd, nil
	case "tar.lz4":
		return FormatTarLz4, nil
	default:
		return FormatUnknown, fmt.Errorf("unknown archive format %q", name)
	}
}

// Magic byte prefixes for the supported container formats.
var (
	magicZip  = []byte{0x50, 0x4b, 0x03, 0x04}
	magicGzip = []byte{0x1f, 0x8b}
	magicZstd = []byte{0x28, 0xb5, 0x2f, 0xfd}
	magicLz4  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// tarMagicOffset is the position of the "ustar" marker in a tar header.
const tarMagicOffset = 257

// Detect sniffs the archive format of the file at path from its magic
// bytes. Returns an error if the file matches no supported format.
func Detect(path string) (Format, error) {
	file, err := os.Open(path)
	if err != nil {
		return FormatUnknown, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	// Short and empty files fall through to the format switch rather
	// than surfacing a read error.
	header := make([]byte, tarMagicOffset+8)
	n, err := io.ReadFull(file, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return FormatUnknown, fmt.Errorf("reading %s: %w", path, err)
	}
	header = header[:n]

	switch {
	case bytes.HasPrefix(header, magicZip):
		return FormatZip, nil
	case bytes.HasPrefix(header, magicGzip):
		return FormatTarGz, nil
	case bytes.HasPrefix(header, magicZstd):
		return FormatTarZstd, nil
	case bytes.HasPrefix(header, magicLz4):
		return FormatTarLz4, nil
	case len(header) >= tarMagicOffset+5 && bytes.Equal(header[tarMagicOffset:tarMagicOffset+5], []byte("ustar")):
		return FormatTar, nil
	default:
		return FormatUnknown, fmt.Errorf("%s: unrecognized archive format", path)
	}
}
