// Copyright 2026 The Nappo Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
)

// writeTarGz writes a tar.gz archive at path containing the given
// files (name → content).
func writeTarGz(t *testing.T, path string, files map[string]string) {
	t.Helper()

	var buf bytes.Buffer
	gzipWriter := gzip.NewWriter(&buf)
	tarWriter := tar.NewWriter(gzipWriter)

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		content := files[name]
		header := &tar.Header{
			Name:     name,
			Typeflag: tar.TypeReg,
			Mode:     0o644,
			Size:     int64(len(content)),
		}
		if err := tarWriter.WriteHeader(header); err != nil {
			t.Fatal(err)
		}
		if _, err := tarWriter.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tarWriter.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gzipWriter.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()

	var buf bytes.Buffer
	zipWriter := zip.NewWriter(&buf)
	for name, content := range files {
		member, err := zipWriter.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := member.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zipWriter.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

// fileSet walks root and returns the sorted relative paths of regular
// files under it.
func fileSet(t *testing.T, root string) []string {
	t.Helper()

	var files []string
	err := filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.Type().IsRegular() {
			relative, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			files = append(files, filepath.ToSlash(relative))
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(files)
	return files
}

func TestDetect(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	tarGzPath := filepath.Join(dir, "a.tar.gz")
	writeTarGz(t, tarGzPath, map[string]string{"f": "x"})

	zipPath := filepath.Join(dir, "a.zip")
	writeZip(t, zipPath, map[string]string{"f": "x"})

	// A plain tar: strip the gzip layer by writing one directly.
	tarPath := filepath.Join(dir, "a.tar")
	var tarBuf bytes.Buffer
	tarWriter := tar.NewWriter(&tarBuf)
	if err := tarWriter.WriteHeader(&tar.Header{Name: "f", Typeflag: tar.TypeReg, Mode: 0o644, Size: 1}); err != nil {
		t.Fatal(err)
	}
	if _, err := tarWriter.Write([]byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := tarWriter.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(tarPath, tarBuf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	zstdPath := filepath.Join(dir, "a.tar.zst")
	if err := os.WriteFile(zstdPath, []byte{0x28, 0xb5, 0x2f, 0xfd, 0x00}, 0o644); err != nil {
		t.Fatal(err)
	}
	lz4Path := filepath.Join(dir, "a.tar.lz4")
	if err := os.WriteFile(lz4Path, []byte{0x04, 0x22, 0x4d, 0x18, 0x00}, 0o644); err != nil {
		t.Fatal(err)
	}
	junkPath := filepath.Join(dir, "junk")
	if err := os.WriteFile(junkPath, []byte("not an archive"), 0o644); err != nil {
		t.Fatal(err)
	}
	emptyPath := filepath.Join(dir, "empty")
	if err := os.WriteFile(emptyPath, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{path: tarGzPath, want: FormatTarGz},
		{path: zipPath, want: FormatZip},
		{path: tarPath, want: FormatTar},
		{path: zstdPath, want: FormatTarZstd},
		{path: lz4Path, want: FormatTarLz4},
		{path: junkPath, wantErr: true},
		{path: emptyPath, wantErr: true},
	}

	for _, test := range tests {
		got, err := Detect(test.path)
		if test.wantErr {
			if err == nil {
				t.Errorf("Detect(%s) = %s, want error", test.path, got)
			} else if !strings.Contains(err.Error(), "unrecognized archive format") {
				t.Errorf("Detect(%s) error = %v, want unrecognized-format error", test.path, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Detect(%s): %v", test.path, err)
			continue
		}
		if got != test.want {
			t.Errorf("Detect(%s) = %s, want %s", test.path, got, test.want)
		}
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	t.Parallel()

	for _, format := range []Format{FormatZip, FormatTar, FormatTarGz, FormatTarZstd, FormatTarLz4} {
		parsed, err := ParseFormat(format.String())
		if err != nil {
			t.Errorf("ParseFormat(%q): %v", format.String(), err)
			continue
		}
		if parsed != format {
			t.Errorf("ParseFormat(%q) = %s, want %s", format.String(), parsed, format)
		}
	}

	if _, err := ParseFormat("rar"); err == nil {
		t.Error("ParseFormat(rar) succeeded, want error")
	}
}

func TestExtractTarGz(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	archivePath := filepath.Join(dir, "a.tar.gz")
	files := map[string]string{
		"marker.txt":         "hello",
		"sub/dir/nested.txt": "nested",
	}
	writeTarGz(t, archivePath, files)

	destDir := filepath.Join(dir, "out")
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := Extract(archivePath, destDir, FormatTarGz); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	got := fileSet(t, destDir)
	want := []string{"marker.txt", "sub/dir/nested.txt"}
	if len(got) != len(want) {
		t.Fatalf("extracted files = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("extracted files = %v, want %v", got, want)
		}
	}

	data, err := os.ReadFile(filepath.Join(destDir, "sub", "dir", "nested.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "nested" {
		t.Errorf("nested.txt content = %q, want %q", data, "nested")
	}
}

func TestExtractZip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	archivePath := filepath.Join(dir, "a.zip")
	writeZip(t, archivePath, map[string]string{
		"tool.dll":    "binary",
		"lib/dep.dll": "more binary",
	})

	destDir := filepath.Join(dir, "out")
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := Extract(archivePath, destDir, FormatZip); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	got := fileSet(t, destDir)
	if len(got) != 2 || got[0] != "lib/dep.dll" || got[1] != "tool.dll" {
		t.Fatalf("extracted files = %v", got)
	}
}

// writeZipWithSymlink writes a zip at path containing one regular file
// and one symlink member pointing at linkTarget.
func writeZipWithSymlink(t *testing.T, path, linkTarget string) {
	t.Helper()

	var buf bytes.Buffer
	zipWriter := zip.NewWriter(&buf)
	member, err := zipWriter.Create("bin/tool")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := member.Write([]byte("binary")); err != nil {
		t.Fatal(err)
	}

	header := &zip.FileHeader{Name: "bin/tool-link"}
	header.SetMode(os.ModeSymlink | 0o777)
	link, err := zipWriter.CreateHeader(header)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := link.Write([]byte(linkTarget)); err != nil {
		t.Fatal(err)
	}

	if err := zipWriter.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestExtractZipSymlink(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	archivePath := filepath.Join(dir, "a.zip")
	writeZipWithSymlink(t, archivePath, "tool")

	destDir := filepath.Join(dir, "out")
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := Extract(archivePath, destDir, FormatZip); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	got, err := os.Readlink(filepath.Join(destDir, "bin", "tool-link"))
	if err != nil {
		t.Fatalf("symlink member was not extracted as a symlink: %v", err)
	}
	if got != "tool" {
		t.Errorf("link target = %q, want %q", got, "tool")
	}
}

func TestExtractZipRejectsEscapingSymlink(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	archivePath := filepath.Join(dir, "evil.zip")
	writeZipWithSymlink(t, archivePath, "../../outside")

	destDir := filepath.Join(dir, "out")
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		t.Fatal(err)
	}
	err := Extract(archivePath, destDir, FormatZip)
	if err == nil || !strings.Contains(err.Error(), "escapes extraction directory") {
		t.Fatalf("Extract of escaping symlink = %v, want escape error", err)
	}
}

func TestExtractRejectsTraversal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	archivePath := filepath.Join(dir, "evil.tar.gz")
	writeTarGz(t, archivePath, map[string]string{"../evil.txt": "boom"})

	destDir := filepath.Join(dir, "out")
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		t.Fatal(err)
	}
	err := Extract(archivePath, destDir, FormatTarGz)
	if err == nil || !strings.Contains(err.Error(), "escapes extraction directory") {
		t.Fatalf("Extract of traversal archive = %v, want escape error", err)
	}

	if _, statErr := os.Stat(filepath.Join(dir, "evil.txt")); !os.IsNotExist(statErr) {
		t.Error("traversal member was written outside the extraction directory")
	}
}
