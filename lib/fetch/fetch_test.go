// Copyright 2026 The Nappo Authors
// SPDX-License-Identifier: Apache-2.0

package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDownload(t *testing.T) {
	t.Parallel()

	content := "artifact bytes"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(content))
	}))
	t.Cleanup(server.Close)

	destDir := t.TempDir()
	result, err := Download(context.Background(), nil, server.URL+"/path/artifact.tar.gz", destDir)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}

	if got := filepath.Base(result.Path); got != "artifact.tar.gz" {
		t.Errorf("downloaded file name = %q, want artifact.tar.gz", got)
	}
	if result.Size != int64(len(content)) {
		t.Errorf("size = %d, want %d", result.Size, len(content))
	}

	data, err := os.ReadFile(result.Path)
	if err != nil {
		t.Fatalf("reading downloaded file: %v", err)
	}
	if string(data) != content {
		t.Errorf("downloaded content = %q, want %q", data, content)
	}

	// The streamed digest matches a fresh digest of the file on disk.
	digest, err := DigestFile(result.Path)
	if err != nil {
		t.Fatalf("DigestFile: %v", err)
	}
	if digest != result.Digest {
		t.Errorf("streamed digest %s != file digest %s", result.Digest, digest)
	}
}

func TestDownloadHTTPError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such nugget", http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	destDir := t.TempDir()
	_, err := Download(context.Background(), nil, server.URL+"/missing.tar.gz", destDir)
	if err == nil {
		t.Fatal("Download of 404 succeeded, want error")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error %q does not mention the HTTP status", err)
	}
	if !strings.Contains(err.Error(), "no such nugget") {
		t.Errorf("error %q does not include the response body", err)
	}

	// No file is left behind on failure.
	entries, readErr := os.ReadDir(destDir)
	if readErr != nil {
		t.Fatal(readErr)
	}
	if len(entries) != 0 {
		t.Errorf("destination directory not empty after failed download: %v", entries)
	}
}

func TestDownloadConnectionRefused(t *testing.T) {
	t.Parallel()

	// A server that is already closed refuses connections.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := Download(context.Background(), nil, url+"/artifact", t.TempDir())
	if err == nil {
		t.Fatal("Download against closed server succeeded, want error")
	}
}
