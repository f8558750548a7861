// Copyright 2026 The Nappo Authors
// SPDX-License-Identifier: Apache-2.0

// Package fetch downloads remote files over HTTP to local temporary
// files, computing a BLAKE3 digest of the body while streaming. It is
// a thin layer over net/http: the default transport is used, so the
// standard proxy environment variables are honored, and there is no
// retry policy — a failed fetch is fatal to the caller.
package fetch

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"
)

// maxErrorBody bounds how much of an HTTP error response body is read
// for inclusion in error messages.
const maxErrorBody = 4 << 10

// Result describes a completed download.
type Result struct {
	// Path is the local file the body was written to.
	Path string

	// Size is the body length in bytes.
	Size int64

	// Digest is the lowercase hex BLAKE3 digest of the body.
	Digest string
}

// Download issues a GET for url and streams the response body to a new
// file in destDir named after the last URL path segment. Non-2xx
// responses and transport failures are errors; on any error no file is
// left behind.
func Download(ctx context.Context, client *http.Client, url, destDir string) (*Result, error) {
	if client == nil {
		client = http.DefaultClient
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}

	response, err := client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(response.Body, maxErrorBody))
		if len(body) > 0 {
			return nil, fmt.Errorf("fetching %s: HTTP %s: %s", url, response.Status, body)
		}
		return nil, fmt.Errorf("fetching %s: HTTP %s", url, response.Status)
	}

	name := filepath.Base(request.URL.Path)
	if name == "/" || name == "." {
		name = "download"
	}
	path := filepath.Join(destDir, name)

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}

	hasher := blake3.New()
	size, err := io.Copy(io.MultiWriter(file, hasher), response.Body)
	if err != nil {
		file.Close()
		os.Remove(path)
		return nil, fmt.Errorf("downloading %s: %w", url, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("closing %s: %w", path, err)
	}

	return &Result{
		Path:   path,
		Size:   size,
		Digest: hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// DigestFile computes the lowercase hex BLAKE3 digest of an existing
// file.
func DigestFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
