// Copyright 2026 The Nappo Authors
// SPDX-License-Identifier: Apache-2.0

package nuget

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// maxResponseSize bounds service index and search response body reads.
// Exists solely to keep a pathological feed from exhausting memory;
// legitimate responses are orders of magnitude smaller.
const maxResponseSize int64 = 64 << 20

// Resource @type prefixes in the v3 service index.
const (
	searchServiceType  = "SearchQueryService/3.0"
	contentServiceType = "PackageBaseAddress/3.0"
)

// Package is one package version found on a feed.
type Package struct {
	// Name is the package id as reported by the feed.
	Name string

	// Version is the package version string as reported by the feed.
	Version string

	// Feed is the service index URL of the feed the package was
	// found on.
	Feed string
}

// ServiceIndex holds the resolved service URLs for a feed.
type ServiceIndex struct {
	// SearchURL is the SearchQueryService endpoint.
	SearchURL string

	// ContentURL is the PackageBaseAddress endpoint (flat container
	// base), with any trailing slash removed.
	ContentURL string
}

// Client queries NuGet v3 feeds.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a feed client. A nil httpClient uses
// http.DefaultClient.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{httpClient: httpClient}
}

// ServiceIndex fetches and resolves a feed's v3 index.json.
func (c *Client) ServiceIndex(ctx context.Context, feedURL string) (*ServiceIndex, error) {
	var document struct {
		Resources []struct {
			ID   string `json:"@id"`
			Type string `json:"@type"`
		} `json:"resources"`
	}
	if err := c.getJSON(ctx, feedURL, &document); err != nil {
		return nil, fmt.Errorf("fetching service index %s: %w", feedURL, err)
	}

	index := &ServiceIndex{}
	for _, resource := range document.Resources {
		switch {
		case strings.HasPrefix(resource.Type, searchServiceType):
			index.SearchURL = resource.ID
		case strings.HasPrefix(resource.Type, contentServiceType):
			index.ContentURL = strings.TrimSuffix(resource.ID, "/")
		}
	}
	return index, nil
}

// Search queries a feed for packages matching name. versionFilter is
// optional: empty matches all versions, otherwise it is an exact
// version or a trailing-* prefix pattern (see Matches). Results are in
// feed order; callers sort with SortByVersion.
func (c *Client) Search(ctx context.Context, feedURL, name, versionFilter string) ([]Package, error) {
	if name == "" {
		return nil, fmt.Errorf("package name is required")
	}

	index, err := c.ServiceIndex(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	if index.SearchURL == "" {
		return nil, fmt.Errorf("feed %s has no search service", feedURL)
	}

	query := url.Values{}
	query.Set("q", name)
	query.Set("prerelease", "true")
	query.Set("semVerLevel", "2.0.0")
	searchURL := index.SearchURL + "?" + query.Encode()

	var document struct {
		Data []struct {
			ID       string `json:"id"`
			Versions []struct {
				Version string `json:"version"`
			} `json:"versions"`
		} `json:"data"`
	}
	if err := c.getJSON(ctx, searchURL, &document); err != nil {
		return nil, fmt.Errorf("searching %s for %q: %w", feedURL, name, err)
	}

	var packages []Package
	for _, entry := range document.Data {
		for _, version := range entry.Versions {
			if versionFilter != "" && !Matches(version.Version, versionFilter) {
				continue
			}
			packages = append(packages, Package{
				Name:    entry.ID,
				Version: version.Version,
				Feed:    feedURL,
			})
		}
	}
	return packages, nil
}

// DownloadURL resolves pkg's feed service index and builds the flat
// container URL for its .nupkg. The package id and version are
// lowercased per the flat container contract.
func (c *Client) DownloadURL(ctx context.Context, pkg Package) (string, error) {
	index, err := c.ServiceIndex(ctx, pkg.Feed)
	if err != nil {
		return "", err
	}
	if index.ContentURL == "" {
		return "", fmt.Errorf("feed %s has no package content service", pkg.Feed)
	}

	id := strings.ToLower(pkg.Name)
	version := strings.ToLower(pkg.Version)
	return fmt.Sprintf("%s/%s/%s/%s.%s.nupkg", index.ContentURL, id, version, id, version), nil
}

func (c *Client) getJSON(ctx context.Context, requestURL string, v any) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return err
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %s", response.Status)
	}

	data, err := io.ReadAll(io.LimitReader(response.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	return json.Unmarshal(data, v)
}
