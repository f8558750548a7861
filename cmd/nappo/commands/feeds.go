// Copyright 2026 The Nappo Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/nappo-build/nappo/lib/feed"
	"github.com/nappo-build/nappo/lib/nuget"
)

// selectFeeds resolves the feed URLs a search/download command should
// query. Precedence: an explicit --feed (alias from the manifest feed
// table, or a literal URL), then a --feed-list file (one URL per line,
// blank lines and # comments skipped), then every feed in the table.
func selectFeeds(manifest *feed.Manifest, feedFlag, feedListPath string) ([]string, error) {
	if feedFlag != "" && feedListPath != "" {
		return nil, fmt.Errorf("--feed and --feed-list are mutually exclusive")
	}

	if feedFlag != "" {
		if url, exists := manifest.Feeds[feedFlag]; exists {
			return []string{url}, nil
		}
		return []string{feedFlag}, nil
	}

	if feedListPath != "" {
		return readFeedList(feedListPath)
	}

	urls := make([]string, 0, len(manifest.Feeds))
	for _, alias := range manifest.FeedNames() {
		urls = append(urls, manifest.Feeds[alias])
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("no feeds configured")
	}
	return urls, nil
}

func readFeedList(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading feed list: %w", err)
	}
	defer file.Close()

	var urls []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading feed list %s: %w", path, err)
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("feed list %s contains no feeds", path)
	}
	return urls, nil
}

// searchFeeds queries every feed for the package and accumulates the
// results. An unreachable or broken feed is logged and skipped so one
// dead mirror doesn't hide results from the others; only a total
// failure (every feed errored) is reported as an error.
func searchFeeds(ctx context.Context, client *nuget.Client, feeds []string, packageName, versionFilter string, logger *slog.Logger) ([]nuget.Package, error) {
	var packages []nuget.Package
	failures := 0

	for _, feedURL := range feeds {
		found, err := client.Search(ctx, feedURL, packageName, versionFilter)
		if err != nil {
			logger.Warn("feed search failed", "feed", feedURL, "error", err)
			failures++
			continue
		}
		packages = append(packages, found...)
	}

	if failures == len(feeds) {
		return nil, fmt.Errorf("all %d feeds failed searching for %q", len(feeds), packageName)
	}
	return packages, nil
}
