// Copyright 2026 The Nappo Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/nappo-build/nappo/lib/feed"
	"github.com/nappo-build/nappo/lib/nuget"
)

func feedTable(t *testing.T) *feed.Manifest {
	t.Helper()
	manifest, err := feed.Parse([]byte(`{
		"schema_version": 1,
		"architectures": {"s390x": {}},
		"artifacts": [{"name": "sdk", "url_template": "https://example.com/sdk"}],
		"feeds": {
			"alpha": "https://alpha.example.com/index.json",
			"beta": "https://beta.example.com/index.json"
		}
	}`))
	if err != nil {
		t.Fatal(err)
	}
	return manifest
}

func TestSelectFeeds(t *testing.T) {
	t.Parallel()

	manifest := feedTable(t)

	t.Run("alias resolves through the table", func(t *testing.T) {
		t.Parallel()
		feeds, err := selectFeeds(manifest, "alpha", "")
		if err != nil {
			t.Fatal(err)
		}
		if len(feeds) != 1 || feeds[0] != "https://alpha.example.com/index.json" {
			t.Errorf("feeds = %v", feeds)
		}
	})

	t.Run("literal URL passes through", func(t *testing.T) {
		t.Parallel()
		feeds, err := selectFeeds(manifest, "https://other.example.com/index.json", "")
		if err != nil {
			t.Fatal(err)
		}
		if len(feeds) != 1 || feeds[0] != "https://other.example.com/index.json" {
			t.Errorf("feeds = %v", feeds)
		}
	})

	t.Run("default is every feed sorted by alias", func(t *testing.T) {
		t.Parallel()
		feeds, err := selectFeeds(manifest, "", "")
		if err != nil {
			t.Fatal(err)
		}
		if len(feeds) != 2 || feeds[0] != "https://alpha.example.com/index.json" || feeds[1] != "https://beta.example.com/index.json" {
			t.Errorf("feeds = %v", feeds)
		}
	})

	t.Run("feed and feed-list conflict", func(t *testing.T) {
		t.Parallel()
		if _, err := selectFeeds(manifest, "alpha", "/some/list"); err == nil {
			t.Error("conflicting flags accepted")
		}
	})

	t.Run("feed list file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "feeds.txt")
		content := "# internal feeds\nhttps://one.example.com/index.json\n\nhttps://two.example.com/index.json\n"
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		feeds, err := selectFeeds(manifest, "", path)
		if err != nil {
			t.Fatal(err)
		}
		if len(feeds) != 2 || feeds[0] != "https://one.example.com/index.json" {
			t.Errorf("feeds = %v", feeds)
		}
	})
}

func TestSearchFeedsSkipsBrokenFeed(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	mux.HandleFunc("/good/index.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"resources": [{"@id": "%s/good/query", "@type": "SearchQueryService/3.0.0"}]}`, server.URL)
	})
	mux.HandleFunc("/good/query", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": [{"id": "Pkg", "versions": [{"version": "1.0.0"}]}]}`)
	})
	mux.HandleFunc("/broken/index.json", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	})

	logger := slog.New(slog.DiscardHandler)
	client := nuget.NewClient(nil)
	feeds := []string{server.URL + "/broken/index.json", server.URL + "/good/index.json"}

	packages, err := searchFeeds(context.Background(), client, feeds, "Pkg", "", logger)
	if err != nil {
		t.Fatalf("searchFeeds: %v", err)
	}
	if len(packages) != 1 || packages[0].Version != "1.0.0" {
		t.Errorf("packages = %+v", packages)
	}

	// When every feed fails, the command fails.
	_, err = searchFeeds(context.Background(), client, []string{server.URL + "/broken/index.json"}, "Pkg", "", logger)
	if err == nil {
		t.Error("all-feeds-broken search succeeded")
	}
}
