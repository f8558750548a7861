// Copyright 2026 The Nappo Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/nappo-build/nappo/cmd/nappo/cli"
	"github.com/nappo-build/nappo/lib/fetch"
	"github.com/nappo-build/nappo/lib/nuget"
)

func downloadCommand() *cli.Command {
	var params struct {
		feed      string
		feedList  string
		feedsPath string
		outputDir string
		verbose   bool
	}

	command := &cli.Command{
		Name:    "download",
		Summary: "Download a .nupkg package from a NuGet feed",
		Usage:   "nappo download <package-name> [<package-version>] [flags]",
		Description: `Search the configured feeds for a package, pick the first match in
version order, and download its .nupkg via the feed's flat container.
The downloaded file name is printed on stdout.`,
		Examples: []cli.Example{
			{
				Description: "Download an exact package version",
				Command:     "nappo download Microsoft.NETCore.ILAsm 6.0.0 --feed dotnet6",
			},
		},
	}

	command.Flags = func() *pflag.FlagSet {
		flagSet := pflag.NewFlagSet("download", pflag.ContinueOnError)
		flagSet.StringVar(&params.feed, "feed", "", "feed alias or service index URL to search")
		flagSet.StringVar(&params.feedList, "feed-list", "", "file listing feed URLs to search, one per line")
		flagSet.StringVar(&params.feedsPath, "feeds", "", "artifact manifest file supplying the feed table")
		flagSet.StringVar(&params.outputDir, "output", ".", "directory the package is written to")
		flagSet.BoolVar(&params.verbose, "verbose", false, "enable debug logging")
		return flagSet
	}

	command.Run = func(args []string) error {
		if len(args) < 1 || len(args) > 2 {
			return fmt.Errorf("usage: nappo download <package-name> [<package-version>]")
		}
		packageName := args[0]
		versionFilter := ""
		if len(args) == 2 {
			versionFilter = args[1]
		}

		manifest, err := loadManifest(params.feedsPath)
		if err != nil {
			return err
		}
		feeds, err := selectFeeds(manifest, params.feed, params.feedList)
		if err != nil {
			return err
		}

		logger := cli.NewCommandLogger(params.verbose).With("command", "download")
		client := nuget.NewClient(nil)
		ctx := context.Background()

		packages, err := searchFeeds(ctx, client, feeds, packageName, versionFilter, logger)
		if err != nil {
			return err
		}
		if len(packages) == 0 {
			return fmt.Errorf("no package matching %q %s found on %d feeds",
				packageName, versionFilter, len(feeds))
		}

		nuget.SortByVersion(packages)
		pkg := packages[0]

		downloadURL, err := client.DownloadURL(ctx, pkg)
		if err != nil {
			return err
		}
		logger.Debug("resolved download URL", "url", downloadURL)

		result, err := fetch.Download(ctx, nil, downloadURL, params.outputDir)
		if err != nil {
			return err
		}
		logger.Debug("downloaded package",
			"path", result.Path, "size", result.Size, "digest", result.Digest)

		fmt.Println(filepath.Base(result.Path))
		return nil
	}

	return command
}
