// Copyright 2026 The Nappo Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/nappo-build/nappo/cmd/nappo/cli"
	"github.com/nappo-build/nappo/lib/nuget"
)

func searchCommand() *cli.Command {
	var params struct {
		feed      string
		feedList  string
		feedsPath string
		verbose   bool
	}

	command := &cli.Command{
		Name:    "search",
		Summary: "Search NuGet feeds for package versions",
		Usage:   "nappo search <package-name> [<package-version>] [flags]",
		Description: `Search the configured NuGet feeds for a package. The optional
version argument is an exact version or a trailing-* prefix pattern
(e.g. "6.0.*"). Results are printed one per line, sorted ascending by
version, as "<name> <version> <feed>".

A feed that cannot be reached is logged and skipped; the search
continues on the remaining feeds.`,
		Examples: []cli.Example{
			{
				Description: "Find every version of a package on every known feed",
				Command:     "nappo search Microsoft.NETCore.App.Ref",
			},
			{
				Description: "Limit to one feed and a version prefix",
				Command:     "nappo search Microsoft.NETCore.ILAsm '6.0.*' --feed dotnet6",
			},
		},
	}

	command.Flags = func() *pflag.FlagSet {
		flagSet := pflag.NewFlagSet("search", pflag.ContinueOnError)
		flagSet.StringVar(&params.feed, "feed", "", "feed alias or service index URL to search")
		flagSet.StringVar(&params.feedList, "feed-list", "", "file listing feed URLs to search, one per line")
		flagSet.StringVar(&params.feedsPath, "feeds", "", "artifact manifest file supplying the feed table")
		flagSet.BoolVar(&params.verbose, "verbose", false, "enable debug logging")
		return flagSet
	}

	command.Run = func(args []string) error {
		if len(args) < 1 || len(args) > 2 {
			return fmt.Errorf("usage: nappo search <package-name> [<package-version>]")
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

		logger := cli.NewCommandLogger(params.verbose).With("command", "search")
		client := nuget.NewClient(nil)

		packages, err := searchFeeds(context.Background(), client, feeds, packageName, versionFilter, logger)
		if err != nil {
			return err
		}

		nuget.SortByVersion(packages)
		for _, pkg := range packages {
			fmt.Printf("%s %s %s\n", pkg.Name, pkg.Version, pkg.Feed)
		}
		return nil
	}

	return command
}
