// Copyright 2026 The Nappo Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/nappo-build/nappo/cmd/nappo/cli"
)

func listFeedsCommand() *cli.Command {
	var params struct {
		feedsPath string
	}

	command := &cli.Command{
		Name:    "list-feeds",
		Summary: "Print the configured NuGet feed table",
		Description: `Print every feed in the manifest's feed table, one per line, as
"<url> (alias: <name>)", sorted by alias.`,
	}

	command.Flags = func() *pflag.FlagSet {
		flagSet := pflag.NewFlagSet("list-feeds", pflag.ContinueOnError)
		flagSet.StringVar(&params.feedsPath, "feeds", "", "artifact manifest file supplying the feed table")
		return flagSet
	}

	command.Run = func(args []string) error {
		if len(args) > 0 {
			return fmt.Errorf("list-feeds takes no positional arguments")
		}

		manifest, err := loadManifest(params.feedsPath)
		if err != nil {
			return err
		}
		for _, alias := range manifest.FeedNames() {
			fmt.Printf("%s (alias: %s)\n", manifest.Feeds[alias], alias)
		}
		return nil
	}

	return command
}
