// Copyright 2026 The Nappo Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands wires the nappo command tree.
package commands

import (
	"fmt"

	"github.com/nappo-build/nappo/cmd/nappo/cli"
	"github.com/nappo-build/nappo/lib/version"
)

// Root returns the top-level nappo command.
func Root() *cli.Command {
	return &cli.Command{
		Name:    "nappo",
		Summary: "Bootstrap artifact tool for managed runtimes",
		Description: `nappo assembles the minimal set of build artifacts needed to
bootstrap a managed runtime from source on platforms without pre-built
binaries. It fetches per-architecture artifact archives, extracts them,
and repacks them into a single deterministic tarball for the downstream
build pipeline. It can also search NuGet v3 feeds and download
individual packages, with a focus on obscure and internal feeds.`,
		Subcommands: []*cli.Command{
			bootstrapCommand(),
			searchCommand(),
			downloadCommand(),
			listFeedsCommand(),
			versionCommand(),
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:    "version",
		Summary: "Print build version information",
		Run: func(args []string) error {
			fmt.Println(version.Full())
			return nil
		},
	}
}
