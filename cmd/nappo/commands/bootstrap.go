// Copyright 2026 The Nappo Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/nappo-build/nappo/cmd/nappo/cli"
	"github.com/nappo-build/nappo/lib/bootstrap"
	"github.com/nappo-build/nappo/lib/config"
	"github.com/nappo-build/nappo/lib/feed"
)

func bootstrapCommand() *cli.Command {
	var params struct {
		arch        string
		version     string
		outputDir   string
		workDir     string
		compression string
		feedsPath   string
		configPath  string
		keepWorkDir bool
		verbose     bool
	}
	var flagSet *pflag.FlagSet

	command := &cli.Command{
		Name:    "bootstrap",
		Summary: "Fetch, extract, and repack bootstrap artifacts",
		Description: `Download the bootstrap artifacts for a target architecture and
runtime version, extract them, and repack them into a single
deterministic tarball next to a JSON manifest sidecar.

The artifact list and URL templates come from the embedded default
manifest; pass --feeds to use a different manifest file. Any fetch or
extraction failure aborts the whole run and leaves nothing at the
output path.`,
		Examples: []cli.Example{
			{
				Description: "Build the s390x bootstrap tarball for 6.0.100",
				Command:     "nappo bootstrap --arch s390x --version 6.0.100",
			},
			{
				Description: "Use a custom manifest and zstd output",
				Command:     "nappo bootstrap --arch riscv64 --version 8.0.100 --feeds ./feeds.jsonc --compression zstd",
			},
		},
	}

	command.Flags = func() *pflag.FlagSet {
		flagSet = pflag.NewFlagSet("bootstrap", pflag.ContinueOnError)
		flagSet.StringVar(&params.arch, "arch", "", "target CPU architecture")
		flagSet.StringVar(&params.version, "version", "", "target runtime version")
		flagSet.StringVar(&params.outputDir, "output", "", "output directory (default current directory)")
		flagSet.StringVar(&params.workDir, "work-dir", "", "parent directory for the scoped working directory")
		flagSet.StringVar(&params.compression, "compression", "", "output compression: none, gzip, zstd (default gzip)")
		flagSet.StringVar(&params.feedsPath, "feeds", "", "artifact manifest file (JSONC) replacing the embedded default")
		flagSet.StringVar(&params.configPath, "config", "", "run configuration file (or NAPPO_CONFIG)")
		flagSet.BoolVar(&params.keepWorkDir, "keep-workdir", false, "keep the working directory after the run")
		flagSet.BoolVar(&params.verbose, "verbose", false, "enable debug logging")
		return flagSet
	}

	command.Run = func(args []string) error {
		if len(args) > 0 {
			return fmt.Errorf("bootstrap takes no positional arguments (got %q)", args[0])
		}

		// File-sourced values fill in only the flags the user didn't
		// set on the command line.
		if path := config.Locate(params.configPath); path != "" {
			runConfig, err := config.Load(path)
			if err != nil {
				return err
			}
			applyDefault(flagSet, "arch", &params.arch, runConfig.Architecture)
			applyDefault(flagSet, "version", &params.version, runConfig.Version)
			applyDefault(flagSet, "output", &params.outputDir, runConfig.OutputDir)
			applyDefault(flagSet, "work-dir", &params.workDir, runConfig.WorkDir)
			applyDefault(flagSet, "compression", &params.compression, runConfig.Compression)
			applyDefault(flagSet, "feeds", &params.feedsPath, runConfig.FeedManifest)
		}

		if params.arch == "" {
			return fmt.Errorf("--arch is required")
		}
		if params.version == "" {
			return fmt.Errorf("--version is required")
		}

		manifest, err := loadManifest(params.feedsPath)
		if err != nil {
			return err
		}

		resolved, err := bootstrap.ResolveConfig(bootstrap.Options{
			Architecture: params.arch,
			Version:      params.version,
			OutputDir:    params.outputDir,
			WorkDir:      params.workDir,
			Compression:  params.compression,
			KeepWorkDir:  params.keepWorkDir,
		}, manifest)
		if err != nil {
			return err
		}

		logger := cli.NewCommandLogger(params.verbose).With(
			"command", "bootstrap",
			"arch", params.arch,
			"version", params.version,
		)

		pipeline := bootstrap.New(resolved, nil, logger)
		tarball, err := pipeline.Run(context.Background())
		if err != nil {
			return err
		}

		fmt.Println(tarball.Path)
		return nil
	}

	return command
}

// applyDefault copies a config file value into a params field when the
// corresponding flag was not set on the command line.
func applyDefault(flagSet *pflag.FlagSet, name string, target *string, fileValue string) {
	if fileValue != "" && !flagSet.Changed(name) {
		*target = fileValue
	}
}

// loadManifest returns the manifest at path, or the embedded default
// when path is empty.
func loadManifest(path string) (*feed.Manifest, error) {
	if path == "" {
		return feed.Default(), nil
	}
	return feed.ReadFile(path)
}
