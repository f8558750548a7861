// Copyright 2026 The Nappo Authors
// SPDX-License-Identifier: Apache-2.0

// Command nappo downloads, verifies, extracts, and repackages the
// build artifacts needed to bootstrap a managed runtime on
// non-mainstream CPU architectures, and provides NuGet v3 feed search
// and download helpers for finding the packages those builds depend
// on.
package main

import (
	"fmt"
	"os"

	"github.com/nappo-build/nappo/cmd/nappo/commands"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own output return an ExitError
		// with the desired exit code. Don't print a redundant
		// "error:" line for those.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return commands.Root().Execute(os.Args[1:])
}
