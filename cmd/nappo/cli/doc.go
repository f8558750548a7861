// Copyright 2026 The Nappo Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command dispatch framework for the nappo
// binary: a tree of named commands with pflag flag sets, synthesized
// help output, typo suggestions for unknown commands and flags, and
// an ExitError type for commands that manage their own output but
// need a non-zero exit status.
package cli
