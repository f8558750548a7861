// Copyright 2026 The Nappo Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestExecuteDispatch(t *testing.T) {
	t.Parallel()

	var ran []string
	root := &Command{
		Name: "nappo",
		Subcommands: []*Command{
			{
				Name: "bootstrap",
				Run: func(args []string) error {
					ran = append(ran, "bootstrap")
					return nil
				},
			},
			{
				Name: "search",
				Run: func(args []string) error {
					ran = append(ran, "search:"+strings.Join(args, ","))
					return nil
				},
			},
		},
	}

	if err := root.Execute([]string{"bootstrap"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if err := root.Execute([]string{"search", "Some.Package", "6.0.0"}); err != nil {
		t.Fatalf("dispatch with args: %v", err)
	}

	if len(ran) != 2 || ran[0] != "bootstrap" || ran[1] != "search:Some.Package,6.0.0" {
		t.Errorf("ran = %v", ran)
	}
}

func TestExecuteUnknownCommandSuggests(t *testing.T) {
	t.Parallel()

	root := &Command{
		Name: "nappo",
		Subcommands: []*Command{
			{Name: "bootstrap", Run: func([]string) error { return nil }},
		},
	}

	err := root.Execute([]string{"bootsrap"})
	if err == nil {
		t.Fatal("unknown command succeeded")
	}
	if !strings.Contains(err.Error(), `did you mean "bootstrap"`) {
		t.Errorf("error %q has no suggestion", err)
	}
}

func TestExecuteFlagParsing(t *testing.T) {
	t.Parallel()

	var arch string
	command := &Command{
		Name: "bootstrap",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("bootstrap", pflag.ContinueOnError)
			flagSet.StringVar(&arch, "arch", "", "target architecture")
			return flagSet
		},
		Run: func(args []string) error { return nil },
	}

	if err := command.Execute([]string{"--arch", "s390x"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if arch != "s390x" {
		t.Errorf("arch = %q, want s390x", arch)
	}
}

func TestExecuteHelpAfterFlags(t *testing.T) {
	t.Parallel()

	// --help anywhere on the line prints help and exits cleanly, even
	// after other flags.
	ran := false
	command := &Command{
		Name: "bootstrap",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("bootstrap", pflag.ContinueOnError)
			flagSet.String("arch", "", "target architecture")
			return flagSet
		},
		Run: func(args []string) error {
			ran = true
			return nil
		},
	}

	if err := command.Execute([]string{"--arch", "s390x", "--help"}); err != nil {
		t.Fatalf("Execute with trailing --help: %v", err)
	}
	if ran {
		t.Error("Run executed despite --help")
	}
}

func TestExecuteUnknownFlagSuggests(t *testing.T) {
	t.Parallel()

	command := &Command{
		Name: "bootstrap",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("bootstrap", pflag.ContinueOnError)
			flagSet.String("arch", "", "target architecture")
			return flagSet
		},
		Run: func(args []string) error { return nil },
	}

	err := command.Execute([]string{"--archh", "s390x"})
	if err == nil {
		t.Fatal("unknown flag succeeded")
	}
	if !strings.Contains(err.Error(), "--arch") {
		t.Errorf("error %q has no flag suggestion", err)
	}
}

func TestExitError(t *testing.T) {
	t.Parallel()

	err := error(&ExitError{Code: 3})

	var coder interface{ ExitCode() int }
	if !errors.As(err, &coder) {
		t.Fatal("ExitError does not expose ExitCode")
	}
	if coder.ExitCode() != 3 {
		t.Errorf("ExitCode() = %d, want 3", coder.ExitCode())
	}
}

func TestLevenshtein(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"bootstrap", "bootstrap", 0},
		{"bootsrap", "bootstrap", 1},
		{"serach", "search", 2},
		{"kitten", "sitting", 3},
	}

	for _, test := range tests {
		if got := levenshtein(test.a, test.b); got != test.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
		}
	}
}
