// Copyright 2026 The Nappo Authors
// SPDX-License-Identifier: Apache-2.0

package feed

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// placeholderPattern matches ${NAME} references in URL templates. Only
// the braced form is recognized. Placeholder names must start with a
// letter or underscore and contain only letters, digits, and
// underscores.
var placeholderPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Known placeholder names for URL templates. Anything else in a
// template is a manifest authoring error.
const (
	// PlaceholderArch substitutes the architecture's URL name (the
	// architecture identifier itself unless the manifest defines an
	// alias).
	PlaceholderArch = "ARCH"

	// PlaceholderVersion substitutes the target runtime version.
	PlaceholderVersion = "VERSION"

	// PlaceholderName substitutes the artifact's own name.
	PlaceholderName = "NAME"
)

var knownPlaceholders = map[string]bool{
	PlaceholderArch:    true,
	PlaceholderVersion: true,
	PlaceholderName:    true,
}

// ValidateTemplate checks that every ${NAME} reference in template uses
// a known placeholder. Returns an error listing all unknown names.
func ValidateTemplate(template string) error {
	var unknown []string
	for _, match := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		name := match[1]
		if !knownPlaceholders[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown placeholders in template %q: %s", template, strings.Join(unknown, ", "))
	}
	return nil
}

// Expand replaces ${NAME} references in template with entries from the
// values map. Returns an error listing all referenced placeholders that
// have no value — templates fail fast on unresolvable references rather
// than producing broken URLs.
func Expand(template string, values map[string]string) (string, error) {
	var unresolved []string

	result := placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := match[2 : len(match)-1]
		if value, exists := values[name]; exists {
			return value
		}
		unresolved = append(unresolved, name)
		return match
	})

	if len(unresolved) > 0 {
		sort.Strings(unresolved)
		return "", fmt.Errorf("unresolved placeholders in template %q: %s", template, strings.Join(unresolved, ", "))
	}

	return result, nil
}
