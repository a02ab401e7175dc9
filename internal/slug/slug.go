// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings.
// Slugs are the public identity of a legal update: they are derived from the
// heading and form the last segment of its permalink.
package slug

import (
	"regexp"
	"strings"
)

// MaxLength caps the length of a generated slug in bytes.
const MaxLength = 100

// nonAlphanumeric matches every maximal run of characters outside [a-z0-9].
var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Generate creates a URL-friendly slug from the given string.
// Example: "Employment Law: New Rules (2024)!" → "employment-law-new-rules-2024"
//
// The result only contains [a-z0-9-], never starts or ends with a hyphen and
// is at most MaxLength bytes long. A heading without any ASCII letter or digit
// produces an empty slug.
func Generate(s string) string {
	result := strings.Map(asciiLower, s)
	result = nonAlphanumeric.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	if len(result) > MaxLength {
		result = strings.TrimRight(result[:MaxLength], "-")
	}
	return result
}

// asciiLower folds only A-Z. Unicode case folding is avoided because some
// non-ASCII letters (e.g. the Kelvin sign) lower-case into ASCII.
func asciiLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

// Valid reports whether s is already a well-formed slug, i.e. Generate(s) == s
// and s is not empty.
func Valid(s string) bool {
	return s != "" && Generate(s) == s
}
