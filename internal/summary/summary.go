// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package summary turns rich article content into short plain-text excerpts
// for the category listing.
package summary

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

const (
	// DefaultLength is the excerpt length used when callers pass zero.
	DefaultLength = 150

	// Ellipsis is appended to truncated excerpts.
	Ellipsis = "…"
)

var whitespace = regexp.MustCompile(`\s+`)

// skipContent lists elements whose text is never part of the readable content.
var skipContent = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// PlainText strips all markup from content, decodes entities, collapses
// whitespace runs into single spaces and trims the result.
func PlainText(content string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(content))
	skipping := ""

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF is the normal end; any other error still yields what was read.
			return collapse(b.String())
		case html.StartTagToken:
			name, _ := z.TagName()
			if skipping == "" && skipContent[string(name)] {
				skipping = string(name)
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if string(name) == skipping {
				skipping = ""
			}
		case html.TextToken:
			if skipping == "" {
				b.Write(z.Text())
			}
		}
	}
}

func collapse(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// Generate returns at most length characters of content's plain text. Longer
// text is cut back to the last word boundary and suffixed with Ellipsis.
func Generate(content string, length int) string {
	if length <= 0 {
		length = DefaultLength
	}
	text := PlainText(content)
	runes := []rune(text)
	if len(runes) <= length {
		return text
	}

	cut := string(runes[:length])
	if i := strings.LastIndex(cut, " "); i >= 0 {
		cut = cut[:i]
	}
	return cut + Ellipsis
}

// HasMore reports whether content's plain text is longer than length, i.e.
// whether the listing should offer a "Read More" link.
func HasMore(content string, length int) bool {
	if length <= 0 {
		length = DefaultLength
	}
	return len([]rune(PlainText(content))) > length
}
