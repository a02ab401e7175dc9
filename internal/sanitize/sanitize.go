// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package sanitize filters author-supplied rich text down to the markup that
// may appear in a published legal update.
package sanitize

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Policies are built once; bluemonday policies are safe for concurrent use
// after construction.
var (
	policy = newPolicy()
	strict = bluemonday.StrictPolicy()
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()

	// Editors style blocks with classes (alignment, callouts); markdown
	// footnotes and definition lists carry their own.
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^[a-zA-Z0-9 _-]+$`)).
		OnElements("p", "div", "span", "blockquote", "figure", "figcaption", "table", "img", "ul", "ol", "li", "h2", "h3", "h4",
			"a", "sup", "hr", "dl", "dt", "dd", "pre", "code")

	// Links may open in a new tab; bluemonday adds rel="noopener".
	p.AllowAttrs("target").Matching(regexp.MustCompile(`^_blank$`)).OnElements("a")
	p.AddTargetBlankToFullyQualifiedLinks(false)
	p.RequireNoFollowOnLinks(false)
	return p
}

// Content returns html with every disallowed element and attribute removed.
func Content(html string) string {
	return policy.Sanitize(html)
}

// Text strips all markup from s and folds line breaks, tabs and repeated
// spaces into single spaces. Used for single-line fields such as headings,
// category names and route parameters. The result is unescaped plain text;
// escaping is left to the templates.
func Text(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(strict.Sanitize(s))), " ")
}
