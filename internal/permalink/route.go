// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package permalink maps public URLs of the form
// /legal-updates/{category}/{slug}/ to stored legal updates and renders the
// matched article as a standalone page.
package permalink

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Prefix is the first path segment of every public legal updates URL.
const Prefix = "legal-updates"

// ErrInvalidRoute is returned by Route.Validate when a segment is empty.
var ErrInvalidRoute = errors.New("invalid legal update route")

var routePattern = regexp.MustCompile(`^` + Prefix + `/([^/]+)/([^/]+)/?$`)

// Route identifies a legal update by its category slug and heading slug.
type Route struct {
	Category string
	Slug     string
}

// Validate returns ErrInvalidRoute if either segment is empty.
func (r Route) Validate() error {
	if r.Category == "" {
		return fmt.Errorf("%w: empty category", ErrInvalidRoute)
	}
	if r.Slug == "" {
		return fmt.Errorf("%w: empty slug", ErrInvalidRoute)
	}
	return nil
}

// ParsePath extracts a Route from a request URI. The query string and, when
// present, the site base path are removed before matching; a URI without the
// base path is matched as is. Segments are percent-decoded
// and trimmed of surrounding whitespace. The second return value is false
// when the URI is not a legal update permalink.
func ParsePath(requestURI, basePath string) (Route, bool) {
	p, _, _ := strings.Cut(requestURI, "?")
	p, _, _ = strings.Cut(p, "#")

	if basePath != "" {
		if rest, ok := strings.CutPrefix(p, basePath); ok && (rest == "" || rest[0] == '/') {
			p = rest
		}
	}

	m := routePattern.FindStringSubmatch(strings.Trim(p, "/"))
	if m == nil {
		return Route{}, false
	}

	category, err := url.PathUnescape(m[1])
	if err != nil {
		return Route{}, false
	}
	s, err := url.PathUnescape(m[2])
	if err != nil {
		return Route{}, false
	}

	r := Route{Category: strings.TrimSpace(category), Slug: strings.TrimSpace(s)}
	if r.Validate() != nil {
		return Route{}, false
	}
	return r, true
}

// LinkSlug builds the permalink for a category and an already computed slug.
func LinkSlug(siteURL, category, s string) string {
	return strings.TrimRight(siteURL, "/") + "/" + Prefix + "/" + category + "/" + s + "/"
}

// IndexURL returns the URL of the tabbed legal updates page.
func IndexURL(siteURL string) string {
	return strings.TrimRight(siteURL, "/") + "/" + Prefix + "/"
}
