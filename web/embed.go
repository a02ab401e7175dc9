// Package web provides embedded static assets: the tab script and styles of
// the public legal updates pages and the admin panel stylesheet. They are
// served at /static/ (and under the site base path when one is set).
package web

import "embed"

// StaticFS embeds the web/static/ directory tree. Release builds also place
// the vendored HTMX file under static/vendor/ before compiling.
//
//go:embed all:static
var StaticFS embed.FS
