// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// ContentFormat identifies how an update's content is authored.
type ContentFormat string

const (
	ContentFormatHTML     ContentFormat = "html"
	ContentFormatMarkdown ContentFormat = "markdown"
)

// ParseContentFormat maps a form value to a ContentFormat, defaulting to HTML.
func ParseContentFormat(s string) ContentFormat {
	if ContentFormat(s) == ContentFormatMarkdown {
		return ContentFormatMarkdown
	}
	return ContentFormatHTML
}

// Update is a legal update article. Category holds the slug of the category
// it belongs to.
//
// Slug is the heading slug captured at write time. The public permalink is
// normally recomputed from Heading on every request, so renaming a heading
// changes the URL; Slug is only consulted in stored-slug mode.
type Update struct {
	ID            int64         `json:"id"`
	Heading       string        `json:"heading"`
	Content       string        `json:"content"`
	ContentFormat ContentFormat `json:"content_format"`
	Category      string        `json:"category"`
	Slug          string        `json:"slug"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// IsMarkdown returns true if the content must be converted before display.
func (u *Update) IsMarkdown() bool {
	return u.ContentFormat == ContentFormatMarkdown
}
