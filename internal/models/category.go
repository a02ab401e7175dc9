// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Category is a named grouping of legal updates, addressed publicly by its
// unique slug. Updates reference categories by slug, not by ID.
type Category struct {
	ID        int64     `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Virtual field populated by CategoryStore.List.
	UpdateCount int `json:"update_count"`
}

// DefaultCategories are seeded into an empty categories table on startup.
var DefaultCategories = []Category{
	{Slug: "commercial-taxation", Name: "Commercial & Taxation"},
	{Slug: "litigation-adr", Name: "Litigation & Alternative Dispute Resolution"},
	{Slug: "employment", Name: "Employment"},
	{Slug: "intellectual-property", Name: "Intellectual Property"},
	{Slug: "immigration-citizenship", Name: "Immigration and Citizenship"},
}
