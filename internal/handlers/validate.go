package handlers

import (
	"strings"
	"unicode/utf8"
)

// Validation limits for legal update and category fields.
const (
	maxHeadingLen      = 255
	maxContentLen      = 200_000
	maxCategoryNameLen = 255
	maxCategorySlugLen = 100
)

// Admin form messages.
const (
	msgInvalidCategory   = "Invalid category selected."
	msgUpdateNotFound    = "Legal update not found."
	msgCategoryNotFound  = "Category not found."
	msgNameRequired      = "Category name is required."
	msgSlugTaken         = "Category slug already exists. Please use a different slug."
	msgUpdateSlugTaken   = "A legal update with this slug already exists in the selected category."
	msgSlugReserved      = "This category slug is reserved. Please use a different slug."
	msgUpdateSlugInvalid = "Slug may only contain lowercase letters, digits and single hyphens (max 100 characters)."
)

// validateUpdate checks legal update form inputs and returns the first error
// found. Category existence is checked separately against the store.
func validateUpdate(heading, content string) string {
	heading = strings.TrimSpace(heading)
	if heading == "" {
		return "Heading is required."
	}
	if utf8.RuneCountInString(heading) > maxHeadingLen {
		return "Heading is too long (max 255 characters)."
	}
	if strings.TrimSpace(content) == "" {
		return "Content is required."
	}
	if utf8.RuneCountInString(content) > maxContentLen {
		return "Content is too long (max 200,000 characters)."
	}
	return ""
}

// reservedCategorySlugs share the /legal-updates/ prefix with other routes;
// a category named like one would let its permalinks shadow that route.
var reservedCategorySlugs = map[string]bool{"api": true}

// validateCategory checks category form inputs. slug is the normalized slug.
func validateCategory(name, slug string) string {
	if strings.TrimSpace(name) == "" {
		return msgNameRequired
	}
	if utf8.RuneCountInString(name) > maxCategoryNameLen {
		return "Category name is too long (max 255 characters)."
	}
	if slug == "" {
		return "Category slug must contain at least one letter or digit."
	}
	if len(slug) > maxCategorySlugLen {
		return "Category slug is too long (max 100 characters)."
	}
	if reservedCategorySlugs[slug] {
		return msgSlugReserved
	}
	return ""
}
