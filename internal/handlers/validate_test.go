package handlers

import (
	"strings"
	"testing"
)

func TestValidateUpdate(t *testing.T) {
	tests := []struct {
		name      string
		heading   string
		content   string
		wantError bool
	}{
		{"valid", "New Rules", "<p>Body</p>", false},
		{"empty heading", "", "body", true},
		{"whitespace heading", "   ", "body", true},
		{"heading at limit", strings.Repeat("a", 255), "body", false},
		{"heading too long", strings.Repeat("a", 256), "body", true},
		{"multibyte heading at limit", strings.Repeat("é", 255), "body", false},
		{"empty content", "title", "", true},
		{"whitespace content", "title", " \n\t", true},
		{"content too long", "title", strings.Repeat("a", 200_001), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateUpdate(tt.heading, tt.content)
			if tt.wantError && result == "" {
				t.Error("expected an error, got none")
			}
			if !tt.wantError && result != "" {
				t.Errorf("unexpected error: %s", result)
			}
		})
	}
}

func TestValidateCategory(t *testing.T) {
	tests := []struct {
		name string
		cat  string
		slug string
		want string
	}{
		{"valid", "Employment", "employment", ""},
		{"empty name", "", "employment", msgNameRequired},
		{"whitespace name", "  ", "x", msgNameRequired},
		{"empty slug", "!!!", "", "Category slug must contain at least one letter or digit."},
		{"name too long", strings.Repeat("n", 256), "n", "Category name is too long (max 255 characters)."},
		{"slug too long", "Name", strings.Repeat("s", 101), "Category slug is too long (max 100 characters)."},
		{"api slug reserved", "API", "api", msgSlugReserved},
		{"api prefix allowed", "API Regulation", "api-regulation", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := validateCategory(tt.cat, tt.slug); got != tt.want {
				t.Errorf("validateCategory(%q, %q) = %q, want %q", tt.cat, tt.slug, got, tt.want)
			}
		})
	}
}
