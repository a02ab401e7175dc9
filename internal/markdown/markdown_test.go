package markdown

import (
	"strings"
	"testing"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"h1 becomes h2", "# New Rules", `<h2 id="new-rules">New Rules</h2>`},
		{"h2 becomes h3", "## Scope", `<h3 id="scope">Scope</h3>`},
		{"h6 stays h6", "###### Fine print", "<h6"},
		{"emphasis", "This is **binding**.", "<strong>binding</strong>"},
		{"table", "| a | b |\n|---|---|\n| 1 | 2 |", "<table>"},
		{"footnote", "See the Act.[^1]\n\n[^1]: Employment Rights Act 1996, s. 80A.", `class="footnotes"`},
		{"definition list", "Employer\n: The person who engages the worker.", "<dl>"},
		{"smart quotes", `The "relevant period"`, "&ldquo;relevant period&rdquo;"},
		{"raw html passes through", "<div class=\"note\">x</div>", "<div class=\"note\">x</div>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToHTML(tt.input)
			if err != nil {
				t.Fatalf("ToHTML: %v", err)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("ToHTML(%q) = %q, want it to contain %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestToHTMLNoH1(t *testing.T) {
	got, err := ToHTML("# One\n\n## Two\n\n### Three")
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	if strings.Contains(got, "<h1") {
		t.Errorf("body must not contain an h1: %q", got)
	}
}
