package docs

import (
	"strings"
	"testing"
)

func TestMarkdownContainsExpectedSections(t *testing.T) {
	md := Markdown()
	for _, want := range []string{"# Quantale reference", "## Metric prefixes", "## Binary prefixes", "## Base symbols", "## Error kinds"} {
		if !strings.Contains(md, want) {
			t.Errorf("Markdown() missing section %q", want)
		}
	}
}

func TestMarkdownListsEveryErrorKind(t *testing.T) {
	md := Markdown()
	for _, kind := range []string{
		"invalid_expression", "unknown_prefix", "different_symbols", "non_scalar_dimension", "ambiguous_infinite",
		"not_a_number", "duplicate_interval", "not_in_order", "incompatible_unit", "not_within",
	} {
		if !strings.Contains(md, "`"+kind+"`") {
			t.Errorf("Markdown() missing error kind %q", kind)
		}
	}
}

func TestHTMLRendersTables(t *testing.T) {
	html, err := HTML()
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if !strings.Contains(html, "<table>") {
		t.Error("expected GFM table rendering in HTML output")
	}
	if !strings.Contains(html, "<h1>") {
		t.Error("expected a top-level heading in HTML output")
	}
}
