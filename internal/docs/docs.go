// Package docs renders the prefix table, symbol table, and error catalog to
// Markdown and, via goldmark, to HTML — the reference material behind the
// "quantale docs" subcommand.
package docs

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/fathom-metrics/quantale/pkg/quantale/prefix"
	"github.com/fathom-metrics/quantale/pkg/quantale/qerrors"
	"github.com/fathom-metrics/quantale/pkg/quantale/symbol"
)

// Markdown renders the full reference document.
func Markdown() string {
	var b strings.Builder
	b.WriteString("# Quantale reference\n\n")
	writePrefixTable(&b, "Metric prefixes", prefix.MetricTable)
	writePrefixTable(&b, "Binary prefixes", prefix.BinaryTable)
	writeSymbolTable(&b)
	writeErrorCatalog(&b)
	return b.String()
}

func writePrefixTable(b *strings.Builder, title string, table []prefix.Entry) {
	fmt.Fprintf(b, "## %s\n\n", title)
	b.WriteString("| Label | Factor |\n|---|---|\n")
	for _, e := range table {
		label := e.Label
		if label == "" {
			label = "(none)"
		}
		fmt.Fprintf(b, "| %s | %g |\n", label, e.Factor)
	}
	b.WriteString("\n")
}

func writeSymbolTable(b *strings.Builder) {
	b.WriteString("## Base symbols\n\n")
	b.WriteString("| Canonical | Aliases |\n|---|---|\n")
	for _, g := range symbol.Groups {
		canonical := g[len(g)-1]
		fmt.Fprintf(b, "| %s | %s |\n", canonical, strings.Join(g[:len(g)-1], ", "))
	}
	b.WriteString("\n")
}

func writeErrorCatalog(b *strings.Builder) {
	b.WriteString("## Error kinds\n\n")
	kinds := []qerrors.Kind{
		qerrors.InvalidExpression, qerrors.UnknownPrefix, qerrors.DifferentSymbols,
		qerrors.NonScalarDimension, qerrors.AmbiguousInfinite, qerrors.NotANumber,
		qerrors.DuplicateInterval, qerrors.NotInOrder, qerrors.IncompatibleUnit, qerrors.NotWithin,
	}
	for _, k := range kinds {
		fmt.Fprintf(b, "- `%s`\n", string(k))
	}
	b.WriteString("\n")
}

var renderer = goldmark.New(goldmark.WithExtensions(extension.GFM))

// HTML renders the same reference document as HTML, via goldmark, with
// GitHub-flavoured tables enabled (the catalog above depends on them).
func HTML() (string, error) {
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(Markdown()), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
