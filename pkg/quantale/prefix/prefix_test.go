package prefix

import (
	"testing"

	"github.com/fathom-metrics/quantale/pkg/quantale/qerrors"
)

func TestParseKnownLabels(t *testing.T) {
	cases := []struct {
		label string
		want  float64
	}{
		{"", 1},
		{"k", 1e3},
		{"kilo", 1e3},
		{"Ki", 1024},
		{"kibi", 1024},
		{"M", 1e6},
		{"µ", 1e-6},
	}
	for _, c := range cases {
		got, err := Parse(c.label)
		if err != nil {
			t.Fatalf("Parse(%q): %v", c.label, err)
		}
		if got != c.want {
			t.Errorf("Parse(%q) = %v, want %v", c.label, got, c.want)
		}
	}
}

func TestParseUnknownPrefixFails(t *testing.T) {
	if _, err := Parse("bogus"); !qerrors.Is(err, qerrors.UnknownPrefix) {
		t.Errorf("expected UnknownPrefix, got %v", err)
	}
}

func TestForValuePicksLargestNotExceeding(t *testing.T) {
	cases := []struct {
		value    float64
		exponent int
		table    []Entry
		want     string
	}{
		{1500, 1, MetricTable, "k"},
		{999, 1, MetricTable, "h"},
		{1024 * 1024, 1, BinaryTable, "Mi"},
		{500, 1, BinaryTable, ""},
	}
	for _, c := range cases {
		got := ForValue(c.value, c.exponent, c.table)
		if got.Label != c.want {
			t.Errorf("ForValue(%v, %d) = %q, want %q", c.value, c.exponent, got.Label, c.want)
		}
	}
}

func TestTableFor(t *testing.T) {
	if &TableFor(Metric)[0] != &MetricTable[0] {
		t.Error("TableFor(Metric) should return the Metric table")
	}
	if &TableFor(Binary)[0] != &BinaryTable[0] {
		t.Error("TableFor(Binary) should return the Binary table")
	}
}
