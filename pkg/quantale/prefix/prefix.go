// Package prefix implements the metric (SI) and binary (IEC 80000-13)
// prefix tables: label -> numeric factor lookup, and best-fit prefix
// selection for a given magnitude (§4.1).
package prefix

import (
	"math"
	"sort"

	"github.com/fathom-metrics/quantale/pkg/quantale/qerrors"
)

// Family distinguishes the metric (powers of ten) prefix set from the
// binary (powers of 1024) prefix set.
type Family int

const (
	Metric Family = iota
	Binary
)

// Entry is one prefix table row: a label (possibly empty, meaning the
// identity prefix) and the numeric factor it denotes.
type Entry struct {
	Label  string
	Factor float64
}

const (
	yocto = 1e-24
	zepto = 1e-21
	atto  = 1e-18
	femto = 1e-15
	pico  = 1e-12
	nano  = 1e-9
	micro = 1e-6
	milli = 1e-3
	centi = 1e-2
	deci  = 1e-1
	deca  = 1e1
	hecto = 1e2
	kilo  = 1e3
	mega  = 1e6
	giga  = 1e9
	tera  = 1e12
	peta  = 1e15
	exa   = 1e18
	zetta = 1e21
	yotta = 1e24

	kibi = 1 << 10
	mebi = 1 << 20
	gibi = 1 << 30
	tebi = 1 << 40
	pebi = 1 << 50
	exbi = 1 << 60
)

var zebi = float64(gibi) * float64(tebi)
var yobi = float64(tebi) * float64(tebi)

// MetricTable is the SI prefix table, ascending by factor, identity included.
var MetricTable = []Entry{
	{"y", yocto}, {"z", zepto}, {"a", atto}, {"f", femto}, {"p", pico},
	{"n", nano}, {"µ", micro}, {"m", milli}, {"c", centi}, {"d", deci},
	{"", 1},
	{"da", deca}, {"h", hecto}, {"k", kilo}, {"M", mega}, {"G", giga},
	{"T", tera}, {"P", peta}, {"E", exa}, {"Z", zetta}, {"Y", yotta},
}

// BinaryTable is the IEC 80000-13 binary prefix table, ascending by factor,
// identity included.
var BinaryTable = []Entry{
	{"", 1},
	{"Ki", float64(kibi)}, {"Mi", float64(mebi)}, {"Gi", float64(gibi)},
	{"Ti", float64(tebi)}, {"Pi", float64(pebi)}, {"Ei", float64(exbi)},
	{"Zi", zebi}, {"Yi", yobi},
}

// TableFor returns the prefix table for the given family.
func TableFor(f Family) []Entry {
	if f == Binary {
		return BinaryTable
	}
	return MetricTable
}

// longLabels maps long-form prefix spellings to their short-form label, used
// only to normalise input before the table lookup in Parse.
var longLabels = map[string]string{
	"yocto": "y", "zepto": "z", "atto": "a", "femto": "f", "pico": "p",
	"nano": "n", "micro": "µ", "milli": "m", "centi": "c", "deci": "d",
	"deca": "da", "hecto": "h", "kilo": "k", "mega": "M", "giga": "G",
	"tera": "T", "peta": "P", "exa": "E", "zetta": "Z", "yotta": "Y",
	"kibi": "Ki", "mebi": "Mi", "gibi": "Gi", "tebi": "Ti", "pebi": "Pi",
	"exbi": "Ei", "zebi": "Zi", "yobi": "Yi",
}

// Parse converts a prefix label (short or long form) to its numeric factor.
// An empty or missing label returns 1. An unrecognised label fails with
// qerrors.UnknownPrefix.
func Parse(label string) (float64, error) {
	if label == "" {
		return 1, nil
	}
	if short, ok := longLabels[label]; ok {
		label = short
	}
	for _, e := range MetricTable {
		if e.Label == label {
			return e.Factor, nil
		}
	}
	for _, e := range BinaryTable {
		if e.Label == label {
			return e.Factor, nil
		}
	}
	return 0, qerrors.Newf(qerrors.UnknownPrefix, "unknown prefix: %q", label)
}

// ForValue returns the largest prefix entry p in table such that
// p.Factor <= value^(1/exponent), using binary search the way the spec
// requires (§4.1). If value^(1/exponent) is below the smallest entry, the
// smallest entry is returned; exact matches are returned directly.
func ForValue(value float64, exponent int, table []Entry) Entry {
	target := math.Pow(value, 1.0/float64(exponent))
	i := sort.Search(len(table), func(i int) bool {
		return table[i].Factor > target
	})
	if i == 0 {
		return table[0]
	}
	return table[i-1]
}
