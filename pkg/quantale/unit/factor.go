// Package unit implements the symbolic unit algebra of §§4.3-4.4: Factor
// (one multiplicative term) and DimensionalUnit (a product of factors),
// their parsing, simplification, canonical rendering, and scalar
// conversion between commensurable units.
package unit

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/fathom-metrics/quantale/pkg/quantale/prefix"
	"github.com/fathom-metrics/quantale/pkg/quantale/qerrors"
	"github.com/fathom-metrics/quantale/pkg/quantale/qnum"
	"github.com/fathom-metrics/quantale/pkg/quantale/symbol"
)

// Factor is one multiplicative term: value * (prefix symbol)^exponent.
type Factor struct {
	Value    float64
	Prefix   string
	Symbol   string
	Exponent int
}

const charMulti = "·"

// labelChars excludes brackets, whitespace, the multiplication/division
// operators, superscript digits, and the punctuation that marks the end of
// a bare label (§4.3's term grammar).
const labelChars = "[^" +
	`\[\]\(\)\{\}` + `\s` +
	" ⁄/%‰·×⋅" +
	"⁰¹²³⁴⁵⁶⁷⁸⁹⁻" +
	`,.\-+*:;` +
	"]+"

var capturePrefix = "(yocto|zepto|atto|femto|pico|" +
	"nano|micro|milli|centi|deci|deca|hecto|kilo|mega|giga|tera|peta|" +
	"exa|zetta|yotta|kibi|mebi|gibi|tebi|pebi|exbi|zebi|yobi|" +
	"y|z|a|f|p|n|µ|m|c|da|d|h|" +
	"Ki|k|Mi|M|Gi|G|Ti|T|Pi|P|Ei|E|Zi|Z|Yi|Y)?"

var knownLabelPattern = regexp.MustCompile("^" + capturePrefix + "(" + strings.Join(symbol.KnownLabels(), "|") + ")$")
var prefixedUnknownPattern = regexp.MustCompile("^" + capturePrefix + "(" + labelChars + ")$")

const captureExpPre = "(square |cubic )?"
const captureExpPost = "(⁻?[" +
	"⁰¹²³⁴⁵⁶⁷⁸⁹" +
	"]+| squared)?"

var capturePrefixedLabel = "(" + labelChars + "(?: " + labelChars + ")*" + ")"

var factorPattern = regexp.MustCompile("^" + captureExpPre + capturePrefixedLabel + captureExpPost + "$")

// ParseFactor parses a single multiplicative term and applies expSign (1 or
// -1) to whatever exponent the term denotes, the way DimensionalUnit
// applies -1 to every denominator term.
func ParseFactor(expression string, expSign int) (Factor, error) {
	m := factorPattern.FindStringSubmatch(expression)
	if m == nil {
		return Factor{}, qerrors.Newf(qerrors.InvalidExpression, "not a valid factor: %q", expression)
	}
	expPre, prefixedLabel, expPost := m[1], m[2], m[3]

	var pfx, sym string
	if km := knownLabelPattern.FindStringSubmatch(prefixedLabel); km != nil {
		pfx = km[1]
		sym = symbol.Canonical(km[2])
	} else if um := prefixedUnknownPattern.FindStringSubmatch(prefixedLabel); um != nil {
		pfx = um[1]
		sym = um[2]
	} else {
		pfx = ""
		sym = prefixedLabel
	}

	if _, err := prefix.Parse(pfx); err != nil {
		return Factor{}, err
	}

	var exp int
	if expPre != "" {
		if expPost != "" {
			return Factor{}, qerrors.Newf(qerrors.InvalidExpression, "duplicate exponent: %q", expression)
		}
		e, _ := qnum.ParseExpPre(expPre)
		exp = e
	} else {
		exp = qnum.ParseExponent(expPost)
	}

	return Factor{Value: 1, Prefix: pfx, Symbol: sym, Exponent: exp * expSign}, nil
}

// Raise returns a copy of f with its exponent multiplied by k (typically
// ±1, to flip a factor between numerator and denominator).
func Raise(f Factor, k int) Factor {
	f.Exponent *= k
	return f
}

// effectivePrefixFactor trusts that f.Prefix was already validated by
// ParseFactor or by a table lookup; an invalid prefix here would be an
// internal-invariant violation, not a user input error.
func effectivePrefixFactor(label string) float64 {
	v, err := prefix.Parse(label)
	if err != nil {
		return 1
	}
	return v
}

// EffectiveFactor returns value * prefixFactor^exponent (Java's getFactor).
// Per §4.1's IEEE-754 caveat, this is exact only up to peta/pebi scale;
// beyond exa/exbi magnitudes the double channel may lose precision.
func (f Factor) EffectiveFactor() float64 {
	e := f.Exponent
	var nominal float64
	if e < 0 {
		nominal = 1 / effectivePrefixFactor(f.Prefix)
		e = -e
	} else {
		nominal = effectivePrefixFactor(f.Prefix)
	}
	factor := 1.0
	for ; e > 0; e-- {
		factor *= nominal
	}
	return f.Value * factor
}

// SymbolEqual reports whether f and other share a symbol.
func (f Factor) SymbolEqual(other Factor) bool {
	return f.Symbol == other.Symbol
}

// DimensionEqual reports whether f and other share both symbol and
// exponent.
func (f Factor) DimensionEqual(other Factor) bool {
	return f.SymbolEqual(other) && f.Exponent == other.Exponent
}

// Combine merges two like factors (§4.3): same symbol, exponents added,
// effective factors multiplied, prefix reset to "" for the caller to
// reassign via Simplify/Normalise. Fails DifferentSymbols otherwise.
func Combine(a, b Factor) (Factor, error) {
	if !a.SymbolEqual(b) {
		return Factor{}, qerrors.Newf(qerrors.DifferentSymbols, "different symbols: %s%s%s", a.Symbol, charMulti, b.Symbol)
	}
	return Factor{
		Value:    a.EffectiveFactor() * b.EffectiveFactor(),
		Prefix:   "",
		Symbol:   a.Symbol,
		Exponent: a.Exponent + b.Exponent,
	}, nil
}

// Normalise drops the prefix into the scalar channel, returning
// (1, "", symbol, exponent) with the original effective factor preserved
// by the caller (see NormaliseList, which accumulates it separately).
func Normalise(f Factor) Factor {
	return Factor{Value: 1, Prefix: "", Symbol: f.Symbol, Exponent: f.Exponent}
}

// Simplify picks the best-fit prefix for f's effective factor and exponent,
// returning (1, prefix, symbol, exponent). The caller accumulates the
// residual scalar ratio (see SimplifyList).
func Simplify(f Factor, table []prefix.Entry) Factor {
	best := prefix.ForValue(f.EffectiveFactor(), f.Exponent, table)
	return Factor{Value: 1, Prefix: best.Label, Symbol: f.Symbol, Exponent: f.Exponent}
}

// combineLike groups factors by symbol, combining exponents of like
// symbols in first-occurrence order (mirrors Java's LinkedHashMap-based
// factorLabel).
func combineLike(factors []Factor) []Factor {
	seen := map[string]int{} // symbol -> index into out
	out := make([]Factor, 0, len(factors))
	for _, f := range factors {
		if idx, ok := seen[f.Symbol]; ok {
			combined, err := Combine(out[idx], f)
			if err != nil {
				// cannot happen: Combine only fails on symbol mismatch,
				// and f.Symbol == out[idx].Symbol by construction.
				continue
			}
			out[idx] = combined
		} else {
			seen[f.Symbol] = len(out)
			out = append(out, f)
		}
	}
	return out
}

// SimplifyList combines like terms, drops any that cancel to exponent 0,
// replaces survivors with their simplified (canonical-prefix) form, and
// partitions positive-exponent factors before negative-exponent factors,
// each group preserving first-occurrence order (§4.4 step 4). It returns
// the accumulated scalar ratio between the pre- and post-simplification
// effective values.
func SimplifyList(factors []Factor, table []prefix.Entry) ([]Factor, float64) {
	combined := combineLike(factors)
	var numerator, denominator []Factor
	value := 1.0
	for _, f := range combined {
		simplified := Simplify(f, table)
		value *= f.EffectiveFactor() / simplified.EffectiveFactor()
		switch {
		case f.Exponent > 0:
			numerator = append(numerator, simplified)
		case f.Exponent < 0:
			denominator = append(denominator, simplified)
		}
	}
	return append(numerator, denominator...), value
}

// NormaliseList behaves like SimplifyList but absorbs every prefix into
// the scalar channel instead of choosing a canonical one, and cancels
// zero-exponent terms. Used by DimensionalUnit.To (§4.4's conversion
// step) and by unit equality.
func NormaliseList(factors []Factor) ([]Factor, float64) {
	combined := combineLike(factors)
	var numerator, denominator []Factor
	value := 1.0
	for _, f := range combined {
		value *= f.EffectiveFactor()
		switch {
		case f.Exponent > 0:
			numerator = append(numerator, Normalise(f))
		case f.Exponent < 0:
			denominator = append(denominator, Normalise(f))
		}
	}
	return append(numerator, denominator...), value
}

// FormatOne renders a single factor with the given exponent sign applied
// (1 for numerator rendering, -1 for denominator rendering, per §4.3).
func FormatOne(f Factor, expSign int) string {
	x := f.Exponent * expSign
	var b strings.Builder
	if f.Value != 1 {
		b.WriteString(strconv.FormatFloat(f.Value, 'g', -1, 64))
		b.WriteByte(' ')
	}
	b.WriteString(f.Prefix)
	b.WriteString(f.Symbol)
	if x != 1 {
		b.WriteString(qnum.FormatExponent(x))
	}
	return b.String()
}

// FormatProduct renders a product of factors with positive exponents
// first, `/` before the negative-exponent group, and negative-exponent
// factors joined by the multiplication dot with their exponent sign
// flipped (so m·s⁻¹ renders as m/s). Encountering a positive exponent
// after a negative one is an invariant violation (§4.3).
func FormatProduct(factors []Factor) (string, error) {
	var b strings.Builder
	multiply := false
	i := 0
	for i < len(factors) && factors[i].Exponent >= 0 {
		if multiply {
			b.WriteString(charMulti)
		}
		multiply = true
		b.WriteString(FormatOne(factors[i], 1))
		i++
	}
	if i < len(factors) {
		b.WriteString("/")
		first := true
		for ; i < len(factors); i++ {
			if factors[i].Exponent >= 0 {
				return "", qerrors.New(qerrors.InvalidExpression, "positive exponent after negative")
			}
			if !first {
				b.WriteString(charMulti)
			}
			first = false
			b.WriteString(FormatOne(factors[i], -1))
		}
	}
	return b.String(), nil
}

// IsPartitioned reports whether factors already has every positive-exponent
// factor before every negative-exponent factor, the invariant §3 requires
// of DimensionalUnit.Factors. Exposed for tests.
func IsPartitioned(factors []Factor) bool {
	seenNegative := false
	for _, f := range factors {
		if f.Exponent < 0 {
			seenNegative = true
		} else if seenNegative {
			return false
		}
	}
	return true
}
