package unit

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/fathom-metrics/quantale/pkg/quantale/prefix"
	"github.com/fathom-metrics/quantale/pkg/quantale/qerrors"
)

// CharsMultiplication lists the accepted multiplication operators between
// terms: the centre dot (preferred in output), non-breaking space, the
// multiplication sign, the dot operator, and the asterisk.
const CharsMultiplication = " ·×⋅*"

// CharsDivision lists the accepted division operators: the slash, the
// division sign, the fraction slash, and the division slash.
const CharsDivision = "/÷⁄∕"

// CharsForbidden lists characters that may never appear in a unit label,
// per §6.
const CharsForbidden = "\t\n\v\f\r !\"&`+,\\-.:;<=>?@\\[\\\\\\]^'{|}~"

var multiplicativeTerms = regexp.MustCompile("[" + CharsMultiplication + "]")

var noDiv = "[^" + CharsDivision + CharsForbidden + "]"
var captureNumerator = "(" + noDiv + "*)"
var captureDenominator = `(?:\((` + noDiv + `+)\)|([^` + CharsDivision + CharsForbidden + `()]+))`
var fractionPattern = regexp.MustCompile("^" + captureNumerator + "(?:[" + CharsDivision + "]" + captureDenominator + ")?$")

// DimensionalUnit is an immutable product of factors representing a unit
// of measurement (§3/§4.4).
type DimensionalUnit struct {
	Value   float64
	Factors []Factor
}

func parseTerms(expression string, factors *[]Factor) error {
	m := fractionPattern.FindStringSubmatch(expression)
	if m == nil {
		return qerrors.Newf(qerrors.InvalidExpression, "invalid expression: %q", expression)
	}
	numerator, denominator := m[1], m[2]
	if denominator == "" {
		denominator = m[3]
	}

	if numerator != "" {
		for _, term := range multiplicativeTerms.Split(numerator, -1) {
			f, err := ParseFactor(term, 1)
			if err != nil {
				return err
			}
			*factors = append(*factors, f)
		}
	}
	if denominator != "" {
		for _, term := range multiplicativeTerms.Split(denominator, -1) {
			f, err := ParseFactor(term, -1)
			if err != nil {
				return err
			}
			*factors = append(*factors, f)
		}
	}
	return nil
}

func usesBinaryPrefix(factors []Factor) bool {
	for _, f := range factors {
		if f.Prefix == "" {
			continue
		}
		v, _ := prefix.Parse(f.Prefix)
		for _, p := range prefix.BinaryTable {
			if p.Label == "" {
				continue
			}
			if strings.HasPrefix(f.Prefix, p.Label) || v == p.Factor {
				return true
			}
		}
	}
	return false
}

// Parse builds a DimensionalUnit from a textual unit expression (§4.4),
// guessing metric or binary prefixes from whatever prefixes appear in the
// expression. An empty expression is the dimensionless unit 1.
func Parse(expression string) (DimensionalUnit, error) {
	if expression == "" {
		return DimensionalUnit{Value: 1}, nil
	}
	var factors []Factor
	if err := parseTerms(expression, &factors); err != nil {
		return DimensionalUnit{}, err
	}
	family := prefix.Metric
	if usesBinaryPrefix(factors) {
		family = prefix.Binary
	}
	out, value := SimplifyList(factors, prefix.TableFor(family))
	return DimensionalUnit{Value: value, Factors: out}, nil
}

// ParseWith builds a DimensionalUnit using the given prefix family
// explicitly, instead of guessing it from the expression.
func ParseWith(expression string, family prefix.Family) (DimensionalUnit, error) {
	if expression == "" {
		return DimensionalUnit{Value: 1}, nil
	}
	var factors []Factor
	if err := parseTerms(expression, &factors); err != nil {
		return DimensionalUnit{}, err
	}
	out, value := SimplifyList(factors, prefix.TableFor(family))
	return DimensionalUnit{Value: value, Factors: out}, nil
}

// To returns the scalar conversion rate that, multiplied into a value of
// unit u, yields the equivalent value in unit other. Fails
// NonScalarDimension if the two units' dimensions do not cancel (§4.4).
func (u DimensionalUnit) To(other DimensionalUnit) (float64, error) {
	all := make([]Factor, 0, len(u.Factors)+len(other.Factors))
	all = append(all, u.Factors...)
	for _, f := range other.Factors {
		all = append(all, Raise(f, -1))
	}
	residual, ratio := NormaliseList(all)
	if len(residual) == 0 {
		return ratio * (u.Value / other.Value), nil
	}
	residualStr, _ := FormatProduct(residual)
	return 0, qerrors.Newf(qerrors.NonScalarDimension,
		"conversion from %s to %s has nonscalar dimension: %s", u.String(), other.String(), residualStr)
}

// Equal reports whether u and other are commensurable with a conversion
// ratio of exactly 1.0 (§4.4).
func (u DimensionalUnit) Equal(other DimensionalUnit) bool {
	ratio, err := u.To(other)
	return err == nil && ratio == 1.0
}

// String renders the canonical textual form of u (§4.3/§4.4).
func (u DimensionalUnit) String() string {
	body, err := FormatProduct(u.Factors)
	if err != nil {
		body = ""
	}
	if u.Value == 1 {
		return body
	}
	return strconv.FormatFloat(u.Value, 'g', -1, 64) + " " + body
}
