// Package interval implements bracketed numeric intervals (§5) and the
// interval-list validator built on top of them (§6): parsing, canonical
// rendering, containment, and the dual-channel endpoint-ordering check that
// a validator's interval list must satisfy.
package interval

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/fathom-metrics/quantale/pkg/quantale/qerrors"
	"github.com/fathom-metrics/quantale/pkg/quantale/qnum"
)

// BracketLeft matches any of the three characters that may open an
// interval: '[' (closed), or ']' / '(' (open — the ISO 80000-2
// outward-pointing form and the parenthesis form are both accepted).
const BracketLeft = `[\[\]\(]`

// BracketRight matches any of the three characters that may close an
// interval: ']' (closed), or '[' / ')' (open).
const BracketRight = `[\[\]\)]`

var captureLeft = "(-?" + qnum.Infinity + "|" + qnum.Decimal + ")"
var captureRight = `(\+?` + qnum.Infinity + "|" + qnum.Decimal + ")"

var intervalPattern = regexp.MustCompile("^" + BracketLeft + qnum.WS + captureLeft + qnum.WS + "," + qnum.WS + captureRight + qnum.WS + BracketRight + "$")
var infinityPattern = regexp.MustCompile("^[+-]?" + qnum.Infinity + "$")

// Interval is a mathematical interval over decimal endpoints. Each endpoint
// is independently bounded or unbounded (±∞), and independently open or
// closed.
type Interval struct {
	Left         string
	LeftBounded  bool
	LeftOpen     bool
	Right        string
	RightBounded bool
	RightOpen    bool
}

func endpointBounded(capture string) (value string, bounded bool) {
	if infinityPattern.MatchString(capture) {
		return "", false
	}
	return capture, true
}

// Parse parses a bracketed interval expression such as "[0, 10000000]" or
// "]15, 120[". Mixing the two bracket notations, e.g. "(0, 10]", is
// accepted though best avoided. An infinite endpoint paired with a closed
// bracket on the same side fails with AmbiguousInfinite, since "closed at
// infinity" has no meaning.
func Parse(expression string) (Interval, error) {
	m := intervalPattern.FindStringSubmatch(expression)
	if m == nil {
		return Interval{}, qerrors.Newf(qerrors.InvalidExpression, "not a valid interval: %q", expression)
	}
	left, leftBounded := endpointBounded(m[1])
	right, rightBounded := endpointBounded(m[2])

	iv := Interval{Left: left, LeftBounded: leftBounded, Right: right, RightBounded: rightBounded}

	switch expression[0] {
	case '[':
		if !leftBounded {
			return Interval{}, qerrors.Newf(qerrors.AmbiguousInfinite, "ambiguous left endpoint is infinite and closed: %q", expression)
		}
		iv.LeftOpen = false
	case ']', '(':
		iv.LeftOpen = true
	default:
		return Interval{}, qerrors.Newf(qerrors.InvalidExpression, "unsupported left bracket in %q", expression)
	}

	switch expression[len(expression)-1] {
	case ']':
		if !rightBounded {
			return Interval{}, qerrors.Newf(qerrors.AmbiguousInfinite, "ambiguous right endpoint is infinite and closed: %q", expression)
		}
		iv.RightOpen = false
	case '[', ')':
		iv.RightOpen = true
	default:
		return Interval{}, qerrors.Newf(qerrors.InvalidExpression, "unsupported right bracket in %q", expression)
	}

	return iv, nil
}

// Bounded reports whether both endpoints are bounded.
func (iv Interval) Bounded() bool {
	return iv.LeftBounded && iv.RightBounded
}

// HalfBounded reports whether exactly one endpoint is bounded.
func (iv Interval) HalfBounded() bool {
	return iv.LeftBounded != iv.RightBounded
}

// Contains reports whether value falls within iv.
func (iv Interval) Contains(value float64) bool {
	if iv.LeftBounded {
		left, err := strconv.ParseFloat(iv.Left, 64)
		if err != nil {
			return false
		}
		if iv.LeftOpen {
			if value <= left {
				return false
			}
		} else if value < left {
			return false
		}
	}
	if iv.RightBounded {
		right, err := strconv.ParseFloat(iv.Right, 64)
		if err != nil {
			return false
		}
		if iv.RightOpen {
			if value >= right {
				return false
			}
		} else if value > right {
			return false
		}
	}
	return true
}

// String renders the canonical bracketed form, using ∞ for unbounded
// endpoints.
func (iv Interval) String() string {
	var b strings.Builder
	if iv.LeftOpen {
		b.WriteByte('(')
	} else {
		b.WriteByte('[')
	}
	if iv.LeftBounded {
		b.WriteString(iv.Left)
	} else {
		b.WriteString("-∞")
	}
	b.WriteString(", ")
	if iv.RightBounded {
		b.WriteString(iv.Right)
	} else {
		b.WriteString("+∞")
	}
	if iv.RightOpen {
		b.WriteByte(')')
	} else {
		b.WriteByte(']')
	}
	return b.String()
}
