package interval

import (
	"math"
	"regexp"
	"strconv"

	"github.com/fathom-metrics/quantale/pkg/quantale/qerrors"
	"github.com/fathom-metrics/quantale/pkg/quantale/qnum"
	"github.com/fathom-metrics/quantale/pkg/quantale/unit"
)

var quantityPattern = regexp.MustCompile("(" + qnum.Decimal + ")" + qnum.WS + "([^" + unit.CharsForbidden + "]*)")

// QuantityInterval pairs an Interval with the unit of measurement its
// endpoints are expressed in.
type QuantityInterval struct {
	Interval
	Unit unit.DimensionalUnit
}

// NewQuantityInterval parses a bracketed interval expression and attaches
// the given unit of measurement; an empty unitExpr means the dimensionless
// unit 1.
func NewQuantityInterval(expression, unitExpr string) (QuantityInterval, error) {
	iv, err := Parse(expression)
	if err != nil {
		return QuantityInterval{}, err
	}
	u, err := unit.Parse(unitExpr)
	if err != nil {
		return QuantityInterval{}, err
	}
	return QuantityInterval{Interval: iv, Unit: u}, nil
}

// String renders the interval followed by its unit of measurement.
func (qi QuantityInterval) String() string {
	return qi.Interval.String() + qi.Unit.String()
}

// splitQuantity separates a quantity string such as "0.25 Tbps" into its
// decimal value and unit label.
func splitQuantity(rep string) (value float64, label string, err error) {
	m := quantityPattern.FindStringSubmatch(rep)
	if m == nil {
		return 0, "", qerrors.Newf(qerrors.NotANumber, "not a quantity: %q", rep)
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, "", qerrors.Newf(qerrors.NotANumber, "the value %q is not a number", m[1])
	}
	return v, m[2], nil
}

// convert parses rep and returns its value expressed in qi's unit of
// measurement, failing IncompatibleUnit if rep's unit does not share qi's
// dimension.
func (qi QuantityInterval) convert(rep string) (float64, error) {
	value, label, err := splitQuantity(rep)
	if err != nil {
		return 0, err
	}
	given, err := unit.Parse(label)
	if err != nil {
		return 0, err
	}
	ratio, err := given.To(qi.Unit)
	if err != nil {
		return 0, qerrors.Newf(qerrors.IncompatibleUnit, "the unit of measurement must be compatible to %s: %v", qi.Unit.String(), err)
	}
	return value * ratio, nil
}

// Contains reports whether the quantity denoted by rep (e.g. "2.5 GiB")
// falls within qi, once converted to qi's unit of measurement.
func (qi QuantityInterval) Contains(rep string) (bool, error) {
	value, err := qi.convert(rep)
	if err != nil {
		return false, err
	}
	return qi.Interval.Contains(value), nil
}

// Normalise converts rep into qi's unit of measurement and renders it as a
// bare number: an integer if the converted value is whole and fits an
// int64, a decimal otherwise.
func (qi QuantityInterval) Normalise(rep string) (string, error) {
	value, err := qi.convert(rep)
	if err != nil {
		return "", err
	}
	if value == math.Trunc(value) && value >= math.MinInt64 && value < math.MaxInt64 {
		return strconv.FormatInt(int64(value), 10), nil
	}
	return strconv.FormatFloat(value, 'g', -1, 64), nil
}
