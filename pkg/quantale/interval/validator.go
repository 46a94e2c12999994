package interval

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/fathom-metrics/quantale/pkg/quantale/qerrors"
	"github.com/fathom-metrics/quantale/pkg/quantale/qnum"
	"github.com/fathom-metrics/quantale/pkg/quantale/unit"
)

var unitPrefixPattern = "(?:([^" + unit.CharsForbidden + "]+):)?"
var leftNC = `(?:-?` + qnum.Infinity + "|" + qnum.Decimal + ")"
var rightNC = `(?:\+?` + qnum.Infinity + "|" + qnum.Decimal + ")"
var intervalGroup = "(" + BracketLeft + qnum.WS + leftNC + qnum.WS + "," + qnum.WS + rightNC + qnum.WS + BracketRight + ")"

// listBody matches an optional "unit:" prefix followed by one or more
// bracketed intervals, each possibly separated by whitespace. The trailing
// quantifier is reluctant, the way the grammar it is grounded on notes it
// must be: it lets repeated matching pull out one interval group at a time
// rather than swallowing the whole list into a single match.
var listBody = unitPrefixPattern + qnum.WS + "(?:" + qnum.WS + intervalGroup + ")+?"
var listAnchored = regexp.MustCompile("^" + listBody + "$")
var listFinder = regexp.MustCompile(listBody)

// endpointValue is an interval endpoint read on two channels at once: as an
// int64 when it parses as one, and always as a float64. Comparing integer
// endpoints on the int64 channel catches ordering violations that float64
// alone would mask once endpoints exceed float64's 53-bit integer precision.
type endpointValue struct {
	hasInt bool
	i      int64
	f      float64
}

func parseEndpoint(s string, bounded, left bool) (endpointValue, error) {
	if !bounded {
		if left {
			return endpointValue{hasInt: true, i: math.MinInt64, f: -math.MaxFloat64}, nil
		}
		return endpointValue{hasInt: true, i: math.MaxInt64, f: math.MaxFloat64}, nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return endpointValue{hasInt: true, i: i, f: float64(i)}, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		side := "right"
		if left {
			side = "left"
		}
		return endpointValue{}, qerrors.Newf(qerrors.NotANumber, "the %s endpoint %q is not a number", side, s)
	}
	return endpointValue{hasInt: false, f: f}, nil
}

// orderTracker carries the running maxima across a validator's interval
// list, in the order the intervals are listed, so that each endpoint can be
// checked against every endpoint that preceded it.
type orderTracker struct {
	greatestLong   int64
	greatestDouble float64
}

func newOrderTracker() *orderTracker {
	return &orderTracker{greatestLong: math.MinInt64, greatestDouble: -math.MaxFloat64}
}

// check reports whether ev is not less than the running maximum of the
// channel it parsed in (int64 for an integer endpoint, float64 otherwise),
// and if so folds it into both maxima. A non-integer endpoint enters the
// int64 channel truncated toward zero (saturating at the int64 range), so a
// later integer endpoint is compared against that truncated value.
func (t *orderTracker) check(ev endpointValue) bool {
	if !ev.hasInt {
		if ev.f < t.greatestDouble {
			return false
		}
		t.greatestDouble = ev.f
		switch {
		case ev.f > float64(math.MaxInt64):
			t.greatestLong = math.MaxInt64
		case ev.f > float64(math.MinInt64):
			t.greatestLong = int64(ev.f)
		default:
			t.greatestLong = math.MinInt64
		}
		return true
	}
	if ev.i < t.greatestLong {
		return false
	}
	t.greatestLong = ev.i
	t.greatestDouble = float64(ev.i)
	return true
}

// Validator validates that a quantity string falls within one of a list of
// intervals that all share a single unit of measurement.
type Validator struct {
	intervals []QuantityInterval
	unit      unit.DimensionalUnit
}

// ParseValidator parses a validator specification: an optional "unit:"
// prefix followed by one or more bracketed intervals, e.g. "kg: [0, 1]" or
// "mol: (-∞, -10) [-6, -5.5] ]15, 120[". Fails DuplicateInterval if the same
// interval appears twice, and NotInOrder if the intervals are not listed in
// ascending endpoint order — required so that the first interval found to
// contain a value while validating is always the correct, tightest one.
func ParseValidator(spec string) (*Validator, error) {
	trimmed := strings.TrimSpace(spec)
	if !listAnchored.MatchString(trimmed) {
		return nil, qerrors.Newf(qerrors.InvalidExpression, "not a valid interval list: %q", spec)
	}

	matches := listFinder.FindAllStringSubmatch(trimmed, -1)
	seen := map[string]bool{}
	var intervals []QuantityInterval
	unitLabel := ""
	tracker := newOrderTracker()

	for _, m := range matches {
		if unitLabel == "" && m[1] != "" {
			unitLabel = strings.TrimSpace(m[1])
		}
		qi, err := NewQuantityInterval(m[2], unitLabel)
		if err != nil {
			return nil, err
		}

		key := qi.String()
		if seen[key] {
			return nil, qerrors.Newf(qerrors.DuplicateInterval, "duplicate interval %s in %q", key, spec)
		}
		seen[key] = true

		leftVal, err := parseEndpoint(qi.Left, qi.LeftBounded, true)
		if err != nil {
			return nil, err
		}
		rightVal, err := parseEndpoint(qi.Right, qi.RightBounded, false)
		if err != nil {
			return nil, err
		}
		if !tracker.check(leftVal) || !tracker.check(rightVal) {
			return nil, qerrors.Newf(qerrors.NotInOrder, "the interval %s is not in order in %q", key, spec)
		}

		intervals = append(intervals, qi)
	}

	u, err := unit.Parse(unitLabel)
	if err != nil {
		return nil, err
	}
	return &Validator{intervals: intervals, unit: u}, nil
}

// Unit returns the validator's unit of measurement.
func (v *Validator) Unit() unit.DimensionalUnit {
	return v.unit
}

// HasUnit reports whether the validator specifies a unit of measurement
// other than the dimensionless unit 1.
func (v *Validator) HasUnit() bool {
	return v.unit.String() != ""
}

// IsValid reports whether data falls within one of v's intervals.
func (v *Validator) IsValid(data string) bool {
	_, err := v.Normalize(data)
	return err == nil
}

// Normalize converts data into v's unit of measurement and renders it with
// that unit appended, e.g. normalizing "0.25 Tbps" against the validator
// "Mbps: (0, 10000000]" yields "250000 Mbps". Fails NotWithin if data does
// not fall within any of v's intervals.
func (v *Validator) Normalize(data string) (string, error) {
	trimmed := strings.TrimSpace(data)
	for _, qi := range v.intervals {
		ok, err := qi.Contains(trimmed)
		if err != nil {
			return "", err
		}
		if !ok {
			continue
		}
		rendered, err := qi.Normalise(trimmed)
		if err != nil {
			return "", err
		}
		if v.HasUnit() {
			return rendered + " " + v.unit.String(), nil
		}
		return rendered, nil
	}
	return "", qerrors.New(qerrors.NotWithin, "not within a valid interval")
}
