package unit

import (
	"testing"

	"github.com/fathom-metrics/quantale/pkg/quantale/prefix"
)

func TestIsPartitioned(t *testing.T) {
	cases := []struct {
		name    string
		factors []Factor
		want    bool
	}{
		{"empty", nil, true},
		{"all positive", []Factor{{Symbol: "m", Exponent: 2}, {Symbol: "kg", Exponent: 1}}, true},
		{"all negative", []Factor{{Symbol: "s", Exponent: -1}, {Symbol: "A", Exponent: -2}}, true},
		{"positive then negative", []Factor{{Symbol: "m", Exponent: 1}, {Symbol: "s", Exponent: -1}}, true},
		{"negative then positive", []Factor{{Symbol: "s", Exponent: -1}, {Symbol: "m", Exponent: 1}}, false},
		{"positive, negative, positive", []Factor{{Symbol: "m", Exponent: 1}, {Symbol: "s", Exponent: -1}, {Symbol: "kg", Exponent: 1}}, false},
	}
	for _, c := range cases {
		if got := IsPartitioned(c.factors); got != c.want {
			t.Errorf("%s: IsPartitioned(%v) = %v, want %v", c.name, c.factors, got, c.want)
		}
	}
}

// TestSimplifyListPartitionsOutput asserts SimplifyList's documented
// postcondition (§4.4 step 4) using the invariant checker it's meant to
// back.
func TestSimplifyListPartitionsOutput(t *testing.T) {
	factors := []Factor{
		{Symbol: "s", Value: 1, Exponent: -2},
		{Symbol: "m", Value: 1, Exponent: 2},
		{Symbol: "kg", Value: 1, Exponent: 1},
		{Symbol: "A", Value: 1, Exponent: -1},
	}
	out, _ := SimplifyList(factors, prefix.MetricTable)
	if !IsPartitioned(out) {
		t.Errorf("SimplifyList(%v) = %v, not partitioned", factors, out)
	}
}
