package qnum

import "testing"

func TestFormatExponentRoundTripsParseExponent(t *testing.T) {
	for _, exp := range []int{1, 2, 3, -1, -2, 10, -12} {
		rendered := FormatExponent(exp)
		if got := ParseExponent(rendered); got != exp {
			t.Errorf("ParseExponent(FormatExponent(%d)) = %d, want %d", exp, got, exp)
		}
	}
}

func TestParseExponentEmptyMeansOne(t *testing.T) {
	if got := ParseExponent(""); got != 1 {
		t.Errorf("ParseExponent(\"\") = %d, want 1", got)
	}
}

func TestParseExponentSquared(t *testing.T) {
	if got := ParseExponent(" squared"); got != 2 {
		t.Errorf("ParseExponent(%q) = %d, want 2", " squared", got)
	}
}

func TestParseExpPre(t *testing.T) {
	cases := []struct {
		in   string
		exp  int
		want bool
	}{
		{"square ", 2, true},
		{"cubic ", 3, true},
		{"", 0, false},
		{"quartic ", 0, false},
	}
	for _, c := range cases {
		exp, ok := ParseExpPre(c.in)
		if exp != c.exp || ok != c.want {
			t.Errorf("ParseExpPre(%q) = (%d, %v), want (%d, %v)", c.in, exp, ok, c.exp, c.want)
		}
	}
}

func TestSuperscriptDigitValue(t *testing.T) {
	cases := map[rune]int{
		'⁰': 0, '⁵': 5, '⁹': 9, '⁻': -1, 'x': -2,
	}
	for r, want := range cases {
		if got := SuperscriptDigitValue(r); got != want {
			t.Errorf("SuperscriptDigitValue(%q) = %d, want %d", r, got, want)
		}
	}
}
