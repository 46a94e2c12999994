// Package qnum holds the small regex and rune-table fragments shared by the
// factor, unit, and interval parsers: the decimal grammar, the superscript
// digit alphabet, and whitespace handling. Collecting them here keeps every
// parser speaking the same grammar instead of re-deriving it.
package qnum

import "strings"

// WS matches any amount (including zero) of whitespace between tokens.
const WS = `\s*`

// DecimalFraction matches the fractional part of a decimal literal.
const DecimalFraction = `\.\d+`

// DecimalInteger matches an integer part with no superfluous leading zero.
const DecimalInteger = `(?:0|[1-9]\d*)`

// Decimal matches a signed decimal literal with an optional fraction and an
// optional exponent, e.g. "-12", "0.25", "1E-3".
const Decimal = `-?` + DecimalInteger + `(?:` + DecimalFraction + `)?` + `(?:E-?` + DecimalInteger + `)?`

// Infinity matches the Unicode INFINITY sign or the asterisk shorthand.
const Infinity = `[\x{221E}*]`

// superscriptDigits maps 0-9 to their Unicode superscript form; index 10 is
// the superscript minus sign U+207B.
var superscriptDigits = [11]rune{
	'⁰', '¹', '²', '³', '⁴',
	'⁵', '⁶', '⁷', '⁸', '⁹',
	'⁻',
}

// SuperscriptDigitValue returns the decimal digit (0-9) for a superscript
// digit rune, or -1 if r is the superscript minus sign, or -2 if r is not a
// superscript character at all.
func SuperscriptDigitValue(r rune) int {
	switch r {
	case '⁰':
		return 0
	case '¹':
		return 1
	case '²':
		return 2
	case '³':
		return 3
	case '⁴':
		return 4
	case '⁵':
		return 5
	case '⁶':
		return 6
	case '⁷':
		return 7
	case '⁸':
		return 8
	case '⁹':
		return 9
	case '⁻':
		return -1
	default:
		return -2
	}
}

// FormatExponent renders a signed integer exponent using superscript
// digits, e.g. -2 -> "⁻²".
func FormatExponent(exp int) string {
	var b strings.Builder
	for _, c := range []byte(itoa(exp)) {
		switch c {
		case '-':
			b.WriteRune(superscriptDigits[10])
		default:
			b.WriteRune(superscriptDigits[c-'0'])
		}
	}
	return b.String()
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	if neg {
		digits = append([]byte{'-'}, digits...)
	}
	return string(digits)
}

// ParseExponent parses an exponent suffix as produced by the factor grammar:
// either the literal "squared", a run of superscript digits optionally led
// by the superscript minus sign, or the empty string (meaning 1).
func ParseExponent(exp string) int {
	if exp == "" {
		return 1
	}
	if strings.Contains(exp, "squared") {
		return 2
	}
	runes := []rune(exp)
	negative := false
	value := 0
	for _, r := range runes {
		d := SuperscriptDigitValue(r)
		switch {
		case d == -1:
			negative = true
		case d >= 0:
			value = value*10 + d
		}
	}
	if negative {
		value = -value
	}
	return value
}

// ParseExpPre parses the "square "/"cubic " exponent prefix, returning the
// exponent it denotes (2 or 3) and whether it was present at all.
func ParseExpPre(pre string) (exp int, ok bool) {
	switch pre {
	case "square ":
		return 2, true
	case "cubic ":
		return 3, true
	default:
		return 0, false
	}
}
