// Package textnorm folds Unicode fullwidth forms of digits and the
// multiplication/division operators to their canonical halfwidth forms
// before the unit parser sees them, so an expression pasted from a
// fullwidth IME (e.g. "ｋｍ／ｈ") parses identically to "km/h".
package textnorm

import (
	"golang.org/x/text/transform"
	"golang.org/x/text/width"
)

// Fold narrows every fullwidth or halfwidth-variant rune in s to its
// canonical decomposition, leaving already-canonical runes untouched. Falls
// back to the original string if the transform itself errors, which the
// width folder never does for well-formed UTF-8 input.
func Fold(s string) string {
	folded, _, err := transform.String(width.Fold, s)
	if err != nil {
		return s
	}
	return folded
}
