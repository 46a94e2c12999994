// Package symbol holds the static table of base-unit alias groups: sets of
// human-readable spellings ("metres", "meters", "metre", "meter") that all
// denote the same canonical symbol ("m", the last entry in the group).
package symbol

// Groups lists the built-in alias groups. The canonical symbol for a group
// is always its last element.
var Groups = [][]string{
	{"metres", "meters", "metre", "meter", "m"},
	{"grams", "gram", "g"},
	{"seconds", "second", "s"},
	{"amperes", "ampere", "A"},
	{"kelvins", "kelvin", "K", "K"},
	{"candelas", "candela", "cd"},
	{"moles", "mole", "mol"},
	{"bytes", "byte", "B"},
	{"bits", "bit"},
}

// groupOf returns the alias group containing label, or nil if label is not
// a known alias of any built-in unit.
func groupOf(label string) []string {
	for _, g := range Groups {
		for _, alias := range g {
			if alias == label {
				return g
			}
		}
	}
	return nil
}

// Canonical returns the canonical symbol for label: the last alias of the
// group it belongs to, or label itself if it is not a known alias. Unknown
// symbols are permitted by design (§4.2) and simply propagate unchanged.
func Canonical(label string) string {
	if g := groupOf(label); g != nil {
		return g[len(g)-1]
	}
	return label
}

// Aliases returns every known spelling for label, including label itself,
// or the singleton {label} if label is unknown.
func Aliases(label string) []string {
	if g := groupOf(label); g != nil {
		out := make([]string, len(g))
		copy(out, g)
		return out
	}
	return []string{label}
}

// KnownLabels returns every alias of every built-in group, used by the
// factor parser to try the known-label match before falling back to the
// generic prefix+unknown-symbol path (§4.3's disambiguation rule).
func KnownLabels() []string {
	var out []string
	for _, g := range Groups {
		out = append(out, g...)
	}
	return out
}
