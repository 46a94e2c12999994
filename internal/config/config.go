// Package config loads ruleset bundles: named interval-validator
// definitions grouped into a single YAML document, the configuration
// surface a service embedding pkg/quantale needs ("what validators exist,
// and what do they validate").
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/fathom-metrics/quantale/pkg/quantale/interval"
)

// Ruleset is one named validator definition within a Bundle.
type Ruleset struct {
	Spec        string `yaml:"spec"`        // validator source, e.g. "MiB: (0, 2560]"
	Description string `yaml:"description"` // human-readable purpose
	Owner       string `yaml:"owner"`        // team or person responsible
}

// Bundle is a named collection of Rulesets loaded from one YAML document.
type Bundle struct {
	BaseDir  string             `yaml:"-"` // directory the bundle was loaded from, for resolving relative paths
	Rulesets map[string]Ruleset `yaml:"rulesets"`
}

// Defaults returns an empty Bundle, the zero-config starting point.
func Defaults() *Bundle {
	return &Bundle{Rulesets: map[string]Ruleset{}}
}

// LoadBytes parses a Bundle from raw YAML.
func LoadBytes(data []byte) (*Bundle, error) {
	b := Defaults()
	if err := yaml.Unmarshal(data, b); err != nil {
		return nil, err
	}
	if b.Rulesets == nil {
		b.Rulesets = map[string]Ruleset{}
	}
	return b, nil
}

// Load reads and parses a Bundle from a YAML file at path.
func Load(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	b, err := LoadBytes(data)
	if err != nil {
		return nil, err
	}
	b.BaseDir = filepath.Dir(path)
	return b, nil
}

// ResolvePath joins a relative path against the Bundle's BaseDir, the
// directory Load read the bundle from. Absolute paths and an unset BaseDir
// (a bundle built with Defaults or LoadBytes) are returned unchanged, so a
// relative sqlite DSN written next to a bundle file (e.g. "rulesets.db" in
// the same directory as the bundle) resolves the way a relative path in
// the bundle's own YAML would.
func (b *Bundle) ResolvePath(path string) string {
	if b.BaseDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(b.BaseDir, path)
}

// Validators compiles every Ruleset in the bundle into a
// interval.Validator, keyed by its bundle name. The first compile failure
// aborts and is returned, naming the offending field.
func (b *Bundle) Validators() (map[string]*interval.Validator, error) {
	out := make(map[string]*interval.Validator, len(b.Rulesets))
	for name, rs := range b.Rulesets {
		v, err := interval.ParseValidator(rs.Spec)
		if err != nil {
			return nil, fieldError{field: name, err: err}
		}
		out[name] = v
	}
	return out, nil
}

type fieldError struct {
	field string
	err   error
}

func (e fieldError) Error() string {
	return "ruleset " + e.field + ": " + e.err.Error()
}

func (e fieldError) Unwrap() error {
	return e.err
}
