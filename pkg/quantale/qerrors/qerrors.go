// Package qerrors defines the single error family used across the quantale
// packages. Every parse or validation failure in pkg/quantale is reported as
// a *QuantaleError carrying one of the Kind values below; no other error
// type escapes the core packages.
package qerrors

import (
	"errors"
	"fmt"
)

// Kind categorizes a failure so callers can branch on it without parsing
// error strings.
type Kind string

const (
	InvalidExpression  Kind = "invalid_expression"
	UnknownPrefix      Kind = "unknown_prefix"
	DifferentSymbols   Kind = "different_symbols"
	NonScalarDimension Kind = "non_scalar_dimension"
	AmbiguousInfinite  Kind = "ambiguous_infinite"
	NotANumber         Kind = "not_a_number"
	DuplicateInterval  Kind = "duplicate_interval"
	NotInOrder         Kind = "not_in_order"
	IncompatibleUnit   Kind = "incompatible_unit"
	NotWithin          Kind = "not_within"
)

// QuantaleError is the sole error type produced by pkg/quantale.
type QuantaleError struct {
	Kind    Kind
	Message string
	Data    map[string]any
}

func (e *QuantaleError) Error() string {
	return e.Message
}

// New creates a QuantaleError with a literal message.
func New(kind Kind, message string) *QuantaleError {
	return &QuantaleError{Kind: kind, Message: message}
}

// Newf creates a QuantaleError with a formatted message.
func Newf(kind Kind, format string, args ...any) *QuantaleError {
	return &QuantaleError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithData returns a copy of the error carrying structured context, the way
// a caller might want the offending token or residual factors available to
// a JSON-rendered error response.
func (e *QuantaleError) WithData(data map[string]any) *QuantaleError {
	cp := *e
	cp.Data = data
	return &cp
}

// KindOf reports the Kind of err if it is (or wraps) a *QuantaleError.
func KindOf(err error) (Kind, bool) {
	var qe *QuantaleError
	if errors.As(err, &qe) {
		return qe.Kind, true
	}
	return "", false
}

// Is reports whether err is a *QuantaleError of the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
