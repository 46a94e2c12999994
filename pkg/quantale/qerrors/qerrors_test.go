package qerrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOfDirect(t *testing.T) {
	err := New(InvalidExpression, "boom")
	kind, ok := KindOf(err)
	if !ok || kind != InvalidExpression {
		t.Errorf("KindOf(direct) = (%v, %v), want (%v, true)", kind, ok, InvalidExpression)
	}
}

func TestKindOfWrapped(t *testing.T) {
	inner := New(NotANumber, "not a number")
	wrapped := fmt.Errorf("while parsing: %w", inner)
	kind, ok := KindOf(wrapped)
	if !ok || kind != NotANumber {
		t.Errorf("KindOf(wrapped) = (%v, %v), want (%v, true)", kind, ok, NotANumber)
	}
}

func TestKindOfNonQuantaleError(t *testing.T) {
	if _, ok := KindOf(errors.New("plain")); ok {
		t.Error("KindOf(plain error) should report false")
	}
}

func TestIs(t *testing.T) {
	err := New(DuplicateInterval, "dup")
	if !Is(err, DuplicateInterval) {
		t.Error("Is should match the error's own kind")
	}
	if Is(err, NotInOrder) {
		t.Error("Is should not match a different kind")
	}
}

func TestWithDataPreservesKindAndMessage(t *testing.T) {
	err := New(NotWithin, "out of range").WithData(map[string]any{"value": 5})
	if err.Kind != NotWithin || err.Message != "out of range" {
		t.Errorf("WithData changed Kind/Message: %+v", err)
	}
	if err.Data["value"] != 5 {
		t.Errorf("WithData did not attach data: %+v", err.Data)
	}
}

func TestNewfFormats(t *testing.T) {
	err := Newf(UnknownPrefix, "unknown prefix: %q", "xyz")
	want := `unknown prefix: "xyz"`
	if err.Error() != want {
		t.Errorf("Newf message = %q, want %q", err.Error(), want)
	}
}
