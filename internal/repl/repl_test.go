package repl

import (
	"bytes"
	"strings"
	"testing"
)

func TestCmdParseRendersCanonicalForm(t *testing.T) {
	var buf bytes.Buffer
	if err := cmdParse(&buf, "kilometres/h"); err != nil {
		t.Fatalf("cmdParse: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "km/h" {
		t.Errorf("cmdParse output = %q, want %q", got, "km/h")
	}
}

func TestCmdConvertComputesRatio(t *testing.T) {
	var buf bytes.Buffer
	if err := cmdConvert(&buf, []string{"1", "km/h", "to", "m/h"}); err != nil {
		t.Fatalf("cmdConvert: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "1000 m/h" {
		t.Errorf("cmdConvert output = %q, want %q", got, "1000 m/h")
	}
}

func TestCmdConvertRequiresTo(t *testing.T) {
	var buf bytes.Buffer
	if err := cmdConvert(&buf, []string{"1", "km/h", "m/h"}); err == nil {
		t.Error("expected an error when the 'to' keyword is missing")
	}
}

func TestCmdValidateReportsValid(t *testing.T) {
	var buf bytes.Buffer
	input := "validate kg: [0, 1] 0kg"
	if err := cmdValidate(&buf, input, strings.Fields(input)); err != nil {
		t.Fatalf("cmdValidate: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "valid: 0 kg" {
		t.Errorf("cmdValidate output = %q, want %q", got, "valid: 0 kg")
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	var buf bytes.Buffer
	if err := dispatch(&buf, "frobnicate 1 2 3"); err == nil {
		t.Error("expected an error for an unknown command")
	}
}

func TestFilterCompletionsMatchesPrefix(t *testing.T) {
	matches := filterCompletions("par")
	found := false
	for _, m := range matches {
		if m == "parse" {
			found = true
		}
	}
	if !found {
		t.Errorf("filterCompletions(%q) = %v, want it to include %q", "par", matches, "parse")
	}
}

func TestFilterCompletionsEmptyAfterTrailingSpace(t *testing.T) {
	if got := filterCompletions("parse "); got != nil {
		t.Errorf("filterCompletions with trailing space = %v, want nil", got)
	}
}
