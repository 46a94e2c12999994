// Package repl is an interactive shell over the unit algebra and interval
// validator: parse a unit expression, convert between two units, or test a
// value against a validator spec, with line history and tab completion.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/fathom-metrics/quantale/internal/textnorm"
	"github.com/fathom-metrics/quantale/pkg/quantale/interval"
	"github.com/fathom-metrics/quantale/pkg/quantale/prefix"
	"github.com/fathom-metrics/quantale/pkg/quantale/symbol"
	"github.com/fathom-metrics/quantale/pkg/quantale/unit"
)

const prompt = "qu> "
const logo = `
█▀█ █░█ ▄▀█ █▄░█ ▀█▀ ▄▀█ █░░ █▀▀
▀▀█ █▄█ █▀█ █░▀█ ░█░ █▀█ █▄▄ ██▄ `

var completionWords = buildCompletionWords()

func buildCompletionWords() []string {
	var words []string
	words = append(words, "parse", "convert", "validate", "help", "exit", "quit")
	words = append(words, symbol.KnownLabels()...)
	for _, e := range prefix.MetricTable {
		if e.Label != "" {
			words = append(words, e.Label)
		}
	}
	for _, e := range prefix.BinaryTable {
		if e.Label != "" {
			words = append(words, e.Label)
		}
	}
	return words
}

// Start runs the REPL, reading commands from a liner-managed terminal line
// editor and writing results to out, until the user types "exit"/"quit" or
// sends EOF.
func Start(out io.Writer, version string) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(text string) []string {
		return filterCompletions(text)
	})

	historyFile := filepath.Join(os.TempDir(), ".quantale_history")
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Fprint(out, logo)
	fmt.Fprintln(out, "v", version)
	fmt.Fprintln(out, "Commands: parse <expr> | convert <value> <from> to <to> | validate <spec> <value>")
	fmt.Fprintln(out, "Type 'exit' or Ctrl+D to quit, Tab for completion, ↑↓ for history.")
	fmt.Fprintln(out)

	for {
		input, err := line.Prompt(prompt)
		if err != nil {
			if err == liner.ErrPromptAborted {
				fmt.Fprintln(out, "^C")
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out, "\nGoodbye!")
				return
			}
			fmt.Fprintln(out, "error reading input:", err)
			continue
		}

		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}
		if trimmed == "exit" || trimmed == "quit" {
			fmt.Fprintln(out, "Goodbye!")
			return
		}
		line.AppendHistory(trimmed)

		if trimmed == "help" || trimmed == ":help" {
			fmt.Fprintln(out, "parse <expr>                       render a unit expression in canonical form")
			fmt.Fprintln(out, "convert <value> <from> to <to>      convert a quantity between units")
			fmt.Fprintln(out, "validate <spec> <value>             test a value against a validator spec")
			continue
		}

		if err := dispatch(out, trimmed); err != nil {
			fmt.Fprintln(out, "error:", err)
		}
	}
}

func dispatch(out io.Writer, input string) error {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return nil
	}
	switch fields[0] {
	case "parse":
		return cmdParse(out, strings.TrimSpace(strings.TrimPrefix(input, fields[0])))
	case "convert":
		return cmdConvert(out, fields[1:])
	case "validate":
		return cmdValidate(out, input, fields)
	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}
}

func cmdParse(out io.Writer, expr string) error {
	u, err := unit.Parse(textnorm.Fold(expr))
	if err != nil {
		return err
	}
	fmt.Fprintln(out, u.String())
	return nil
}

func cmdConvert(out io.Writer, args []string) error {
	// convert <value> <from> to <to>
	if len(args) < 4 || args[2] != "to" {
		return fmt.Errorf("usage: convert <value> <from-unit> to <to-unit>")
	}
	value, fromExpr, toExpr := args[0], args[1], strings.Join(args[3:], " ")
	from, err := unit.Parse(textnorm.Fold(fromExpr))
	if err != nil {
		return err
	}
	to, err := unit.Parse(textnorm.Fold(toExpr))
	if err != nil {
		return err
	}
	ratio, err := from.To(to)
	if err != nil {
		return err
	}
	var v float64
	if _, err := fmt.Sscanf(value, "%g", &v); err != nil {
		return fmt.Errorf("%q is not a number", value)
	}
	fmt.Fprintf(out, "%g %s\n", v*ratio, to.String())
	return nil
}

func cmdValidate(out io.Writer, input string, fields []string) error {
	// validate "<spec>" <value> — the spec may itself contain spaces, so
	// take everything up to the last field as the spec.
	if len(fields) < 3 {
		return fmt.Errorf("usage: validate <spec> <value>")
	}
	value := fields[len(fields)-1]
	rest := strings.TrimSpace(strings.TrimPrefix(input, fields[0]))
	spec := strings.TrimSpace(strings.TrimSuffix(rest, value))

	v, err := interval.ParseValidator(spec)
	if err != nil {
		return err
	}
	if v.IsValid(value) {
		normalized, err := v.Normalize(value)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "valid:", normalized)
	} else {
		fmt.Fprintln(out, "invalid")
	}
	return nil
}

func filterCompletions(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if len(text) > 0 && (text[len(text)-1] == ' ' || text[len(text)-1] == '\t') {
		return nil
	}
	last := words[len(words)-1]
	var matches []string
	for _, w := range completionWords {
		if strings.HasPrefix(w, last) {
			matches = append(matches, w)
		}
	}
	return matches
}
