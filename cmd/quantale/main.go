package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/google/uuid"

	"github.com/fathom-metrics/quantale/internal/config"
	"github.com/fathom-metrics/quantale/internal/docs"
	"github.com/fathom-metrics/quantale/internal/logging"
	"github.com/fathom-metrics/quantale/internal/registry"
	"github.com/fathom-metrics/quantale/internal/repl"
	"github.com/fathom-metrics/quantale/internal/server"
	"github.com/fathom-metrics/quantale/internal/textnorm"
	"github.com/fathom-metrics/quantale/pkg/quantale/interval"
	"github.com/fathom-metrics/quantale/pkg/quantale/qerrors"
	"github.com/fathom-metrics/quantale/pkg/quantale/unit"
)

// Version is set at compile time via -ldflags.
var Version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd, args := os.Args[1], os.Args[2:]
	var err error
	switch cmd {
	case "parse":
		err = parseCommand(args)
	case "convert":
		err = convertCommand(args)
	case "validate":
		err = validateCommand(args)
	case "normalize":
		err = normalizeCommand(args)
	case "repl":
		repl.Start(os.Stdout, Version)
	case "serve":
		err = serveCommand(args)
	case "docs":
		err = docsCommand(args)
	case "-h", "--help", "help":
		printUsage()
	case "-V", "--version", "version":
		fmt.Println("quantale version", Version)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		reportError(err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: quantale <parse|convert|validate|normalize|repl|serve|docs> [args]")
}

// reportError wraps a *qerrors.QuantaleError with its Kind when printing,
// the way cmd code wraps a ParsleyError with its error class.
func reportError(err error) {
	if kind, ok := qerrors.KindOf(err); ok {
		fmt.Fprintf(os.Stderr, "quantale: %s: %v\n", kind, err)
		return
	}
	fmt.Fprintf(os.Stderr, "quantale: %v\n", err)
}

func parseCommand(args []string) error {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: quantale parse <expr>")
	}
	u, err := unit.Parse(textnorm.Fold(fs.Arg(0)))
	if err != nil {
		return err
	}
	fmt.Println(u.String())
	return nil
}

func convertCommand(args []string) error {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 3 {
		return fmt.Errorf("usage: quantale convert <value> <from-unit> <to-unit>")
	}
	var value float64
	if _, err := fmt.Sscanf(fs.Arg(0), "%g", &value); err != nil {
		return fmt.Errorf("%q is not a number", fs.Arg(0))
	}
	from, err := unit.Parse(textnorm.Fold(fs.Arg(1)))
	if err != nil {
		return err
	}
	to, err := unit.Parse(textnorm.Fold(fs.Arg(2)))
	if err != nil {
		return err
	}
	ratio, err := from.To(to)
	if err != nil {
		return err
	}
	fmt.Printf("%g %s\n", value*ratio, to.String())
	return nil
}

func validateCommand(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: quantale validate <spec> <value>")
	}
	v, err := interval.ParseValidator(fs.Arg(0))
	if err != nil {
		return err
	}
	if v.IsValid(textnorm.Fold(fs.Arg(1))) {
		fmt.Println("valid")
		return nil
	}
	fmt.Println("invalid")
	os.Exit(1)
	return nil
}

func normalizeCommand(args []string) error {
	fs := flag.NewFlagSet("normalize", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: quantale normalize <spec> <value>")
	}
	v, err := interval.ParseValidator(fs.Arg(0))
	if err != nil {
		return err
	}
	normalized, err := v.Normalize(textnorm.Fold(fs.Arg(1)))
	if err != nil {
		return err
	}
	fmt.Println(normalized)
	return nil
}

func serveCommand(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", ":8080", "listen address")
	bundlePath := fs.String("bundle", "", "path to a ruleset bundle YAML file")
	registryDSN := fs.String("registry", "", "registry DSN, e.g. sqlite://quantale.db (optional)")
	registryID := fs.String("registry-id", "", "UUID of a ruleset bundle to load from the registry at startup")
	fs.Parse(args)

	log := logging.StdoutLogger()
	bundle := config.Defaults()
	if *bundlePath != "" {
		b, err := config.Load(*bundlePath)
		if err != nil {
			return err
		}
		bundle = b
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var store *registry.Store
	if *registryDSN != "" {
		dsn := *registryDSN
		if path, ok := registry.SQLiteFilePath(dsn); ok {
			dsn = "sqlite://" + bundle.ResolvePath(path)
		}
		s, err := registry.Open(ctx, dsn, log)
		if err != nil {
			return err
		}
		store = s
	}

	srv, err := server.New(bundle, log, store)
	if err != nil {
		return err
	}

	if *registryID != "" {
		id, err := uuid.Parse(*registryID)
		if err != nil {
			return fmt.Errorf("--registry-id: %w", err)
		}
		if err := srv.LoadFromRegistry(ctx, id); err != nil {
			return err
		}
	}

	if *bundlePath != "" {
		if err := srv.Watch(ctx, *bundlePath); err != nil {
			return err
		}
	}

	log.LogLine("server: listening on", *addr)
	return http.ListenAndServe(*addr, srv.Handler())
}

func docsCommand(args []string) error {
	fs := flag.NewFlagSet("docs", flag.ExitOnError)
	htmlFlag := fs.Bool("html", false, "render as HTML instead of Markdown")
	fs.Parse(args)

	if *htmlFlag {
		out, err := docs.HTML()
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}
	fmt.Println(docs.Markdown())
	return nil
}
