// Package main is the entry point for NFT Studio.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/john-paul-ruf/nft-studio/internal/app"
	"github.com/john-paul-ruf/nft-studio/internal/schema"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "schema" {
		os.Exit(runSchema(os.Args[2:]))
	}
	os.Exit(run())
}

func run() int {
	opts, logFile := parseFlags()

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: open log file: %v\n", err)
			return 1
		}
		defer f.Close()
		opts.LogOutput = f
	} else {
		// The terminal belongs to the UI.
		opts.LogOutput = io.Discard
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Shutdown()

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize terminal: %v\n", err)
		return 1
	}
	defer screen.Fini()

	if err := application.Run(ctx, screen); err != nil {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() (app.Options, string) {
	var opts app.Options
	var logFile string
	var showVersion bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to the preferences file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to the preferences file (shorthand)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error); default from preferences")
	flag.StringVar(&logFile, "log-file", "", "Write logs to this file")
	flag.BoolVar(&opts.ReadOnly, "read-only", false, "Disable project edits")
	flag.BoolVar(&opts.ReadOnly, "R", false, "Disable project edits (shorthand)")
	flag.BoolVar(&opts.Watch, "watch", false, "Reload preferences when the file changes")
	flag.StringVar(&opts.ResumePath, "resume", "", "Resume rendering from a settings file")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "NFT Studio - effect composition studio\n\n")
		fmt.Fprintf(os.Stderr, "Usage: nftstudio [options] [project]\n")
		fmt.Fprintf(os.Stderr, "       nftstudio schema -kind <kind> [-out file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  nftstudio                          Start with a new project\n")
		fmt.Fprintf(os.Stderr, "  nftstudio art.yaml                 Open a project\n")
		fmt.Fprintf(os.Stderr, "  nftstudio -resume out/settings.json Resume a render\n")
		fmt.Fprintf(os.Stderr, "  nftstudio schema -kind project     Print the project JSON schema\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("NFT Studio %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	switch opts.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		os.Exit(1)
	}

	if args := flag.Args(); len(args) > 0 {
		if abs, err := filepath.Abs(args[0]); err == nil {
			opts.ProjectPath = abs
		} else {
			opts.ProjectPath = args[0]
		}
	}
	return opts, logFile
}

// runSchema prints or writes the JSON schema of a persisted document.
func runSchema(args []string) int {
	fs := flag.NewFlagSet("schema", flag.ContinueOnError)
	kind := fs.String("kind", schema.KindProject, fmt.Sprintf("Document kind %v", schema.Kinds()))
	out := fs.String("out", "", "Output file; empty prints to stdout")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	s, err := schema.ByKind(*kind)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if *out != "" {
		if err := schema.WriteFile(*out, s); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	data, err := schema.Marshal(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if _, err := os.Stdout.Write(data); err != nil {
		return 1
	}
	return 0
}
