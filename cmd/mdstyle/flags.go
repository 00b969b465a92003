package main

import (
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// cliFlags holds all command-line flags.
type cliFlags struct {
	config        string
	quiet         bool
	verbose       bool
	version       bool
	help          bool
	workers       int
	timeout       string
	maxWidth      float64
	format        string
	uniformInline bool
	fallbackText  string
	userAgent     string

	usage string // help text, set when help is requested
}

// parseFlags parses args (without the program name) and returns the
// positional markdown paths.
func parseFlags(args []string) (*cliFlags, []string, error) {
	fs := flag.NewFlagSet("mdstyle", flag.ContinueOnError)
	f := &cliFlags{}

	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs")
	fs.BoolVar(&f.version, "version", false, "print version and exit")
	fs.BoolVarP(&f.help, "help", "h", false, "show this help")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel files (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "image fetch timeout (e.g., 10s, 1m)")
	fs.Float64Var(&f.maxWidth, "max-width", 0, "maximum image width in points (0 = config)")
	fs.StringVarP(&f.format, "format", "f", "", "output format: text, yaml")
	fs.BoolVar(&f.uniformInline, "uniform-inline", false, "render inline markup on every body line")
	fs.StringVar(&f.fallbackText, "fallback-text", "", "text for images that cannot be loaded")
	fs.StringVar(&f.userAgent, "user-agent", "", "User-Agent header for image requests")

	fs.SetOutput(io.Discard)

	if err := fs.Parse(args); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if f.quiet && f.verbose {
		return nil, nil, fmt.Errorf("%w: --quiet and --verbose are mutually exclusive", ErrUsage)
	}
	if f.workers < 0 {
		return nil, nil, fmt.Errorf("%w: --workers must not be negative, got %d", ErrUsage, f.workers)
	}
	if f.maxWidth < 0 {
		return nil, nil, fmt.Errorf("%w: --max-width must not be negative, got %v", ErrUsage, f.maxWidth)
	}
	if f.help {
		var b strings.Builder
		printUsage(&b, fs)
		f.usage = b.String()
	}
	return f, fs.Args(), nil
}

// printUsage writes the help text.
func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "Usage: mdstyle [flags] [file.md ...]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Renders markdown files to styled text. Reads stdin when no file is given.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprint(w, fs.FlagUsages())
}
