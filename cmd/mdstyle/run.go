package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	mdstyle "github.com/alnah/go-mdstyle"
	"github.com/alnah/go-mdstyle/internal/config"
)

// run executes the CLI with args (without the program name).
func run(ctx context.Context, args []string, env *Environment) error {
	flags, paths, err := parseFlags(args)
	if err != nil {
		return err
	}
	if flags.help {
		fmt.Fprint(env.Stdout, flags.usage)
		return nil
	}
	if flags.version {
		fmt.Fprintf(env.Stdout, "mdstyle %s\n", Version)
		return nil
	}

	cfg, err := resolveConfig(flags, env)
	if err != nil {
		return err
	}

	logger, err := newLogger(env.Stderr, cfg.Log.Level, flags.verbose, flags.quiet)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	conv, err := buildConverter(cfg, logger)
	if err != nil {
		return err
	}

	sources, err := collectSources(paths, env.Stdin)
	if err != nil {
		return err
	}

	maxWidth := cfg.Image.MaxWidth
	if maxWidth == 0 {
		maxWidth = config.DefaultMaxWidth
	}

	results := renderBatch(ctx, conv, sources, flags.workers, maxWidth)
	if err := printResults(env, cfg.Output.Format, results, logger); err != nil {
		return err
	}

	summary := countResults(results)
	logger.Debug("batch complete",
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed))
	if summary.Failed > 0 {
		// A single failure keeps its own exit code
		if len(results) == 1 {
			return results[0].Err
		}
		return fmt.Errorf("%w: %d of %d", ErrRenderFailed, summary.Failed, len(results))
	}
	return nil
}

// resolveConfig loads the config file if any and applies flag overrides.
func resolveConfig(flags *cliFlags, env *Environment) (*config.Config, error) {
	var cfg *config.Config
	if flags.config != "" {
		loaded, err := config.LoadConfig(flags.config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else if env.Config != nil {
		copied := *env.Config
		cfg = &copied
	} else {
		cfg = config.DefaultConfig()
	}

	if flags.maxWidth > 0 {
		cfg.Image.MaxWidth = flags.maxWidth
	}
	if flags.timeout != "" {
		cfg.Image.Timeout = flags.timeout
	}
	if flags.userAgent != "" {
		cfg.Image.UserAgent = flags.userAgent
	}
	if flags.uniformInline {
		cfg.Render.UniformInline = true
	}
	if flags.fallbackText != "" {
		cfg.Render.FallbackText = flags.fallbackText
	}
	if flags.format != "" {
		cfg.Output.Format = flags.format
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Output.Format = strings.ToLower(cfg.Output.Format)
	return cfg, nil
}

// buildConverter wires a Converter from configuration.
func buildConverter(cfg *config.Config, logger *zap.Logger) (*mdstyle.Converter, error) {
	timeout, err := cfg.Image.HTTPTimeout()
	if err != nil {
		return nil, err
	}

	loaderOpts := []mdstyle.LoaderOption{
		mdstyle.WithHTTPClient(&http.Client{Timeout: timeout}),
		mdstyle.WithLoaderLogger(logger),
	}
	if cfg.Image.MaxBytes > 0 {
		loaderOpts = append(loaderOpts, mdstyle.WithMaxBytes(cfg.Image.MaxBytes))
	}
	if cfg.Image.MaxPixels > 0 {
		loaderOpts = append(loaderOpts, mdstyle.WithMaxPixels(cfg.Image.MaxPixels))
	}
	if cfg.Image.UserAgent != "" {
		loaderOpts = append(loaderOpts, mdstyle.WithUserAgent(cfg.Image.UserAgent))
	}
	loader := mdstyle.NewHTTPImageLoader(loaderOpts...)

	opts := []mdstyle.Option{
		mdstyle.WithLogger(logger),
		mdstyle.WithImageHandler(loader.Handle),
		mdstyle.WithUniformInline(cfg.Render.UniformInline),
	}
	if cfg.Render.FallbackText != "" {
		opts = append(opts, mdstyle.WithFallbackText(cfg.Render.FallbackText))
	}
	return mdstyle.NewConverter(opts...), nil
}

// collectSources maps positional args to sources. No args, or "-", reads stdin.
func collectSources(paths []string, stdin io.Reader) ([]source, error) {
	if len(paths) == 0 {
		paths = []string{stdinPath}
	}

	sources := make([]source, 0, len(paths))
	readStdin := false
	for _, p := range paths {
		if p != stdinPath {
			sources = append(sources, source{Path: p})
			continue
		}
		if readStdin {
			return nil, fmt.Errorf("%w: stdin given more than once", ErrUsage)
		}
		readStdin = true
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("%w: stdin: %v", ErrReadMarkdown, err)
		}
		// Empty input still converts to an empty document
		if data == nil {
			data = []byte{}
		}
		sources = append(sources, source{Path: stdinPath, Content: data})
	}
	return sources, nil
}

// printResults writes documents to stdout in input order and reports
// failures on the logger.
func printResults(env *Environment, format string, results []RenderResult, logger *zap.Logger) error {
	multi := len(results) > 1
	for _, r := range results {
		if r.Err != nil {
			logger.Error("render failed", zap.String("input", r.InputPath), zap.Error(r.Err))
			continue
		}
		logger.Info("rendered",
			zap.String("input", r.InputPath),
			zap.Int("images", len(r.Document.Attachments())),
			zap.Duration("duration", r.Duration))

		var err error
		switch format {
		case config.FormatYAML:
			err = writeYAML(env.Stdout, r.InputPath, r.Document)
		default:
			if multi {
				fmt.Fprintf(env.Stdout, "==> %s <==\n", r.InputPath)
			}
			err = writeText(env.Stdout, r.Document)
		}
		if err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	}
	return nil
}
