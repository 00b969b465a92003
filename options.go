package mdstyle

import "go.uber.org/zap"

// Executor runs a completion callback on the caller's chosen context, such
// as a UI event loop or a serial queue.
type Executor func(fn func())

// RunInline is the default Executor. It runs fn on the goroutine that
// finished reassembly.
func RunInline(fn func()) {
	fn()
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	uniformInline bool
	fallbackText  string
}

// WithInlineRenderer replaces the goldmark inline renderer.
// A nil renderer disables delegation: all text uses header styling.
func WithInlineRenderer(r InlineRenderer) Option {
	return func(c *Converter) {
		c.inline = r
	}
}

// WithImageHandler sets the handler used when FromMarkdown gets a nil one.
func WithImageHandler(h ImageHandler) Option {
	return func(c *Converter) {
		c.images = h
	}
}

// WithExecutor sets where completion callbacks run.
// Panics if e is nil (programmer error).
func WithExecutor(e Executor) Option {
	if e == nil {
		panic("mdstyle: WithExecutor executor must not be nil")
	}
	return func(c *Converter) {
		c.executor = e
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithUniformInline renders every text chunk like the trailing one: body
// lines go through the inline renderer, not only those after the last image.
func WithUniformInline(enabled bool) Option {
	return func(c *Converter) {
		c.cfg.uniformInline = enabled
	}
}

// WithFallbackText sets the text that replaces an unavailable image.
func WithFallbackText(text string) Option {
	return func(c *Converter) {
		c.cfg.fallbackText = text
	}
}
