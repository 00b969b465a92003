package mdstyle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Compile-time interface implementation checks.
var (
	_ InlineRenderer = (*goldmarkRenderer)(nil)
	_ ImageHandler   = (*HTTPImageLoader)(nil).Handle
)

// Converter orchestrates the markdown-to-document pipeline.
// A Converter holds no per-conversion state and is safe for concurrent use.
type Converter struct {
	cfg      converterConfig
	inline   InlineRenderer
	images   ImageHandler
	executor Executor
	logger   *zap.Logger
}

// NewConverter creates a Converter with default configuration: goldmark
// inline rendering, HTTP image loading, and inline completion dispatch.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		cfg:      converterConfig{fallbackText: DefaultFallbackText},
		inline:   NewGoldmarkRenderer(),
		executor: RunInline,
		logger:   zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	// Create image handler if not injected (e.g., by tests)
	if c.images == nil {
		c.images = NewHTTPImageLoader(WithLoaderLogger(c.logger)).Handle
	}

	return c
}

// Segment splits markdown into styled text segments and image placeholders,
// in source order, without resolving any image.
func (c *Converter) Segment(markdown string) []Segment {
	s := &segmenter{uniform: c.cfg.uniformInline, logger: c.logger}
	if c.inline != nil {
		s.inline = &inlineDelegate{renderer: c.inline}
	}
	return s.segment(markdown)
}

// FromMarkdown converts markdown into a Document and passes it to completion.
//
// Text is segmented synchronously; images are then fetched in parallel, one
// handler call per placeholder. Once every image has settled the document is
// reassembled in source order and completion runs exactly once through the
// converter's Executor. With no images, completion is dispatched before
// FromMarkdown returns. A nil handler selects the converter's default.
//
// Failed images are replaced by the fallback text; no error is reported.
func (c *Converter) FromMarkdown(markdown string, maxWidth float64, handler ImageHandler, completion func(*Document)) {
	if handler == nil {
		handler = c.images
	}
	start := time.Now()

	segments := c.Segment(markdown)
	doc, placeholders := assemble(segments)
	c.logger.Debug("segmented markdown",
		zap.Int("segments", len(segments)),
		zap.Int("images", len(placeholders)),
		zap.Int("length", doc.Len()))

	if len(placeholders) == 0 {
		c.finish(doc, 0, 0, start, completion)
		return
	}

	pending := resolveImages(placeholders, maxWidth, handler, c.logger)
	go func() {
		images := pending.wait()
		failed := c.reassemble(doc, placeholders, images)
		c.finish(doc, len(placeholders), failed, start, completion)
	}()
}

// finish hands the completed document to the caller.
func (c *Converter) finish(doc *Document, images, failed int, start time.Time, completion func(*Document)) {
	c.logger.Debug("document complete",
		zap.Int("images", images),
		zap.Int("failed", failed),
		zap.Duration("duration", time.Since(start)))
	if completion == nil {
		return
	}
	c.executor(func() { completion(doc) })
}

// Convert runs FromMarkdown and waits for the document.
// The context bounds the wait only: image resolution is not cancelled and
// finishes in the background if ctx is done first. Do not call Convert from
// the goroutine a custom Executor dispatches on.
func (c *Converter) Convert(ctx context.Context, input Input) (*Document, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	// Fast path: check context before starting
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("validating input: %w", err)
	}

	done := make(chan *Document, 1)
	c.FromMarkdown(input.Markdown, input.MaxWidth, input.ImageHandler, func(doc *Document) {
		done <- doc
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case doc := <-done:
		return doc, nil
	}
}

// defaultConverter backs the package-level FromMarkdown.
var defaultConverter = sync.OnceValue(func() *Converter {
	return NewConverter()
})

// FromMarkdown converts markdown with a default Converter.
// See Converter.FromMarkdown.
func FromMarkdown(markdown string, maxWidth float64, handler ImageHandler, completion func(*Document)) {
	defaultConverter().FromMarkdown(markdown, maxWidth, handler, completion)
}
