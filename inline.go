package mdstyle

import (
	"fmt"

	"github.com/alnah/go-mdstyle/internal/pipeline"
)

// InlineRenderer renders inline markup (bold, italic, code, links) to spans.
// Implementations may leave Font.Size at zero; the converter assigns the
// body font to such spans.
type InlineRenderer interface {
	RenderInline(src string) ([]Span, error)
}

// goldmarkRenderer adapts a pipeline renderer (goldmark by default) to
// InlineRenderer.
type goldmarkRenderer struct {
	g pipeline.InlineRenderer
}

// NewGoldmarkRenderer returns the default InlineRenderer, backed by goldmark.
func NewGoldmarkRenderer() InlineRenderer {
	return &goldmarkRenderer{g: pipeline.NewGoldmarkInline()}
}

func (r *goldmarkRenderer) RenderInline(src string) ([]Span, error) {
	runs, err := r.g.RenderInline(src)
	if err != nil {
		return nil, err
	}
	return fromRuns(runs), nil
}

// inlineDelegate wraps an InlineRenderer and normalizes unassigned fonts.
type inlineDelegate struct {
	renderer InlineRenderer
}

// render returns the renderer's text spans with every missing font size
// set to BodySize. Weight and slant chosen by the renderer are kept.
func (d *inlineDelegate) render(src string) ([]Span, error) {
	if d == nil || d.renderer == nil {
		return nil, ErrNoInlineRenderer
	}
	spans, err := d.renderer.RenderInline(src)
	if err != nil {
		return nil, fmt.Errorf("rendering inline markup: %w", err)
	}

	out := make([]Span, 0, len(spans))
	for _, s := range spans {
		if s.Attachment != nil || s.Text == "" {
			continue
		}
		if s.Font.Size <= 0 {
			s.Font.Size = BodySize
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil, ErrEmptyInline
	}
	return out, nil
}

// fromRuns converts internal pipeline runs to public spans.
func fromRuns(runs []pipeline.Run) []Span {
	spans := make([]Span, 0, len(runs))
	for _, r := range runs {
		weight := WeightNormal
		if r.Bold {
			weight = WeightBold
		}
		spans = append(spans, Span{
			Text: r.Text,
			Font: Font{
				Size:      r.Size,
				Weight:    weight,
				Italic:    r.Italic,
				Monospace: r.Monospace,
			},
			Link: r.Link,
		})
	}
	return spans
}
