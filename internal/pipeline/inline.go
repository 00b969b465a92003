package pipeline

import (
	"errors"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Sentinel errors for inline rendering.
var (
	ErrInlineRender    = errors.New("inline rendering failed")
	ErrNoInlineContent = errors.New("no inline content")
)

// InlineRenderer renders inline markup (emphasis, code spans, links) to runs.
// Runs it returns may leave Size at zero; callers assign the body size.
type InlineRenderer interface {
	RenderInline(src string) ([]Run, error)
}

// Compile-time interface implementation check.
var _ InlineRenderer = (*GoldmarkInline)(nil)

// GoldmarkInline renders inline markup using goldmark (pure Go).
// It only reads the inline AST: block structure such as list markers or
// blockquote prefixes is dropped, and block-only input reports
// ErrNoInlineContent so callers can fall back to literal text.
type GoldmarkInline struct {
	md goldmark.Markdown
}

// NewGoldmarkInline creates a GoldmarkInline with strikethrough and linkify.
func NewGoldmarkInline() *GoldmarkInline {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Strikethrough, // ~~text~~
			extension.Linkify,       // bare www. and https:// links
		),
	)
	return &GoldmarkInline{md: md}
}

// RenderInline parses src and flattens its inline nodes into styled runs.
// Recovers from parser panics and reports them as ErrInlineRender.
func (g *GoldmarkInline) RenderInline(src string) (runs []Run, err error) {
	defer func() {
		if r := recover(); r != nil {
			runs = nil
			err = fmt.Errorf("%w: %v", ErrInlineRender, r)
		}
	}()

	source := []byte(src)
	doc := g.md.Parser().Parse(text.NewReader(source))
	collectInline(doc, source, Run{}, &runs)

	if len(runs) == 0 {
		return nil, ErrNoInlineContent
	}
	return runs, nil
}

// collectInline walks the children of n, accumulating runs under style.
func collectInline(n ast.Node, source []byte, style Run, out *[]Run) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			t := string(node.Segment.Value(source))
			switch {
			case node.HardLineBreak():
				t += "\n"
			case node.SoftLineBreak():
				t += " "
			}
			appendRun(out, style, t)

		case *ast.String:
			appendRun(out, style, string(node.Value))

		case *ast.Emphasis:
			s := style
			if node.Level >= 2 {
				s.Bold = true
			} else {
				s.Italic = true
			}
			collectInline(node, source, s, out)

		case *ast.CodeSpan:
			s := style
			s.Monospace = true
			collectInline(node, source, s, out)

		case *ast.Link:
			s := style
			s.Link = string(node.Destination)
			collectInline(node, source, s, out)

		case *ast.AutoLink:
			s := style
			s.Link = string(node.URL(source))
			appendRun(out, s, string(node.Label(source)))

		case *ast.RawHTML:
			// Inline HTML has no styled-text equivalent.

		default:
			collectInline(node, source, style, out)
		}
	}
}

// appendRun adds t under style, merging with the previous run when the
// style is identical. Goldmark splits text at every delimiter candidate.
func appendRun(out *[]Run, style Run, t string) {
	if t == "" {
		return
	}
	if n := len(*out); n > 0 {
		last := &(*out)[n-1]
		prev := *last
		prev.Text = ""
		if prev == style {
			last.Text += t
			return
		}
	}
	style.Text = t
	*out = append(*out, style)
}
