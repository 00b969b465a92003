package mdstyle

import (
	"strings"

	"go.uber.org/zap"

	"github.com/alnah/go-mdstyle/internal/pipeline"
)

// placeholderToken reserves an image position until reassembly.
const placeholderToken = "[IMAGE]"

// placeholderLen is the width of placeholderToken in UTF-16 units.
var placeholderLen = utf16Len(placeholderToken)

// segmenter splits markdown into text segments and image placeholders.
type segmenter struct {
	inline  *inlineDelegate // nil when delegation is unavailable
	uniform bool            // render every chunk like the trailing one
	logger  *zap.Logger
}

// segment scans markdown once and returns its segments in source order.
//
// Text before the final image directive is styled by the header mapper only.
// The trailing text (the whole input when there is no directive) routes body
// lines through the inline delegate. With uniform set, every chunk is
// rendered like the trailing one.
func (s *segmenter) segment(markdown string) []Segment {
	tokens := pipeline.Tokenize(pipeline.NormalizeLineEndings(markdown))

	lastImage := -1
	for i, tok := range tokens {
		if tok.Kind == pipeline.TokenImage {
			lastImage = i
		}
	}

	var segments []Segment
	offset, index := 0, 0
	for i, tok := range tokens {
		switch tok.Kind {
		case pipeline.TokenImage:
			segments = append(segments, ImagePlaceholder{
				Index:  index,
				URL:    tok.URL,
				Offset: offset,
				Length: placeholderLen,
			})
			index++
			offset += placeholderLen

		case pipeline.TokenText:
			var spans []Span
			if i > lastImage || s.uniform {
				spans = s.renderTail(tok.Text)
			} else {
				spans = fromRuns(pipeline.StyleLines(tok.Text))
			}
			if len(spans) == 0 {
				continue
			}
			for _, sp := range spans {
				offset += sp.Len()
			}
			segments = append(segments, TextSegment{Spans: spans})
		}
	}
	return segments
}

// renderTail styles text line by line. Header lines always use the header
// mapper; other lines prefer the inline delegate and fall back to the
// header mapper when it is unavailable or fails.
func (s *segmenter) renderTail(text string) []Span {
	var spans []Span
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			continue
		}
		if pipeline.HeaderLevel(line) > 0 {
			spans = append(spans, fromRuns([]pipeline.Run{pipeline.StyleLine(line)})...)
			continue
		}

		rendered, err := s.inline.render(line)
		if err != nil {
			s.logger.Debug("inline delegation fell back to header style",
				zap.String("line", line), zap.Error(err))
			spans = append(spans, fromRuns([]pipeline.Run{pipeline.StyleLine(line)})...)
			continue
		}
		spans = append(spans, terminateLine(rendered)...)
	}
	return spans
}

// terminateLine ends a delegated line with "\n", like header mapper output.
// The newline joins the last span unless that span is a link.
func terminateLine(spans []Span) []Span {
	last := &spans[len(spans)-1]
	if last.Link == "" {
		last.Text += "\n"
		return spans
	}
	return append(spans, Span{Text: "\n", Font: BodyFont()})
}

// assemble builds the working document from segments. Each placeholder
// contributes placeholderToken at its recorded offset.
func assemble(segments []Segment) (*Document, []ImagePlaceholder) {
	doc := &Document{}
	var placeholders []ImagePlaceholder
	for _, seg := range segments {
		switch s := seg.(type) {
		case TextSegment:
			doc.Append(s.Spans...)
		case ImagePlaceholder:
			doc.Append(Span{Text: placeholderToken, Font: BodyFont()})
			placeholders = append(placeholders, s)
		}
	}
	return doc, placeholders
}
