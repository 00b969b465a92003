package mdstyle

import (
	"fmt"
	"image"
	"math"
	"unicode/utf16"

	"github.com/alnah/go-mdstyle/internal/pipeline"
)

// BodySize is the font size of body text and of any run whose font was not
// assigned upstream.
const BodySize = pipeline.BodySize

// DefaultFallbackText replaces an image that could not be resolved.
const DefaultFallbackText = "[Image not available]"

// Weight is a font weight.
type Weight int

// Font weights.
const (
	WeightNormal Weight = iota
	WeightBold
)

// String returns the weight name.
func (w Weight) String() string {
	switch w {
	case WeightNormal:
		return "normal"
	case WeightBold:
		return "bold"
	default:
		return fmt.Sprintf("Weight(%d)", int(w))
	}
}

// Font describes how a span of text is drawn.
// A zero Size means no font was assigned.
type Font struct {
	Size      float64
	Weight    Weight
	Italic    bool
	Monospace bool
}

// BodyFont returns the default body font (size 14, normal weight).
func BodyFont() Font {
	return Font{Size: BodySize}
}

// Rect is a display rectangle in points.
type Rect struct {
	X, Y, Width, Height float64
}

// Attachment is a decoded image placed inline in a Document.
type Attachment struct {
	Source       string      // URL the image was fetched from
	Format       string      // decoder name: "png", "jpeg", "gif", "webp", ...
	Image        image.Image // decoded bitmap
	NativeWidth  int
	NativeHeight int
	Bounds       Rect // display bounds after scaling to the max width
}

// Span is a styled run of text, or a single attachment.
// When Attachment is non-nil, Text and Font are ignored.
type Span struct {
	Text       string
	Font       Font
	Link       string
	Attachment *Attachment
}

// IsAttachment reports whether the span holds an image.
func (s Span) IsAttachment() bool {
	return s.Attachment != nil
}

// Len returns the span length in UTF-16 code units.
// An attachment occupies exactly one unit.
func (s Span) Len() int {
	if s.Attachment != nil {
		return 1
	}
	return utf16Len(s.Text)
}

// utf16Len counts the UTF-16 code units needed to encode s.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// Segment is one unit of segmenter output: a TextSegment or an
// ImagePlaceholder. The segment sequence follows source order.
type Segment interface {
	isSegment()
}

// TextSegment holds the styled spans of a text chunk.
type TextSegment struct {
	Spans []Span
}

// ImagePlaceholder marks where an image directive was found.
// Offset and Length are UTF-16 units into the assembled Document.
type ImagePlaceholder struct {
	Index  int // encounter order, 0-based
	URL    string
	Offset int
	Length int
}

func (TextSegment) isSegment()      {}
func (ImagePlaceholder) isSegment() {}

// Input contains conversion parameters for Convert.
type Input struct {
	Markdown     string       // Markdown content
	MaxWidth     float64      // upper bound on rendered image width (required, > 0)
	ImageHandler ImageHandler // optional, nil = converter default
}

// Validate checks that input parameters are usable.
func (in Input) Validate() error {
	if in.MaxWidth <= 0 || math.IsNaN(in.MaxWidth) || math.IsInf(in.MaxWidth, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidMaxWidth, in.MaxWidth)
	}
	return nil
}
