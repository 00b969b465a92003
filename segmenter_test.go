package mdstyle

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var (
	titleFont = Font{Size: 28, Weight: WeightBold}
	boldBody  = Font{Size: BodySize, Weight: WeightBold}
)

// failingRenderer always reports an error.
type failingRenderer struct{}

func (failingRenderer) RenderInline(string) ([]Span, error) {
	return nil, errors.New("renderer down")
}

// sizelessRenderer returns the source as one span with no font size.
type sizelessRenderer struct{}

func (sizelessRenderer) RenderInline(src string) ([]Span, error) {
	return []Span{{Text: src, Font: Font{Italic: true}}}, nil
}

func TestSegment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		markdown string
		opts     []Option
		want     []Segment
	}{
		{
			name:     "header image body",
			markdown: "# Title\n![](http://x/img.png)\nBody text\n",
			want: []Segment{
				TextSegment{Spans: []Span{{Text: "Title\n", Font: titleFont}}},
				ImagePlaceholder{Index: 0, URL: "http://x/img.png", Offset: 6, Length: 7},
				TextSegment{Spans: []Span{{Text: "Body text\n", Font: BodyFont()}}},
			},
		},
		{
			name:     "no images delegates body lines",
			markdown: "# A\nplain **b**\n",
			want: []Segment{
				TextSegment{Spans: []Span{
					{Text: "A\n", Font: titleFont},
					{Text: "plain ", Font: BodyFont()},
					{Text: "b\n", Font: boldBody},
				}},
			},
		},
		{
			name:     "text before the last image is not delegated",
			markdown: "**x**\n![](http://x/a.png)\n",
			want: []Segment{
				TextSegment{Spans: []Span{{Text: "**x**\n", Font: BodyFont()}}},
				ImagePlaceholder{Index: 0, URL: "http://x/a.png", Offset: 6, Length: 7},
			},
		},
		{
			name:     "uniform inline delegates every chunk",
			markdown: "**x**\n![](http://x/a.png)\n",
			opts:     []Option{WithUniformInline(true)},
			want: []Segment{
				TextSegment{Spans: []Span{{Text: "x\n", Font: boldBody}}},
				ImagePlaceholder{Index: 0, URL: "http://x/a.png", Offset: 2, Length: 7},
			},
		},
		{
			name:     "offsets accumulate across images",
			markdown: "a\n![](1)\nb\n![](2)\n",
			want: []Segment{
				TextSegment{Spans: []Span{{Text: "a\n", Font: BodyFont()}}},
				ImagePlaceholder{Index: 0, URL: "1", Offset: 2, Length: 7},
				TextSegment{Spans: []Span{{Text: "b\n", Font: BodyFont()}}},
				ImagePlaceholder{Index: 1, URL: "2", Offset: 11, Length: 7},
			},
		},
		{
			name:     "adjacent images",
			markdown: "![](1)![](2)",
			want: []Segment{
				ImagePlaceholder{Index: 0, URL: "1", Offset: 0, Length: 7},
				ImagePlaceholder{Index: 1, URL: "2", Offset: 7, Length: 7},
			},
		},
		{
			name:     "link keeps newline out of the link span",
			markdown: "see [docs](https://d.io)",
			want: []Segment{
				TextSegment{Spans: []Span{
					{Text: "see ", Font: BodyFont()},
					{Text: "docs", Font: BodyFont(), Link: "https://d.io"},
					{Text: "\n", Font: BodyFont()},
				}},
			},
		},
		{
			name:     "crlf input",
			markdown: "# T\r\n![](u)\r\nbody\r\n",
			want: []Segment{
				TextSegment{Spans: []Span{{Text: "T\n", Font: titleFont}}},
				ImagePlaceholder{Index: 0, URL: "u", Offset: 2, Length: 7},
				TextSegment{Spans: []Span{{Text: "body\n", Font: BodyFont()}}},
			},
		},
		{
			name:     "level six header uses body style",
			markdown: "###### small\n",
			want: []Segment{
				TextSegment{Spans: []Span{{Text: "small\n", Font: BodyFont()}}},
			},
		},
		{
			name:     "renderer disabled uses header mapper",
			markdown: "**x**\n",
			opts:     []Option{WithInlineRenderer(nil)},
			want: []Segment{
				TextSegment{Spans: []Span{{Text: "**x**\n", Font: BodyFont()}}},
			},
		},
		{
			name:     "failing renderer falls back",
			markdown: "**x**\n",
			opts:     []Option{WithInlineRenderer(failingRenderer{})},
			want: []Segment{
				TextSegment{Spans: []Span{{Text: "**x**\n", Font: BodyFont()}}},
			},
		},
		{
			name:     "block-only line falls back",
			markdown: "---\n",
			want: []Segment{
				TextSegment{Spans: []Span{{Text: "---\n", Font: BodyFont()}}},
			},
		},
		{
			name:     "missing sizes become body size",
			markdown: "hi\n",
			opts:     []Option{WithInlineRenderer(sizelessRenderer{})},
			want: []Segment{
				TextSegment{Spans: []Span{{Text: "hi\n", Font: Font{Size: BodySize, Italic: true}}}},
			},
		},
		{
			name:     "empty input",
			markdown: "",
			want:     nil,
		},
		{
			name:     "only blank lines",
			markdown: "\n\n\n",
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := NewConverter(tt.opts...)
			got := c.Segment(tt.markdown)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Segment(%q) mismatch (-want +got):\n%s", tt.markdown, diff)
			}
		})
	}
}

func TestSegment_HeadersWithoutImages(t *testing.T) {
	t.Parallel()

	// Every header line keeps its size and order when there is no image.
	md := "# One\n## Two\nbody\n### Three\n#### Four\n##### Five\n"
	wantSizes := []float64{28, 24, 14, 20, 18, 16}
	wantText := "One\nTwo\nbody\nThree\nFour\nFive\n"

	segs := NewConverter().Segment(md)
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1", len(segs))
	}
	spans := segs[0].(TextSegment).Spans

	var sizes []float64
	var b strings.Builder
	for _, s := range spans {
		sizes = append(sizes, s.Font.Size)
		b.WriteString(s.Text)
	}
	if diff := cmp.Diff(wantSizes, sizes); diff != "" {
		t.Errorf("sizes mismatch (-want +got):\n%s", diff)
	}
	if b.String() != wantText {
		t.Errorf("text = %q, want %q", b.String(), wantText)
	}
}

func TestSegment_PlaceholderOffsetsMatchDocument(t *testing.T) {
	t.Parallel()

	md := "# Tïtle 😀\n![](a)\nsome *text*\n![](b)\n## end\n![](c)\ntail **bold**\n"
	doc, placeholders := assemble(NewConverter().Segment(md))
	if len(placeholders) != 3 {
		t.Fatalf("got %d placeholders, want 3", len(placeholders))
	}

	for _, ph := range placeholders {
		probe := NewDocument(doc.Spans()...)
		// Cut everything before the placeholder and check it starts with the token.
		if err := probe.Replace(0, ph.Offset); err != nil {
			t.Fatalf("placeholder %d: Replace(0, %d) error: %v", ph.Index, ph.Offset, err)
		}
		if !strings.HasPrefix(probe.String(), placeholderToken) {
			t.Errorf("placeholder %d at %d: document continues with %q", ph.Index, ph.Offset, probe.String())
		}
	}
}

func TestAssemble(t *testing.T) {
	t.Parallel()

	segs := []Segment{
		TextSegment{Spans: []Span{{Text: "a\n", Font: BodyFont()}}},
		ImagePlaceholder{Index: 0, URL: "u", Offset: 2, Length: 7},
	}
	doc, placeholders := assemble(segs)
	if got, want := doc.String(), "a\n[IMAGE]"; got != want {
		t.Errorf("document = %q, want %q", got, want)
	}
	if len(placeholders) != 1 || placeholders[0].URL != "u" {
		t.Errorf("placeholders = %+v", placeholders)
	}
}
