package mdstyle

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf16"
)

// objectReplacement stands in for an attachment in plain-text output.
const objectReplacement = "\uFFFC"

// Document is an ordered sequence of styled spans and image attachments.
// Offsets are measured in UTF-16 code units. A Document is not safe for
// concurrent mutation; the converter hands it to the caller only once it is
// complete.
type Document struct {
	spans []Span
}

// NewDocument creates a Document holding spans.
func NewDocument(spans ...Span) *Document {
	d := &Document{}
	d.Append(spans...)
	return d
}

// Len returns the document length in UTF-16 code units.
func (d *Document) Len() int {
	n := 0
	for _, s := range d.spans {
		n += s.Len()
	}
	return n
}

// Spans returns a copy of the document spans.
func (d *Document) Spans() []Span {
	return slices.Clone(d.spans)
}

// Attachments returns the attachments in document order.
func (d *Document) Attachments() []*Attachment {
	var out []*Attachment
	for _, s := range d.spans {
		if s.Attachment != nil {
			out = append(out, s.Attachment)
		}
	}
	return out
}

// String returns the plain text of the document. Attachments are written
// as U+FFFC OBJECT REPLACEMENT CHARACTER.
func (d *Document) String() string {
	var b strings.Builder
	for _, s := range d.spans {
		if s.Attachment != nil {
			b.WriteString(objectReplacement)
			continue
		}
		b.WriteString(s.Text)
	}
	return b.String()
}

// Append adds spans at the end of the document. Empty text spans are skipped.
func (d *Document) Append(spans ...Span) {
	for _, s := range spans {
		if s.Attachment == nil && s.Text == "" {
			continue
		}
		d.spans = append(d.spans, s)
	}
}

// Replace substitutes the length units starting at offset with spans.
// Content before offset is never touched, so offsets of earlier positions
// stay valid after a replacement.
func (d *Document) Replace(offset, length int, spans ...Span) error {
	total := d.Len()
	if offset < 0 || length < 0 || offset+length > total {
		return fmt.Errorf("%w: [%d, %d) in document of length %d", ErrOffsetOutOfRange, offset, offset+length, total)
	}

	start, err := d.split(offset)
	if err != nil {
		return err
	}
	end, err := d.split(offset + length)
	if err != nil {
		return err
	}

	replacement := NewDocument(spans...).spans
	d.spans = slices.Concat(d.spans[:start], replacement, d.spans[end:])
	return nil
}

// split ensures a span boundary at offset and returns the index of the
// first span starting there (len(d.spans) when offset is the end).
func (d *Document) split(offset int) (int, error) {
	pos := 0
	for i, s := range d.spans {
		if pos == offset {
			return i, nil
		}
		n := s.Len()
		if offset < pos+n {
			head, tail, err := splitUTF16(s.Text, offset-pos)
			if err != nil {
				return 0, err
			}
			first, second := s, s
			first.Text, second.Text = head, tail
			d.spans = slices.Insert(d.spans, i+1, second)
			d.spans[i] = first
			return i + 1, nil
		}
		pos += n
	}
	if pos == offset {
		return len(d.spans), nil
	}
	return 0, fmt.Errorf("%w: %d", ErrOffsetOutOfRange, offset)
}

// splitUTF16 splits s after k UTF-16 code units.
func splitUTF16(s string, k int) (string, string, error) {
	units := 0
	for i, r := range s {
		if units == k {
			return s[:i], s[i:], nil
		}
		units += utf16.RuneLen(r)
		if units > k {
			return "", "", fmt.Errorf("%w: unit %d of %q", ErrSplitSurrogate, k, s)
		}
	}
	if units == k {
		return s, "", nil
	}
	return "", "", fmt.Errorf("%w: unit %d of %q", ErrOffsetOutOfRange, k, s)
}
