package mdstyle

import (
	"cmp"
	"slices"

	"go.uber.org/zap"
)

// reassemble replaces every placeholder token in doc with its resolved image
// or the fallback text, and returns the number of fallbacks.
//
// Placeholders are processed from the highest offset down. A replacement
// rarely has the token's length, so only content after the current offset
// moves, and every offset still to be processed stays valid.
func (c *Converter) reassemble(doc *Document, placeholders []ImagePlaceholder, images []*Attachment) int {
	ordered := slices.Clone(placeholders)
	slices.SortFunc(ordered, func(a, b ImagePlaceholder) int {
		return cmp.Compare(b.Offset, a.Offset)
	})

	failed := 0
	for _, ph := range ordered {
		var att *Attachment
		if ph.Index >= 0 && ph.Index < len(images) {
			att = images[ph.Index]
		}
		if att == nil {
			failed++
		}
		// Segmenter offsets always land on span boundaries inside doc, so
		// Replace cannot fail here; an error means the offsets were corrupted
		// and the token is left in place rather than guessing a position.
		if err := doc.Replace(ph.Offset, ph.Length, c.replacementFor(att)...); err != nil {
			c.logger.Error("replacing image placeholder", zap.Int("index", ph.Index), zap.Int("offset", ph.Offset), zap.Error(err))
		}
	}
	return failed
}

// replacementFor returns the spans standing in for an image: the attachment
// followed by a line break, or the fallback text.
func (c *Converter) replacementFor(att *Attachment) []Span {
	if att == nil {
		return []Span{{Text: c.cfg.fallbackText + "\n", Font: BodyFont()}}
	}
	return []Span{
		{Attachment: att},
		{Text: "\n", Font: BodyFont()},
	}
}
