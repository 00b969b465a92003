package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	mdstyle "github.com/alnah/go-mdstyle"
	"github.com/alnah/go-mdstyle/internal/yamlutil"
)

// documentView is the YAML projection of a Document.
type documentView struct {
	Source string     `yaml:"source"`
	Length int        `yaml:"length"`
	Spans  []spanView `yaml:"spans"`
}

type spanView struct {
	Text      string     `yaml:"text,omitempty"`
	Size      float64    `yaml:"size,omitempty"`
	Weight    string     `yaml:"weight,omitempty"`
	Italic    bool       `yaml:"italic,omitempty"`
	Monospace bool       `yaml:"monospace,omitempty"`
	Link      string     `yaml:"link,omitempty"`
	Image     *imageView `yaml:"image,omitempty"`
}

type imageView struct {
	Source       string  `yaml:"source"`
	Format       string  `yaml:"format"`
	NativeWidth  int     `yaml:"nativeWidth"`
	NativeHeight int     `yaml:"nativeHeight"`
	Width        float64 `yaml:"width"`
	Height       float64 `yaml:"height"`
}

// newDocumentView flattens doc for serialization.
func newDocumentView(source string, doc *mdstyle.Document) documentView {
	spans := doc.Spans()
	view := documentView{
		Source: source,
		Length: doc.Len(),
		Spans:  make([]spanView, 0, len(spans)),
	}
	for _, s := range spans {
		if s.IsAttachment() {
			a := s.Attachment
			view.Spans = append(view.Spans, spanView{Image: &imageView{
				Source:       a.Source,
				Format:       a.Format,
				NativeWidth:  a.NativeWidth,
				NativeHeight: a.NativeHeight,
				Width:        a.Bounds.Width,
				Height:       a.Bounds.Height,
			}})
			continue
		}
		view.Spans = append(view.Spans, spanView{
			Text:      s.Text,
			Size:      s.Font.Size,
			Weight:    s.Font.Weight.String(),
			Italic:    s.Font.Italic,
			Monospace: s.Font.Monospace,
			Link:      s.Link,
		})
	}
	return view
}

// writeYAML writes doc as one YAML document, preceded by a separator.
func writeYAML(w io.Writer, source string, doc *mdstyle.Document) error {
	data, err := yamlutil.Marshal(newDocumentView(source, doc))
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	if _, err := io.WriteString(w, "---\n"); err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// writeText writes the document's plain text. Attachments are shown as
// bracketed descriptions.
func writeText(w io.Writer, doc *mdstyle.Document) error {
	var b strings.Builder
	for _, s := range doc.Spans() {
		if !s.IsAttachment() {
			b.WriteString(s.Text)
			continue
		}
		a := s.Attachment
		b.WriteString("[image ")
		b.WriteString(a.Format)
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(a.Bounds.Width, 'g', -1, 64))
		b.WriteByte('x')
		b.WriteString(strconv.FormatFloat(a.Bounds.Height, 'g', -1, 64))
		b.WriteByte(' ')
		b.WriteString(a.Source)
		b.WriteByte(']')
	}
	_, err := io.WriteString(w, b.String())
	return err
}
