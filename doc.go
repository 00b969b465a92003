// Package mdstyle converts a constrained Markdown dialect into a styled-text
// Document, resolving inline images asynchronously.
//
// # Quick Start
//
// Convert markdown and receive the document through a callback:
//
//	mdstyle.FromMarkdown(src, 300, nil, func(doc *mdstyle.Document) {
//	    for _, span := range doc.Spans() {
//	        fmt.Printf("%q size=%v\n", span.Text, span.Font.Size)
//	    }
//	})
//
// Or block until the document is ready:
//
//	conv := mdstyle.NewConverter()
//	doc, err := conv.Convert(ctx, mdstyle.Input{
//	    Markdown: "# Title\n![](https://example.com/a.png)\nBody text\n",
//	    MaxWidth: 300,
//	})
//
// # Supported Markdown
//
// The dialect is small:
//
//   - ATX headers "# " to "###### ", one styled run per line. Levels 1-5 are
//     bold at sizes 28, 24, 20, 18 and 16; level 6 and body text use size 14.
//   - Image directives with empty alt text, "![](URL)", anywhere in the text.
//   - Inline markup (emphasis, strong, code spans, links) on body lines after
//     the last image directive, rendered by goldmark. WithUniformInline
//     extends this to every body line.
//
// Header lines never get inline styling, and empty lines are dropped.
//
// # Conversion Pipeline
//
// The conversion process follows these stages:
//
//  1. Segmentation: one forward scan splits the source into text segments
//     and image placeholders. Each placeholder reserves a fixed "[IMAGE]"
//     token at a recorded offset.
//  2. Resolution: one goroutine per placeholder runs the ImageHandler. The
//     default handler fetches over HTTP, decodes, and scales to the max
//     width. Failures resolve to nil.
//  3. Reassembly: after every image settles, tokens are replaced from the
//     highest offset down with the image or "[Image not available]".
//  4. Completion: the callback runs exactly once through the Executor.
//
// The final order always matches the source order, whatever the order in
// which images arrive.
//
// # Configuration
//
// Use functional options to customize the converter:
//
//	conv := mdstyle.NewConverter(
//	    mdstyle.WithLogger(logger),
//	    mdstyle.WithImageHandler(mdstyle.NewHTTPImageLoader(
//	        mdstyle.WithHTTPClient(&http.Client{Timeout: 10 * time.Second}),
//	    ).Handle),
//	    mdstyle.WithExecutor(uiQueue.Dispatch),
//	)
package mdstyle
