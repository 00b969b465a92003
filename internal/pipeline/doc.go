// Package pipeline implements the text stages of the styled-document pipeline.
//
// This package handles the synchronous, side-effect free work:
//   - Line ending normalization
//   - Forward scanning of image directives into typed tokens
//   - Header styling of markdown lines
//   - Inline markup rendering via Goldmark
//
// Image fetching, placeholder reassembly and the public document model live
// in the root mdstyle package.
package pipeline
