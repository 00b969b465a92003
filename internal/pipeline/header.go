package pipeline

import (
	"regexp"
	"strings"
)

// BodySize is the font size of body text and of runs with no assigned font.
const BodySize = 14

// Header pattern (ATX style): 1-6 hashes followed by a single space.
var headerPattern = regexp.MustCompile(`^(#{1,6}) (.*)`)

// headerSizes maps header level to font size. Index 0 is body text.
var headerSizes = [...]float64{BodySize, 28, 24, 20, 18, 16, BodySize}

// Run is a contiguous span of text with one font assignment.
// A zero Size means the producer did not assign a font.
type Run struct {
	Text      string
	Size      float64
	Bold      bool
	Italic    bool
	Monospace bool
	Link      string
}

// HeaderLevel returns the ATX header level of line, or 0 for body text.
func HeaderLevel(line string) int {
	m := headerPattern.FindStringSubmatch(line)
	if m == nil {
		return 0
	}
	return len(m[1])
}

// StyleLine maps a single markdown line to a newline-terminated run.
// Levels 1-5 are bold at decreasing sizes. Level 6 keeps the body style,
// so it renders the same as plain text once the hashes are stripped.
func StyleLine(line string) Run {
	m := headerPattern.FindStringSubmatch(line)
	if m == nil {
		return Run{Text: line + "\n", Size: BodySize}
	}

	level := len(m[1])
	return Run{
		Text: m[2] + "\n",
		Size: headerSizes[level],
		Bold: level < 6,
	}
}

// StyleLines maps every non-empty line of text through StyleLine.
func StyleLines(text string) []Run {
	var runs []Run
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			continue
		}
		runs = append(runs, StyleLine(line))
	}
	return runs
}
