// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reflow rewrites raw chat exports into heading-marked Markdown.
//
// Raw exports label turns with bare "You said:" / "ChatGPT said:" lines.
// Reflow inserts a heading before the first turn and promotes every later
// label line to a heading, producing the marked-up transcript the scanner
// consumes.
package reflow

import (
	"fmt"
	"strings"
)

// Label literals recognized in raw exports.
const (
	UserLabel      = "You said:"
	AssistantLabel = "ChatGPT said:"
)

// Options control the heading levels and labels applied during reflow.
type Options struct {
	// FirstLevel is the heading level (1-6) inserted before the first
	// non-empty line.
	FirstLevel int

	// SubLevel is the heading level (1-6) replacing later label lines.
	SubLevel int

	// FirstLabel is the label text of the inserted first heading.
	FirstLabel string

	// SubLabel is the label text of the replacement headings.
	SubLabel string
}

// DefaultOptions returns the conventional reflow settings: a level-1
// "You said:" opener and level-2 "ChatGPT said:" replacements.
func DefaultOptions() Options {
	return Options{
		FirstLevel: 1,
		SubLevel:   2,
		FirstLabel: UserLabel,
		SubLabel:   AssistantLabel,
	}
}

// Validate checks that both heading levels are within Markdown's range.
func (o Options) Validate() error {
	if o.FirstLevel < 1 || o.FirstLevel > 6 {
		return fmt.Errorf("first heading level must be 1-6, got %d", o.FirstLevel)
	}
	if o.SubLevel < 1 || o.SubLevel > 6 {
		return fmt.Errorf("sub heading level must be 1-6, got %d", o.SubLevel)
	}
	return nil
}

// Reflow applies the heading rewrite to text. Input with no non-blank lines
// is returned unchanged, and the presence or absence of a trailing newline
// is preserved.
func Reflow(text string, o Options) string {
	hadTrailing := strings.HasSuffix(text, "\n")
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")

	firstIdx := -1
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			firstIdx = i
			break
		}
	}
	if firstIdx < 0 {
		return text
	}

	firstHeading := heading(o.FirstLevel, o.FirstLabel)
	subHeading := heading(o.SubLevel, o.SubLabel)

	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:firstIdx]...)
	out = append(out, firstHeading)
	out = append(out, lines[firstIdx:]...)

	// Every line after the inserted heading is eligible for replacement,
	// including the line the heading was inserted above.
	for i := firstIdx + 1; i < len(out); i++ {
		if strings.HasPrefix(out[i], UserLabel) || strings.HasPrefix(out[i], AssistantLabel) {
			out[i] = subHeading
		}
	}

	result := strings.Join(out, "\n")
	if hadTrailing {
		result += "\n"
	}
	return result
}

func heading(level int, label string) string {
	return strings.Repeat("#", level) + " " + label
}
