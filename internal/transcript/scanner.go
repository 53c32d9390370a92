// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package transcript segments exported chat logs into prompt blocks.
//
// A transcript is a loose Markdown document in which marker lines separate
// the user's prompts from the assistant's responses. The scanner is a single
// forward pass: it never rejects malformed marker orderings, it degrades
// them to empty sections instead.
package transcript

import (
	"strings"

	"github.com/pdiddy/exchange-engine/pkg/types"
)

// Marker literals recognized by the scanner. Matching is an exact,
// case-sensitive prefix test on the line after leading whitespace is
// stripped.
const (
	PromptMarker   = "# You said:"
	BranchMarker   = "## Branch ChatGPT said:"
	MainlineMarker = "# ChatGPT said:"
)

// blockStops delimit prompt and branch spans; a mainline span stops only at
// the next prompt marker, so a branch marker inside mainline content is
// absorbed as literal text.
var (
	blockStops    = []string{BranchMarker, MainlineMarker, PromptMarker}
	mainlineStops = []string{PromptMarker}
	promptOnly    = []string{PromptMarker}
	branchOnly    = []string{BranchMarker}
	mainlineOnly  = []string{MainlineMarker}
)

// Scan partitions a transcript into prompt blocks in marker order. Lines
// before the first prompt marker are discarded. A document with no prompt
// markers yields an empty slice; the caller decides whether that is fatal.
func Scan(content string) []types.PromptBlock {
	// CRLF transcripts are normalized so carriage returns never leak into
	// marker matching or span content.
	content = strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(content, "\n")
	var blocks []types.PromptBlock

	i := 0
	for i < len(lines) {
		if !matchesAny(lines[i], promptOnly) {
			i++
			continue
		}

		promptText, next := collectUntil(lines, i+1, blockStops)
		i = next

		var branches []types.BranchResponse
		for i < len(lines) && matchesAny(lines[i], branchOnly) {
			body, next := collectUntil(lines, i+1, blockStops)
			branches = append(branches, types.BranchResponse{
				Index:   len(branches) + 1,
				Content: body,
			})
			i = next
		}

		var mainline *string
		if i < len(lines) && matchesAny(lines[i], mainlineOnly) {
			m, next := collectUntil(lines, i+1, mainlineStops)
			mainline = &m
			i = next
		}

		blocks = append(blocks, types.PromptBlock{
			PromptText: promptText,
			Branches:   branches,
			Mainline:   mainline,
		})
	}

	return blocks
}

// matchesAny reports whether the line, after leading whitespace, begins with
// one of the marker literals.
func matchesAny(line string, markers []string) bool {
	stripped := strings.TrimLeft(line, " \t")
	for _, m := range markers {
		if strings.HasPrefix(stripped, m) {
			return true
		}
	}
	return false
}

// collectUntil gathers raw lines starting at start until a stop marker or
// the end of the document, returning the trimmed span and the index of the
// line that stopped collection.
func collectUntil(lines []string, start int, stops []string) (string, int) {
	i := start
	var span []string
	for i < len(lines) {
		if matchesAny(lines[i], stops) {
			break
		}
		span = append(span, lines[i])
		i++
	}
	return TrimSpan(span), i
}

// TrimSpan removes trailing blank lines, then leading blank lines, and joins
// the remainder with newlines. Interior blank lines are preserved. The
// operation is idempotent.
func TrimSpan(span []string) string {
	for len(span) > 0 && strings.TrimSpace(span[len(span)-1]) == "" {
		span = span[:len(span)-1]
	}
	for len(span) > 0 && strings.TrimSpace(span[0]) == "" {
		span = span[1:]
	}
	return strings.Join(span, "\n")
}
