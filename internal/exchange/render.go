// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package exchange renders prompt blocks into fenced exchange blocks with
// stable anchor identifiers.
package exchange

import (
	"fmt"
	"strings"

	"github.com/pdiddy/exchange-engine/pkg/types"
)

// IDs holds the identifiers derived for one exchange block. All three are
// pure functions of the chat id and the 1-based block index.
type IDs struct {
	// Meta anchors the whole block (<chat>-PR<NNN>).
	Meta string

	// Prompt anchors the prompt section (<chat>-Prompt<NNN>).
	Prompt string

	// ResponsePrefix is extended with "-b<idx>" per branch or "-main" for
	// the mainline (<chat>-Response<NNN>).
	ResponsePrefix string
}

// DeriveIDs computes the identifier set for the block at the given 1-based
// index. The index is zero-padded to three digits.
func DeriveIDs(chatID string, index int) IDs {
	return IDs{
		Meta:           fmt.Sprintf("%s-PR%03d", chatID, index),
		Prompt:         fmt.Sprintf("%s-Prompt%03d", chatID, index),
		ResponsePrefix: fmt.Sprintf("%s-Response%03d", chatID, index),
	}
}

// BranchType classifies a block for its meta section: "multi" when more than
// one branch exists, "single" otherwise (including zero branches).
func BranchType(block types.PromptBlock) string {
	if len(block.Branches) > 1 {
		return "multi"
	}
	return "single"
}

// Render serializes one prompt block into its fenced exchange form. It is a
// pure function: identical inputs produce byte-identical output.
func Render(block types.PromptBlock, index int, chatID, scene, timestamp string) string {
	ids := DeriveIDs(chatID, index)

	out := []string{
		"```exchange",
		"meta:",
		"  id: " + ids.Meta,
		"  scene: " + scene,
		"  branch_type: " + BranchType(block),
		"  prompt_id: " + ids.Prompt,
		"  created: " + timestamp,
		"content:",
		"  # You said:",
	}
	out = appendBody(out, block.PromptText)
	out = append(out, "  ^"+ids.Prompt)

	if len(block.Branches) > 0 {
		out = append(out, "  ", "  ## Branches")
		for _, br := range block.Branches {
			out = append(out, "  ", fmt.Sprintf("  ### Branch %d – ChatGPT said:", br.Index))
			out = appendBody(out, br.Content)
			out = append(out, "  ^"+ids.ResponsePrefix+"-"+br.ResponseIDSuffix())
		}
	}

	if block.Mainline != nil {
		out = append(out, "  ", "  ### Mainline – ChatGPT said:")
		out = appendBody(out, *block.Mainline)
		out = append(out, "  ^"+ids.ResponsePrefix+"-main")
	}

	out = append(out, "```", "^"+ids.Meta)
	return strings.Join(out, "\n")
}

// RenderAll renders every block in index order and joins them with a blank
// line. The block index is 1-based within the document.
func RenderAll(blocks []types.PromptBlock, chatID, scene, timestamp string) string {
	rendered := make([]string, len(blocks))
	for i, block := range blocks {
		rendered[i] = Render(block, i+1, chatID, scene, timestamp)
	}
	return strings.Join(rendered, "\n\n")
}

// appendBody copies a span into the block body at two-space indentation. An
// empty span still occupies one indented blank line so the section remains
// visibly present.
func appendBody(out []string, body string) []string {
	if body == "" {
		return append(out, "  ")
	}
	for _, line := range strings.Split(body, "\n") {
		out = append(out, "  "+line)
	}
	return out
}
