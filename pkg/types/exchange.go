// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the shared data model for the exchange-engine pipeline.
package types

import "fmt"

// BranchResponse is a single alternate assistant response attached to a
// prompt. Branches are numbered 1-based in the order they appear in the
// transcript; the number is never reused or reordered within a block.
type BranchResponse struct {
	// Index is the 1-based encounter order of this branch within its block.
	Index int `json:"index" yaml:"index"`

	// Content is the trimmed branch body. May be empty when the branch
	// marker had no body before the next marker.
	Content string `json:"content" yaml:"content"`
}

// ResponseIDSuffix returns the anchor suffix for this branch ("b1", "b2", ...).
func (b BranchResponse) ResponseIDSuffix() string {
	return fmt.Sprintf("b%d", b.Index)
}

// PromptBlock is one user-turn-plus-responses unit of a transcript: the
// prompt text, zero or more branch responses, and an optional mainline
// response. Blocks are immutable once produced by the scanner.
type PromptBlock struct {
	// PromptText is the trimmed prompt body. May be empty.
	PromptText string `json:"prompt_text" yaml:"prompt_text"`

	// Branches holds the alternate responses in encounter order.
	Branches []BranchResponse `json:"branches,omitempty" yaml:"branches,omitempty"`

	// Mainline is the primary response body. nil means no mainline marker
	// was present; a pointer to "" means the marker was present with no body.
	Mainline *string `json:"mainline,omitempty" yaml:"mainline,omitempty"`
}

// HasMainline reports whether a mainline marker was present, regardless of
// whether its body is empty.
func (p PromptBlock) HasMainline() bool {
	return p.Mainline != nil
}

// ConvertConfig holds settings for the convert stage.
type ConvertConfig struct {
	// ChatID is the identifier prefixed to every derived anchor. Defaults
	// to the input filename stem when empty.
	ChatID string `json:"chat_id" yaml:"chat_id"`

	// Scene is the scene label placed in each block's meta section
	// (default "Untitled scene").
	Scene string `json:"scene" yaml:"scene"`
}

// CatalogConfig holds settings for the exchange catalog.
type CatalogConfig struct {
	// CatalogDir is the base directory for the catalog (contains index/).
	CatalogDir string `json:"catalog_dir" yaml:"catalog_dir"`

	// MaxResults is the default maximum number of search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}
