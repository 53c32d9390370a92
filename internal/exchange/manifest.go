// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package exchange

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/exchange-engine/pkg/types"
)

// Manifest is the on-disk summary of one conversion run. It records the
// identifiers the run derived so other tooling can resolve anchors without
// re-parsing the rendered output.
type Manifest struct {
	ChatID  string         `yaml:"chat_id"`
	Scene   string         `yaml:"scene"`
	Created string         `yaml:"created"`
	Blocks  []BlockSummary `yaml:"blocks"`
}

// BlockSummary describes one rendered exchange block.
type BlockSummary struct {
	MetaID     string `yaml:"meta_id"`
	PromptID   string `yaml:"prompt_id"`
	BranchType string `yaml:"branch_type"`
	Branches   int    `yaml:"branches"`
	Mainline   bool   `yaml:"mainline"`
}

// BuildManifest summarizes a conversion run. Identifier derivation matches
// Render exactly, so the manifest and the rendered blocks agree.
func BuildManifest(blocks []types.PromptBlock, chatID, scene, timestamp string) Manifest {
	m := Manifest{
		ChatID:  chatID,
		Scene:   scene,
		Created: timestamp,
		Blocks:  make([]BlockSummary, len(blocks)),
	}
	for i, block := range blocks {
		ids := DeriveIDs(chatID, i+1)
		m.Blocks[i] = BlockSummary{
			MetaID:     ids.Meta,
			PromptID:   ids.Prompt,
			BranchType: BranchType(block),
			Branches:   len(block.Branches),
			Mainline:   block.HasMainline(),
		}
	}
	return m
}

// WriteManifest saves a run manifest to a YAML file.
func WriteManifest(path string, m Manifest) error {
	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadManifest loads a previously written manifest from disk.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}
