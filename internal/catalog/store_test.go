// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/exchange-engine/internal/exchange"
	"github.com/pdiddy/exchange-engine/pkg/types"
)

const testCreated = "2026-03-14T09:26:53Z"

// --- test helpers ---

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(types.CatalogConfig{CatalogDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func mainline(s string) *string { return &s }

func testBlocks() []types.PromptBlock {
	return []types.PromptBlock{
		{
			PromptText: "tell me about rivers",
			Branches: []types.BranchResponse{
				{Index: 1, Content: "rivers are long"},
				{Index: 2, Content: "rivers are wet"},
			},
		},
		{
			PromptText: "and mountains",
			Mainline:   mainline("mountains are tall"),
		},
	}
}

func TestPutAndList(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	n, err := store.Put(ctx, "chat", "Test scene", testCreated, testBlocks())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	entries, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, Entry{
		MetaID:     "chat-PR001",
		ChatID:     "chat",
		BlockIndex: 1,
		Scene:      "Test scene",
		BranchType: "multi",
		Branches:   2,
		Mainline:   false,
		Created:    testCreated,
	}, entries[0])
	assert.Equal(t, "chat-PR002", entries[1].MetaID)
	assert.True(t, entries[1].Mainline)
	assert.Equal(t, "single", entries[1].BranchType)
}

func TestListFiltersByChat(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	_, err := store.Put(ctx, "alpha", "s", testCreated, testBlocks())
	require.NoError(t, err)
	_, err = store.Put(ctx, "beta", "s", testCreated, testBlocks()[:1])
	require.NoError(t, err)

	entries, err := store.List(ctx, "beta")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "beta-PR001", entries[0].MetaID)

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestPutReplacesExisting(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	_, err := store.Put(ctx, "chat", "old scene", testCreated, testBlocks())
	require.NoError(t, err)
	_, err = store.Put(ctx, "chat", "new scene", testCreated, testBlocks())
	require.NoError(t, err)

	entries, err := store.List(ctx, "chat")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, "new scene", e.Scene)
	}
}

func TestSearch(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	_, err := store.Put(ctx, "chat", "s", testCreated, testBlocks())
	require.NoError(t, err)

	results, err := store.Search(ctx, "mountains")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "chat-PR002", results[0].MetaID)
	assert.Equal(t, "and mountains", results[0].PromptText)

	none, err := store.Search(ctx, "oceans")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSearchFindsBranchContent(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	// A block whose only response text lives in branches.
	blocks := []types.PromptBlock{
		{
			PromptText: "what flies",
			Branches: []types.BranchResponse{
				{Index: 1, Content: "gliders ride thermals"},
				{Index: 2, Content: "kites need wind"},
			},
		},
	}
	_, err := store.Put(ctx, "chat", "s", testCreated, blocks)
	require.NoError(t, err)

	results, err := store.Search(ctx, "thermals")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "chat-PR001", results[0].MetaID)

	results, err = store.Search(ctx, "kites")
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearchRespectsMaxResults(t *testing.T) {
	store, err := NewStore(types.CatalogConfig{CatalogDir: t.TempDir(), MaxResults: 1})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	ctx := context.Background()

	blocks := []types.PromptBlock{
		{PromptText: "shared keyword one"},
		{PromptText: "shared keyword two"},
	}
	_, err = store.Put(ctx, "chat", "s", testCreated, blocks)
	require.NoError(t, err)

	results, err := store.Search(ctx, "shared")
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestGet(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	blocks := testBlocks()
	_, err := store.Put(ctx, "chat", "s", testCreated, blocks)
	require.NoError(t, err)

	rendered, err := store.Get(ctx, "chat-PR002")
	require.NoError(t, err)
	assert.Equal(t, exchange.Render(blocks[1], 2, "chat", "s", testCreated), rendered)

	_, err = store.Get(ctx, "chat-PR099")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
