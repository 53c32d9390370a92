// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog persists rendered exchange blocks in a local SQLite
// database so anchors can be listed and searched across chats.
//
// The search index is an FTS5 virtual table, so go-sqlite3 must be compiled
// with the sqlite_fts5 build tag (the mage Build and Test targets pass it).
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/exchange-engine/internal/exchange"
	"github.com/pdiddy/exchange-engine/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "exchanges.db"
)

// Store manages the exchange catalog SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// NewStore opens or creates the catalog database at
// catalogDir/index/exchanges.db, creating the schema if it does not exist.
func NewStore(cfg types.CatalogConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.CatalogDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS exchanges (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			meta_id TEXT NOT NULL UNIQUE,
			chat_id TEXT NOT NULL,
			block_index INTEGER NOT NULL,
			scene TEXT,
			branch_type TEXT NOT NULL,
			prompt_id TEXT NOT NULL,
			prompt_text TEXT,
			mainline TEXT,
			responses TEXT,
			created TEXT,
			rendered TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_exchanges_chat_id ON exchanges(chat_id)`,
		`CREATE TABLE IF NOT EXISTS branches (
			meta_id TEXT NOT NULL REFERENCES exchanges(meta_id) ON DELETE CASCADE,
			branch_index INTEGER NOT NULL,
			content TEXT,
			PRIMARY KEY (meta_id, branch_index)
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='exchanges_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE exchanges_fts USING fts5(prompt_text, responses, content=exchanges, content_rowid=rowid)`,
			`CREATE TRIGGER exchanges_ai AFTER INSERT ON exchanges BEGIN
				INSERT INTO exchanges_fts(rowid, prompt_text, responses) VALUES (new.rowid, new.prompt_text, new.responses);
			END`,
			`CREATE TRIGGER exchanges_ad AFTER DELETE ON exchanges BEGIN
				INSERT INTO exchanges_fts(exchanges_fts, rowid, prompt_text, responses) VALUES('delete', old.rowid, old.prompt_text, old.responses);
			END`,
			`CREATE TRIGGER exchanges_au AFTER UPDATE ON exchanges BEGIN
				INSERT INTO exchanges_fts(exchanges_fts, rowid, prompt_text, responses) VALUES('delete', old.rowid, old.prompt_text, old.responses);
				INSERT INTO exchanges_fts(rowid, prompt_text, responses) VALUES (new.rowid, new.prompt_text, new.responses);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Put renders and stores every block of a chat. Existing rows with the same
// meta id are replaced, so re-storing a chat is an update, not an error.
// It returns the number of blocks stored.
func (s *Store) Put(ctx context.Context, chatID, scene, created string, blocks []types.PromptBlock) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for i, block := range blocks {
		index := i + 1
		ids := exchange.DeriveIDs(chatID, index)
		rendered := exchange.Render(block, index, chatID, scene, created)

		mainline := sql.NullString{}
		if block.Mainline != nil {
			mainline = sql.NullString{String: *block.Mainline, Valid: true}
		}

		responses := responseText(block)

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM branches WHERE meta_id = ?`, ids.Meta); err != nil {
			return 0, fmt.Errorf("clearing branches for %s: %w", ids.Meta, err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM exchanges WHERE meta_id = ?`, ids.Meta); err != nil {
			return 0, fmt.Errorf("clearing exchange %s: %w", ids.Meta, err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO exchanges
				(meta_id, chat_id, block_index, scene, branch_type, prompt_id, prompt_text, mainline, responses, created, rendered)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			ids.Meta, chatID, index, scene, exchange.BranchType(block), ids.Prompt,
			block.PromptText, mainline, responses, created, rendered); err != nil {
			return 0, fmt.Errorf("storing exchange %s: %w", ids.Meta, err)
		}

		for _, br := range block.Branches {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO branches (meta_id, branch_index, content) VALUES (?, ?, ?)`,
				ids.Meta, br.Index, br.Content); err != nil {
				return 0, fmt.Errorf("storing branch %s-%s: %w", ids.Meta, br.ResponseIDSuffix(), err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return len(blocks), nil
}

// responseText concatenates every response body of a block, branches first
// then mainline, for the full-text index.
func responseText(block types.PromptBlock) string {
	var parts []string
	for _, br := range block.Branches {
		if br.Content != "" {
			parts = append(parts, br.Content)
		}
	}
	if block.Mainline != nil && *block.Mainline != "" {
		parts = append(parts, *block.Mainline)
	}
	return strings.Join(parts, "\n\n")
}

// Entry is one cataloged exchange block as returned by List.
type Entry struct {
	MetaID     string `json:"meta_id"`
	ChatID     string `json:"chat_id"`
	BlockIndex int    `json:"block_index"`
	Scene      string `json:"scene"`
	BranchType string `json:"branch_type"`
	Branches   int    `json:"branches"`
	Mainline   bool   `json:"mainline"`
	Created    string `json:"created"`
}

// List returns cataloged exchanges ordered by chat id then block index.
// A non-empty chatID restricts the listing to that chat.
func (s *Store) List(ctx context.Context, chatID string) ([]Entry, error) {
	query := `SELECT e.meta_id, e.chat_id, e.block_index, e.scene, e.branch_type,
			(SELECT count(*) FROM branches b WHERE b.meta_id = e.meta_id),
			e.mainline IS NOT NULL, e.created
		FROM exchanges e`
	var args []any
	if chatID != "" {
		query += ` WHERE e.chat_id = ?`
		args = append(args, chatID)
	}
	query += ` ORDER BY e.chat_id, e.block_index`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing exchanges: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.MetaID, &e.ChatID, &e.BlockIndex, &e.Scene,
			&e.BranchType, &e.Branches, &e.Mainline, &e.Created); err != nil {
			return nil, fmt.Errorf("scanning exchange row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SearchResult is one full-text match over prompt and mainline text.
type SearchResult struct {
	Entry
	PromptText string `json:"prompt_text"`
}

// Search runs an FTS5 query over prompt text and every response body
// (branches and mainline), ranked by relevance and capped at the store's
// result limit.
func (s *Store) Search(ctx context.Context, query string) ([]SearchResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.meta_id, e.chat_id, e.block_index, e.scene, e.branch_type,
			(SELECT count(*) FROM branches b WHERE b.meta_id = e.meta_id),
			e.mainline IS NOT NULL, e.created, e.prompt_text
		FROM exchanges_fts
		JOIN exchanges e ON e.rowid = exchanges_fts.rowid
		WHERE exchanges_fts MATCH ?
		ORDER BY exchanges_fts.rank
		LIMIT ?`, query, s.maxResults)
	if err != nil {
		return nil, fmt.Errorf("searching exchanges: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.MetaID, &r.ChatID, &r.BlockIndex, &r.Scene,
			&r.BranchType, &r.Branches, &r.Mainline, &r.Created, &r.PromptText); err != nil {
			return nil, fmt.Errorf("scanning search row: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Get returns the stored rendered text for one exchange block.
func (s *Store) Get(ctx context.Context, metaID string) (string, error) {
	var rendered string
	err := s.db.QueryRowContext(ctx,
		`SELECT rendered FROM exchanges WHERE meta_id = ?`, metaID).Scan(&rendered)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("exchange %s not found", metaID)
	}
	if err != nil {
		return "", fmt.Errorf("loading exchange %s: %w", metaID, err)
	}
	return rendered, nil
}
