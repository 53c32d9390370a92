// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/exchange-engine/internal/catalog"
	"github.com/pdiddy/exchange-engine/internal/transcript"
	"github.com/pdiddy/exchange-engine/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the local exchange catalog (store, list, search, show)",
	Long: `Catalog keeps a SQLite index of rendered exchange blocks. Use subcommands
to ingest a transcript, list cataloged blocks, search prompt and response
text, or print a stored block.`,
}

// catalogConfig builds the store configuration from flags and viper.
func catalogConfig(cmd *cobra.Command) types.CatalogConfig {
	dir, _ := cmd.Flags().GetString("catalog-dir")
	if !cmd.Flags().Changed("catalog-dir") && viper.IsSet("catalog.dir") {
		dir = viper.GetString("catalog.dir")
	}
	return types.CatalogConfig{
		CatalogDir: dir,
		MaxResults: viper.GetInt("catalog.max_results"),
	}
}

// --- store subcommand ---

var catalogStoreCmd = &cobra.Command{
	Use:   "store [input]",
	Short: "Scan a transcript and ingest its exchange blocks",
	Long: `Store parses a marked-up transcript, renders its exchange blocks, and
ingests them into the catalog. Blocks already present for the same chat and
index are replaced.`,
	Args: cobra.ExactArgs(1),
	RunE: runCatalogStore,
}

func runCatalogStore(cmd *cobra.Command, args []string) error {
	input := args[0]
	data, err := os.ReadFile(input)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("input file not found: %s", input)
		}
		return fmt.Errorf("reading %s: %w", input, err)
	}

	blocks := transcript.Scan(string(data))
	if len(blocks) == 0 {
		return fmt.Errorf("no prompts found in %s", input)
	}

	chatID, _ := cmd.Flags().GetString("chat-id")
	if chatID == "" {
		chatID = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	}
	scene, _ := cmd.Flags().GetString("scene")

	store, err := catalog.NewStore(catalogConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	created := time.Now().UTC().Format(time.RFC3339)
	n, err := store.Put(context.Background(), chatID, scene, created, blocks)
	if err != nil {
		return err
	}
	fmt.Printf("Stored %d exchange block(s) for chat %s\n", n, chatID)
	return nil
}

// --- list subcommand ---

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cataloged exchange blocks",
	RunE:  runCatalogList,
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	store, err := catalog.NewStore(catalogConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	chatID, _ := cmd.Flags().GetString("chat-id")
	entries, err := store.List(context.Background(), chatID)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("Catalog is empty.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-24s  %-16s  %-5s  %-6s  %-8s  %s\n",
		"Meta ID", "Chat", "Index", "Type", "Branches", "Mainline")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 76))
	for _, e := range entries {
		fmt.Fprintf(os.Stdout, "%-24s  %-16s  %-5d  %-6s  %-8d  %v\n",
			e.MetaID, e.ChatID, e.BlockIndex, e.BranchType, e.Branches, e.Mainline)
	}
	return nil
}

// --- search subcommand ---

var catalogSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search over prompt and mainline text",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogSearch,
}

func runCatalogSearch(cmd *cobra.Command, args []string) error {
	store, err := catalog.NewStore(catalogConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.Search(context.Background(), args[0])
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	for i, r := range results {
		prompt := r.PromptText
		if len(prompt) > 60 {
			prompt = prompt[:60] + "..."
		}
		fmt.Fprintf(os.Stdout, "%2d. %-24s  %s\n", i+1, r.MetaID, strings.ReplaceAll(prompt, "\n", " "))
	}
	return nil
}

// --- show subcommand ---

var catalogShowCmd = &cobra.Command{
	Use:   "show [meta-id]",
	Short: "Print the stored rendered block for a meta id",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogShow,
}

func runCatalogShow(cmd *cobra.Command, args []string) error {
	store, err := catalog.NewStore(catalogConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	rendered, err := store.Get(context.Background(), args[0])
	if err != nil {
		return err
	}
	fmt.Println(rendered)
	return nil
}

func init() {
	catalogCmd.PersistentFlags().String("catalog-dir", "catalog", "base directory for the exchange catalog")

	catalogStoreCmd.Flags().String("chat-id", "", "override the chat identifier (defaults to input filename stem)")
	catalogStoreCmd.Flags().String("scene", "Untitled scene", "scene description for the stored blocks")

	catalogListCmd.Flags().String("chat-id", "", "restrict the listing to one chat")
	catalogListCmd.Flags().Bool("json", false, "output entries as JSON")

	catalogSearchCmd.Flags().Bool("json", false, "output results as JSON")

	catalogCmd.AddCommand(catalogStoreCmd, catalogListCmd, catalogSearchCmd, catalogShowCmd)
	rootCmd.AddCommand(catalogCmd)
}
