// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/exchange-engine/internal/emit"
	"github.com/pdiddy/exchange-engine/internal/exchange"
	"github.com/pdiddy/exchange-engine/internal/transcript"
)

var convertCmd = &cobra.Command{
	Use:   "convert [input]",
	Short: "Convert a marked-up transcript into fenced exchange blocks",
	Long: `Convert parses a transcript delimited by "# You said:" markers into
prompt blocks and renders each as a fenced exchange block with stable
anchors. Output goes to stdout unless --output or --in-place is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	input := args[0]
	outputPath, _ := cmd.Flags().GetString("output")
	inPlace, _ := cmd.Flags().GetBool("in-place")
	appendMode, _ := cmd.Flags().GetBool("append")

	opts := emit.Options{
		InputPath:  input,
		OutputPath: outputPath,
		InPlace:    inPlace,
		Append:     appendMode,
	}
	if err := opts.Validate(); err != nil {
		return err
	}

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
	if !cmd.Flags().Changed("scene") && viper.IsSet("convert.scene") {
		scene = viper.GetString("convert.scene")
	}

	timestamp := time.Now().UTC().Format(time.RFC3339)
	text := exchange.RenderAll(blocks, chatID, scene, timestamp)

	if manifestPath, _ := cmd.Flags().GetString("manifest"); manifestPath != "" {
		m := exchange.BuildManifest(blocks, chatID, scene, timestamp)
		if err := exchange.WriteManifest(manifestPath, m); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote manifest: %s\n", manifestPath)
	}

	return emit.Emit(opts, text, os.Stdout)
}

func init() {
	convertCmd.Flags().StringP("output", "o", "", "destination Markdown file for the exchange blocks")
	convertCmd.Flags().String("chat-id", "", "override the chat identifier (defaults to input filename stem)")
	convertCmd.Flags().String("scene", "Untitled scene", "scene description to place in the meta section")
	convertCmd.Flags().Bool("in-place", false, "overwrite the input file with the generated exchange blocks")
	convertCmd.Flags().Bool("append", false, "append the generated blocks to the output file")
	convertCmd.Flags().String("manifest", "", "write a YAML run manifest to this path")

	rootCmd.AddCommand(convertCmd)
}
