package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/exchange-engine/internal/emit"
	"github.com/pdiddy/exchange-engine/internal/reflow"
)

var formatCmd = &cobra.Command{
	Use:   "format [input]",
	Short: "Rewrite a raw chat export into a heading-marked transcript",
	Long: `Format prepares a raw chat export for conversion: it inserts a heading
before the first turn and promotes later "You said:" / "ChatGPT said:" label
lines to headings. The result is the marked-up transcript that convert
consumes.`,
	Args: cobra.ExactArgs(1),
	RunE: runFormat,
}

func runFormat(cmd *cobra.Command, args []string) error {
	input := args[0]
	outputPath, _ := cmd.Flags().GetString("output")
	inPlace, _ := cmd.Flags().GetBool("in-place")

	opts := emit.Options{
		InputPath:  input,
		OutputPath: outputPath,
		InPlace:    inPlace,
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	reflowOpts := reflow.DefaultOptions()
	reflowOpts.FirstLevel, _ = cmd.Flags().GetInt("first-level")
	reflowOpts.SubLevel, _ = cmd.Flags().GetInt("sub-level")
	reflowOpts.FirstLabel, _ = cmd.Flags().GetString("first-label")
	reflowOpts.SubLabel, _ = cmd.Flags().GetString("sub-label")
	if err := reflowOpts.Validate(); err != nil {
		return err
	}

	data, err := os.ReadFile(input)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("input file not found: %s", input)
		}
		return fmt.Errorf("reading %s: %w", input, err)
	}

	// Exact output keeps the input's trailing-newline parity.
	return emit.EmitExact(opts, reflow.Reflow(string(data), reflowOpts), os.Stdout)
}

func init() {
	formatCmd.Flags().StringP("output", "o", "", "destination file for the marked-up transcript")
	formatCmd.Flags().Bool("in-place", false, "overwrite the input file with the marked-up transcript")
	formatCmd.Flags().Int("first-level", 1, "heading level for the inserted first heading (1-6)")
	formatCmd.Flags().Int("sub-level", 2, "heading level for replaced label lines (1-6)")
	formatCmd.Flags().String("first-label", reflow.UserLabel, "label for the inserted first heading")
	formatCmd.Flags().String("sub-label", reflow.AssistantLabel, "label for replaced label lines")

	rootCmd.AddCommand(formatCmd)
}
