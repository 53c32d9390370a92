// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the exchange-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the exchange-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "exchange-engine",
	Short: "Convert exported chat transcripts into structured exchange blocks",
	Long: `exchange-engine turns exported ChatGPT Markdown transcripts into fenced
exchange blocks with stable anchors, suitable for embedding in structured
notes.

Each stage is a subcommand: format rewrites a raw export into a marked-up
transcript, convert renders that transcript into exchange blocks, and
catalog keeps a searchable local index of rendered blocks.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./exchange-engine.yaml or ~/.config/exchange-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("exchange-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "exchange-engine"))
		}
	}

	viper.SetEnvPrefix("EXCHANGE_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
