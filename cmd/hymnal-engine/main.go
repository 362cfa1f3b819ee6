// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the hymnal-engine CLI.
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

// rootCmd is the base command for the hymnal-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "hymnal-engine",
	Short: "Extract structured songs from hymnal and songbook PDFs",
	Long: `hymnal-engine turns scanned or digital hymnal PDFs into structured song
records: number, title, ordered verses, and chorus. Pages with no usable
embedded text fall back to OCR; lines dominated by musical notation are
filtered out before the lyrics are assembled.

Each stage is a subcommand: fetch downloads hymnal PDFs, extract runs the
text-to-structure pipeline and writes JSON/CSV/PDF outputs, and catalog
maintains a searchable SQLite index over everything extracted.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./hymnal-engine.yaml or ~/.config/hymnal-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("hymnal-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "hymnal-engine"))
		}
	}

	viper.SetEnvPrefix("HYMNAL_ENGINE")
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
