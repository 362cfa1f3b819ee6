// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/hymnal-engine/internal/pipeline"
	"github.com/pdiddy/hymnal-engine/internal/toolrun"
	"github.com/pdiddy/hymnal-engine/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract [pdfs...]",
	Short: "Extract structured songs from hymnal PDFs",
	Long: `Extract runs the text-to-structure pipeline over the given PDFs, or over
every PDF in the books directory when no arguments are given. Each file
produces a <name>_extracted/ folder with JSON, CSV, and songbook PDF
outputs, and the batch writes a single report file.

Pages whose embedded text layer is too thin are OCR'd when pdftoppm and
tesseract are on PATH; pass --no-ocr to disable the fallback.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("books-dir", "books", "directory scanned for PDF files")
	extractCmd.Flags().Bool("force", false, "re-extract files that already have an output folder")
	extractCmd.Flags().Bool("no-ocr", false, "disable the OCR fallback")
	extractCmd.Flags().String("languages", "", "OCR language set (default por+eng)")
	extractCmd.Flags().Duration("page-timeout", 0, "per-page OCR timeout (default 2m)")
	extractCmd.Flags().String("notation-rules", "", "YAML file with notation filter rules")

	rootCmd.AddCommand(extractCmd)
}

// extractionConfig assembles the pipeline configuration from the config
// file with flag overrides.
func extractionConfig(cmd *cobra.Command) types.ExtractionConfig {
	cfg := types.ExtractionConfig{
		BooksDir:         viper.GetString("extraction.books_dir"),
		MinEmbeddedChars: viper.GetInt("extraction.min_embedded_chars"),
		OCR: types.OCRConfig{
			Enabled:     true,
			Languages:   viper.GetString("ocr.languages"),
			PageSegMode: viper.GetInt("ocr.page_seg_mode"),
			DPI:         viper.GetInt("ocr.dpi"),
			PageTimeout: viper.GetDuration("ocr.page_timeout"),
		},
		Notation: types.NotationConfig{
			Threshold: viper.GetFloat64("notation.threshold"),
			RulesFile: viper.GetString("notation.rules_file"),
		},
		Classifier: types.ClassifierConfig{
			ChorusMarkers: viper.GetStringSlice("classifier.chorus_markers"),
		},
		Validation: types.ValidationConfig{
			MinLineChars: viper.GetInt("validation.min_line_chars"),
		},
	}

	if dir, _ := cmd.Flags().GetString("books-dir"); cmd.Flags().Changed("books-dir") || cfg.BooksDir == "" {
		cfg.BooksDir = dir
	}
	if noOCR, _ := cmd.Flags().GetBool("no-ocr"); noOCR {
		cfg.OCR.Enabled = false
	}
	if langs, _ := cmd.Flags().GetString("languages"); langs != "" {
		cfg.OCR.Languages = langs
	}
	if cfg.OCR.Languages == "" {
		cfg.OCR.Languages = "por+eng"
	}
	if timeout, _ := cmd.Flags().GetDuration("page-timeout"); timeout > 0 {
		cfg.OCR.PageTimeout = timeout
	}
	if rules, _ := cmd.Flags().GetString("notation-rules"); rules != "" {
		cfg.Notation.RulesFile = rules
	}
	return cfg
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := extractionConfig(cmd)
	force, _ := cmd.Flags().GetBool("force")

	paths := args
	if len(paths) == 0 {
		var err error
		paths, err = pipeline.ScanDir(cfg.BooksDir)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return fmt.Errorf("no PDF files found in %s", cfg.BooksDir)
		}
	}

	var ocr toolrun.Engine
	if cfg.OCR.Enabled {
		engine, err := toolrun.Detect()
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v; continuing with embedded text only\n", err)
		} else {
			ocr = engine
		}
	}

	p, err := pipeline.New(cfg, ocr)
	if err != nil {
		return err
	}

	result, gen := p.ExtractBatch(context.Background(), paths, force, os.Stdout)

	reportPath, err := gen.Write(cfg.BooksDir, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	} else {
		fmt.Fprintf(os.Stdout, "Report written to %s\n", reportPath)
	}

	if result.HasFailures() {
		return fmt.Errorf("%d file(s) failed extraction", result.Failed)
	}
	return nil
}
