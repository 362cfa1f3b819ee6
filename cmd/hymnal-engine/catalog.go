// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/hymnal-engine/internal/catalog"
	"github.com/pdiddy/hymnal-engine/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the song catalog (store, retrieve, export)",
	Long: `Catalog maintains a local SQLite index over every extracted book. Use
subcommands to ingest extraction outputs, search songs, or export.`,
}

// --- store subcommand ---

var catalogStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Ingest extraction outputs into the catalog",
	Long: `Store walks the books directory for extraction JSON files, ingests them
into a SQLite database with FTS5 indexing over titles and lyrics, and
writes an export file. Unchanged books are skipped on subsequent runs.`,
	RunE: runCatalogStore,
}

func runCatalogStore(cmd *cobra.Command, args []string) error {
	cfg, booksDir := catalogConfig(cmd)

	store, err := catalog.NewStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(context.Background(), booksDir, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d book(s) failed indexing", summary.Failed)
	}

	if summary.Indexed > 0 || summary.Updated > 0 {
		if err := store.ExportYAML(context.Background(), catalog.QueryOptions{}); err != nil {
			fmt.Fprintf(os.Stderr, "warning: export.yaml write failed: %v\n", err)
		}
	}
	return nil
}

// --- retrieve subcommand ---

var catalogRetrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Search the catalog with full-text search and filters",
	Long: `Retrieve searches songs using FTS5 full-text search over titles and
lyrics, structured filters (book, song number), or a combination.`,
	RunE: runCatalogRetrieve,
}

func runCatalogRetrieve(cmd *cobra.Command, args []string) error {
	cfg, _ := catalogConfig(cmd)
	store, err := catalog.NewStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := catalog.QueryOptions{Query: strings.Join(args, " ")}
	opts.BookID, _ = cmd.Flags().GetString("book")
	opts.Number, _ = cmd.Flags().GetString("number")
	opts.MaxResults, _ = cmd.Flags().GetInt("limit")

	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --book, or --number")
	}

	results, err := store.Retrieve(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatRetrieveOutput(results, jsonOutput)
}

func formatRetrieveOutput(results []catalog.QueryResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-20s  %-6s  %-40s  %-6s  %s\n",
		"Book", "No.", "Title", "Verses", "Chorus")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 85))

	for _, r := range results {
		book := r.BookID
		if len(book) > 20 {
			book = book[:17] + "..."
		}
		title := r.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		chorus := "-"
		switch {
		case r.HasChorus:
			chorus = "yes"
		case r.ChorusRef != "":
			chorus = "as " + r.ChorusRef
		}
		fmt.Fprintf(os.Stdout, "%-20s  %-6s  %-40s  %-6d  %s\n",
			book, r.Number, title, r.VerseCount, chorus)
	}
	return nil
}

// --- export subcommand ---

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalog to YAML or JSON",
	RunE:  runCatalogExport,
}

func runCatalogExport(cmd *cobra.Command, args []string) error {
	cfg, _ := catalogConfig(cmd)
	store, err := catalog.NewStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	format, _ := cmd.Flags().GetString("format")
	opts := catalog.QueryOptions{}
	opts.BookID, _ = cmd.Flags().GetString("book")

	switch format {
	case "yaml":
		return store.ExportYAML(context.Background(), opts)
	case "json":
		return store.ExportJSON(context.Background(), opts)
	default:
		return fmt.Errorf("unknown export format %q (yaml or json)", format)
	}
}

// catalogConfig assembles the catalog configuration from the config file
// with flag overrides.
func catalogConfig(cmd *cobra.Command) (types.CatalogConfig, string) {
	cfg := types.CatalogConfig{
		CatalogDir: viper.GetString("catalog.catalog_dir"),
		MaxResults: viper.GetInt("catalog.max_results"),
	}
	if dir, _ := cmd.Flags().GetString("catalog-dir"); cmd.Flags().Changed("catalog-dir") || cfg.CatalogDir == "" {
		cfg.CatalogDir = dir
	}

	booksDir := viper.GetString("extraction.books_dir")
	if dir, _ := cmd.Flags().GetString("books-dir"); cmd.Flags().Changed("books-dir") || booksDir == "" {
		booksDir = dir
	}
	return cfg, booksDir
}

func init() {
	for _, c := range []*cobra.Command{catalogStoreCmd, catalogRetrieveCmd, catalogExportCmd} {
		c.Flags().String("catalog-dir", "catalog", "base directory for the catalog (contains index/)")
		c.Flags().String("books-dir", "books", "directory holding extraction outputs")
	}

	catalogRetrieveCmd.Flags().String("book", "", "filter by book identifier")
	catalogRetrieveCmd.Flags().String("number", "", "filter by song number")
	catalogRetrieveCmd.Flags().Int("limit", 0, "maximum results (default 20)")
	catalogRetrieveCmd.Flags().Bool("json", false, "output results as JSON")

	catalogExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	catalogExportCmd.Flags().String("book", "", "filter by book identifier")

	catalogCmd.AddCommand(catalogStoreCmd, catalogRetrieveCmd, catalogExportCmd)
	rootCmd.AddCommand(catalogCmd)
}
