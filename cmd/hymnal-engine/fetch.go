// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/hymnal-engine/internal/fetch"
	"github.com/pdiddy/hymnal-engine/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultDelay     = 1 * time.Second
	defaultUserAgent = "hymnal-engine/0.1"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [urls...]",
	Short: "Download hymnal PDFs into the books directory",
	Long: `Fetch downloads hymnal PDFs from the given URLs into <books-dir>/raw/
and writes a metadata sidecar per book. Existing books are skipped, so a
URL list can be re-run safely.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	fetchCmd.Flags().Duration("delay", 0, "delay between consecutive downloads (default 1s)")
	fetchCmd.Flags().String("books-dir", "books", "base directory for books")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more hymnal PDF URLs")
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	delay, _ := cmd.Flags().GetDuration("delay")
	if delay == 0 {
		delay = defaultDelay
	}
	booksDir, _ := cmd.Flags().GetString("books-dir")

	cfg := types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		DownloadDelay: delay,
		BooksDir:      booksDir,
	}

	client := &http.Client{Timeout: cfg.Timeout}

	result := fetch.FetchBatch(context.Background(), client, args, cfg, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d book(s) failed to download", result.Failed)
	}
	return nil
}
