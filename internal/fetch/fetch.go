// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch downloads hymnal PDFs into the books directory and
// records a metadata sidecar per book. Already-downloaded books are
// skipped so a batch can be re-run safely.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/hymnal-engine/internal/httputil"
	"github.com/pdiddy/hymnal-engine/pkg/types"
)

const (
	rawDir      = "raw"
	metadataDir = "metadata"
)

// BookFile records where a downloaded hymnal came from.
type BookFile struct {
	// Slug is the filename-safe identifier derived from the URL.
	Slug string `json:"slug" yaml:"slug"`

	// SourceURL is the URL the PDF was downloaded from.
	SourceURL string `json:"source_url" yaml:"source_url"`

	// PDFPath is the local filesystem path to the PDF.
	PDFPath string `json:"pdf_path" yaml:"pdf_path"`

	// FetchedAt is when the download completed.
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`
}

// BatchResult holds the outcome of a batch fetch run.
type BatchResult struct {
	Downloaded int
	Skipped    int
	Failed     int
}

// Total returns the total number of URLs processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// HasFailures reports whether any downloads failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Slug derives a filename-safe identifier from a book URL: the base
// path segment without extension, lowercased, with unsafe runes mapped
// to dashes.
func Slug(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing URL %q: %w", rawURL, err)
	}
	base := strings.TrimSuffix(filepath.Base(u.Path), filepath.Ext(u.Path))
	if base == "" || base == "." || base == "/" {
		return "", fmt.Errorf("cannot derive a book name from %q", rawURL)
	}

	var sb strings.Builder
	for _, r := range strings.ToLower(base) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('-')
		}
	}
	return strings.Trim(sb.String(), "-"), nil
}

// FetchBook downloads one hymnal PDF. If the PDF already exists on disk
// the download is skipped; the skipped return value reports this.
func FetchBook(ctx context.Context, client *http.Client, rawURL string, cfg types.FetchConfig, w io.Writer) (book *BookFile, skipped bool, err error) {
	slug, err := Slug(rawURL)
	if err != nil {
		return nil, false, err
	}

	pdfPath := filepath.Join(cfg.BooksDir, rawDir, slug+".pdf")
	metaPath := filepath.Join(cfg.BooksDir, metadataDir, slug+".yaml")

	if _, statErr := os.Stat(pdfPath); statErr == nil {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", slug)
		b, readErr := readMetadata(metaPath)
		if readErr != nil {
			b = &BookFile{Slug: slug, SourceURL: rawURL, PDFPath: pdfPath}
		}
		return b, true, nil
	}

	for _, dir := range []string{
		filepath.Join(cfg.BooksDir, rawDir),
		filepath.Join(cfg.BooksDir, metadataDir),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, false, fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	fmt.Fprintf(w, "downloading: %s\n", slug)
	if err := downloadFile(ctx, client, rawURL, pdfPath, cfg); err != nil {
		return nil, false, fmt.Errorf("downloading %s: %w", slug, err)
	}

	b := &BookFile{
		Slug:      slug,
		SourceURL: rawURL,
		PDFPath:   pdfPath,
		FetchedAt: time.Now(),
	}
	if err := writeMetadata(b, metaPath); err != nil {
		return nil, false, fmt.Errorf("writing metadata for %s: %w", slug, err)
	}
	return b, false, nil
}

// FetchBatch downloads multiple books, printing per-item status and
// returning a summary. It continues after individual failures and
// applies a delay between consecutive downloads.
func FetchBatch(ctx context.Context, client *http.Client, urls []string, cfg types.FetchConfig, w io.Writer) BatchResult {
	var result BatchResult
	for i, u := range urls {
		if i > 0 && cfg.DownloadDelay > 0 {
			time.Sleep(cfg.DownloadDelay)
		}
		_, wasSkipped, err := FetchBook(ctx, client, u, cfg, w)
		switch {
		case err != nil:
			fmt.Fprintf(w, "failed:  %s (%v)\n", u, err)
			result.Failed++
		case wasSkipped:
			result.Skipped++
		default:
			result.Downloaded++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		result.Downloaded, result.Skipped, result.Failed, result.Total())
	return result
}

// downloadFile streams the URL to a temp file and renames on success so
// a partial download never looks like a finished book.
func downloadFile(ctx context.Context, client *http.Client, rawURL, dest string, cfg types.FetchConfig) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}

func readMetadata(path string) (*BookFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var b BookFile
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parsing metadata %s: %w", path, err)
	}
	return &b, nil
}

func writeMetadata(b *BookFile, path string) error {
	data, err := yaml.Marshal(b)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
