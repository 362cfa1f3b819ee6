// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdftext obtains page-level text from PDF files. The embedded
// text layer is tried first; pages without a usable layer fall back to
// OCR through an injected toolrun.Engine. Scanned hymnals commonly mix
// both kinds of pages in one file.
package pdftext

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/hymnal-engine/internal/toolrun"
	"github.com/pdiddy/hymnal-engine/pkg/types"
)

const (
	defaultMinEmbeddedChars = 100
	defaultPageTimeout      = 2 * time.Minute
)

// PageText is one page's ordered lines plus how they were obtained.
type PageText struct {
	Lines  []string
	Source types.TextSource
}

// Document is an open PDF ready for page-by-page text extraction.
type Document struct {
	f    *os.File
	r    *pdf.Reader
	path string
	ocr  toolrun.Engine
	cfg  types.ExtractionConfig
}

// Open opens the PDF at path. ocr may be nil, in which case pages
// without embedded text yield zero lines.
func Open(path string, ocr toolrun.Engine, cfg types.ExtractionConfig) (*Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF %s: %w", path, err)
	}
	return &Document{f: f, r: r, path: path, ocr: ocr, cfg: cfg}, nil
}

// Close releases the underlying file handle.
func (d *Document) Close() error {
	return d.f.Close()
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	return d.r.NumPage()
}

// PageLines returns the text lines of the zero-based page. The embedded
// layer is used when it yields at least MinEmbeddedChars non-whitespace
// characters; otherwise the page is OCR'd under a per-page timeout.
//
// The returned PageText always holds the best text obtained, possibly
// empty. A non-nil error is a recoverable, page-local problem the
// caller should log as a warning; it never aborts the file.
func (d *Document) PageLines(ctx context.Context, page int) (PageText, error) {
	embedded, err := d.embeddedLines(page)
	if err == nil && charCount(embedded) >= d.minEmbeddedChars() {
		return PageText{Lines: embedded, Source: types.SourceEmbedded}, nil
	}

	if d.ocr == nil || !d.cfg.OCR.Enabled {
		if err != nil {
			return PageText{Source: types.SourceEmbedded}, err
		}
		return PageText{Lines: embedded, Source: types.SourceEmbedded}, nil
	}

	ocrLines, ocrErr := d.ocrLines(ctx, page)
	if ocrErr != nil {
		// Fall back to whatever the embedded layer produced.
		return PageText{Lines: embedded, Source: types.SourceEmbedded},
			fmt.Errorf("page %d OCR failed: %w", page+1, ocrErr)
	}
	return PageText{Lines: ocrLines, Source: types.SourceOCR}, nil
}

// embeddedLines reads the page's text layer row by row.
func (d *Document) embeddedLines(page int) ([]string, error) {
	p := d.r.Page(page + 1)
	if p.V.IsNull() {
		return nil, fmt.Errorf("page %d missing from PDF", page+1)
	}
	rows, err := p.GetTextByRow()
	if err != nil {
		return nil, fmt.Errorf("reading page %d text layer: %w", page+1, err)
	}

	var lines []string
	for _, row := range rows {
		var sb strings.Builder
		for _, txt := range row.Content {
			sb.WriteString(txt.S)
		}
		if line := strings.TrimSpace(sb.String()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// ocrLines recognizes the page under the configured timeout.
func (d *Document) ocrLines(ctx context.Context, page int) ([]string, error) {
	timeout := d.cfg.OCR.PageTimeout
	if timeout <= 0 {
		timeout = defaultPageTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	text, err := d.ocr.RecognizePage(ctx, d.path, page, d.cfg.OCR)
	if err != nil {
		return nil, err
	}
	return SplitLines(text), nil
}

func (d *Document) minEmbeddedChars() int {
	if d.cfg.MinEmbeddedChars > 0 {
		return d.cfg.MinEmbeddedChars
	}
	return defaultMinEmbeddedChars
}

// SplitLines splits raw extracted text into trimmed, non-empty lines.
func SplitLines(text string) []string {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if t := strings.TrimSpace(l); t != "" {
			lines = append(lines, t)
		}
	}
	return lines
}

// charCount counts non-whitespace characters across lines.
func charCount(lines []string) int {
	n := 0
	for _, l := range lines {
		for _, r := range l {
			if !unicode.IsSpace(r) {
				n++
			}
		}
	}
	return n
}
