// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report accumulates per-file extraction results and writes the
// batch report once per run.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/hymnal-engine/pkg/types"
)

// Summary aggregates the batch outcome.
type Summary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
	Skipped    int `json:"skipped"`
	TotalSongs int `json:"total_songs"`
}

// document is the on-disk report shape.
type document struct {
	Timestamp time.Time          `json:"timestamp"`
	Summary   Summary            `json:"summary"`
	Files     []types.FileReport `json:"files"`
}

// Generator collects file reports over a batch.
type Generator struct {
	files []types.FileReport
}

// New creates an empty Generator.
func New() *Generator { return &Generator{} }

// Add records one file's outcome.
func (g *Generator) Add(r types.FileReport) {
	g.files = append(g.files, r)
}

// Summary computes the aggregate counts.
func (g *Generator) Summary() Summary {
	var s Summary
	s.Total = len(g.files)
	for _, f := range g.files {
		switch f.Status {
		case types.StatusSuccess:
			s.Successful++
			s.TotalSongs += f.Songs
		case types.StatusFailed:
			s.Failed++
		case types.StatusSkipped:
			s.Skipped++
		}
	}
	return s
}

// Print writes a human-readable summary to w.
func (g *Generator) Print(w io.Writer) {
	s := g.Summary()
	fmt.Fprintf(w, "\nBatch summary: %d extracted, %d skipped, %d failed (total: %d)\n",
		s.Successful, s.Skipped, s.Failed, s.Total)
	fmt.Fprintf(w, "Songs extracted: %d\n", s.TotalSongs)

	for _, f := range g.files {
		if f.Status == types.StatusFailed {
			fmt.Fprintf(w, "  failed: %s (%s)\n", f.File, f.Error)
		}
	}
	for _, f := range g.files {
		for _, warn := range f.Warnings {
			fmt.Fprintf(w, "  warning: %s: %s\n", f.File, warn)
		}
	}
}

// Write saves the detailed report as report_<timestamp>.json under dir
// and returns the path.
func (g *Generator) Write(dir string, now time.Time) (string, error) {
	doc := document{
		Timestamp: now,
		Summary:   g.Summary(),
		Files:     g.files,
	}

	path := filepath.Join(dir, "report_"+now.Format("20060102_150405")+".json")
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding batch report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing batch report: %w", err)
	}
	return path, nil
}
