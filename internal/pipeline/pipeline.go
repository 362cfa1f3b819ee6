// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline wires the extraction stages together: page text,
// notation filter, line classifier, structure builder, validator, and
// the export writers. One Pipeline instance serves a whole batch, but
// every file gets its own builder state and report; files are fully
// independent of each other.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/hymnal-engine/internal/classify"
	"github.com/pdiddy/hymnal-engine/internal/export"
	"github.com/pdiddy/hymnal-engine/internal/notation"
	"github.com/pdiddy/hymnal-engine/internal/pdftext"
	"github.com/pdiddy/hymnal-engine/internal/report"
	"github.com/pdiddy/hymnal-engine/internal/songbook"
	"github.com/pdiddy/hymnal-engine/internal/toolrun"
	"github.com/pdiddy/hymnal-engine/pkg/types"
)

// outputSuffix names the per-file output folder: <book>_extracted/.
const outputSuffix = "_extracted"

// Pipeline holds the compiled stages shared across files.
type Pipeline struct {
	cfg        types.ExtractionConfig
	filter     *notation.Filter
	classifier *classify.Classifier
	ocr        toolrun.Engine
	writers    []export.Writer

	// now is stubbed in tests for deterministic metadata.
	now func() time.Time
}

// BatchResult holds the outcome of a batch extraction run.
type BatchResult struct {
	Extracted int
	Skipped   int
	Failed    int
}

// Total returns the total number of files processed.
func (r BatchResult) Total() int {
	return r.Extracted + r.Skipped + r.Failed
}

// HasFailures reports whether any files failed extraction.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// New compiles a Pipeline from cfg. ocr may be nil to disable the OCR
// fallback. Configuration errors (malformed notation patterns) are
// returned here and are fatal; nothing downstream can recover them.
func New(cfg types.ExtractionConfig, ocr toolrun.Engine) (*Pipeline, error) {
	filter, err := notation.New(cfg.Notation)
	if err != nil {
		return nil, fmt.Errorf("building notation filter: %w", err)
	}
	return &Pipeline{
		cfg:        cfg,
		filter:     filter,
		classifier: classify.New(cfg.Classifier),
		ocr:        ocr,
		writers:    []export.Writer{export.NewJSONWriter(), export.NewCSVWriter(), export.NewPDFWriter()},
		now:        time.Now,
	}, nil
}

// ExtractFile runs the full pipeline over one PDF and returns the
// validated book plus its report. Page-level problems become report
// warnings; only file-level problems (unreadable PDF) return an error.
func (p *Pipeline) ExtractFile(ctx context.Context, path string, w io.Writer) (types.Book, types.FileReport, error) {
	rep := types.FileReport{File: filepath.Base(path)}

	doc, err := pdftext.Open(path, p.ocr, p.cfg)
	if err != nil {
		rep.Status = types.StatusFailed
		rep.Error = err.Error()
		return types.Book{}, rep, err
	}
	defer doc.Close()

	var kept []types.Line
	pages := doc.PageCount()
	rep.Pages = pages

	for page := 0; page < pages; page++ {
		pt, pageErr := doc.PageLines(ctx, page)
		if pageErr != nil {
			rep.Warnings = append(rep.Warnings, pageErr.Error())
		}
		if pt.Source == types.SourceOCR {
			rep.OCRPages++
		}
		if len(pt.Lines) == 0 {
			if pageErr == nil {
				rep.Warnings = append(rep.Warnings, fmt.Sprintf("page %d yielded no text", page+1))
			}
			continue
		}

		lines := make([]types.Line, 0, len(pt.Lines))
		for i, text := range pt.Lines {
			lines = append(lines, types.Line{
				Text:   text,
				Page:   page,
				Index:  i,
				Source: pt.Source,
			})
		}
		pageKept, removed := p.filter.Split(lines)
		rep.NotationLines += len(removed)
		kept = append(kept, pageKept...)
	}

	// Classification and structure building run over the whole document
	// stream: songs cross page boundaries.
	classified := p.classifier.ClassifyAll(kept)
	built := songbook.Build(classified)
	book, rejections := songbook.Validate(built, p.cfg.Validation)

	rep.Rejected = len(rejections)
	for _, r := range rejections {
		rep.Warnings = append(rep.Warnings, r.String())
	}
	rep.Songs = len(book.Songs)
	for _, s := range book.Songs {
		rep.Verses += len(s.Verses)
	}
	rep.Status = types.StatusSuccess

	fmt.Fprintf(w, "extracted: %s (%d songs, %d verses, %d notation lines removed)\n",
		rep.File, rep.Songs, rep.Verses, rep.NotationLines)
	return book, rep, nil
}

// WriteOutputs renders every configured format into the file's output
// folder next to the source PDF and returns the folder path.
func (p *Pipeline) WriteOutputs(book types.Book, pdfPath string, w io.Writer) (string, error) {
	base := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	outDir := filepath.Join(filepath.Dir(pdfPath), base+outputSuffix)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output folder: %w", err)
	}

	snap := export.NewSnapshot(book, p.now())
	for _, writer := range p.writers {
		data, err := writer.Render(snap)
		if err != nil {
			return "", err
		}
		name := base + outputSuffix + writer.Extension()
		if err := os.WriteFile(filepath.Join(outDir, name), data, 0o644); err != nil {
			return "", fmt.Errorf("writing %s: %w", name, err)
		}
		fmt.Fprintf(w, "  wrote %s\n", name)
	}
	return outDir, nil
}

// OutputExists reports whether the PDF already has an output folder, in
// which case batch runs skip it.
func OutputExists(pdfPath string) bool {
	base := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	_, err := os.Stat(filepath.Join(filepath.Dir(pdfPath), base+outputSuffix))
	return err == nil
}

// ExtractBatch processes the given PDFs in order, writing per-file
// status to w. Individual failures are recorded and the batch
// continues. The returned generator holds every file's report.
func (p *Pipeline) ExtractBatch(ctx context.Context, paths []string, force bool, w io.Writer) (BatchResult, *report.Generator) {
	var result BatchResult
	gen := report.New()

	for _, path := range paths {
		if !force && OutputExists(path) {
			fmt.Fprintf(w, "skipped: %s (already extracted)\n", filepath.Base(path))
			gen.Add(types.FileReport{File: filepath.Base(path), Status: types.StatusSkipped})
			result.Skipped++
			continue
		}

		book, rep, err := p.ExtractFile(ctx, path, w)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", filepath.Base(path), err)
			gen.Add(rep)
			result.Failed++
			continue
		}

		outDir, err := p.WriteOutputs(book, path, w)
		if err != nil {
			rep.Status = types.StatusFailed
			rep.Error = err.Error()
			fmt.Fprintf(w, "failed:  %s (%v)\n", filepath.Base(path), err)
			gen.Add(rep)
			result.Failed++
			continue
		}
		rep.OutputDir = filepath.Base(outDir)
		gen.Add(rep)
		result.Extracted++
	}

	gen.Print(w)
	return result, gen
}

// ScanDir lists the PDF files directly under dir, sorted by name.
func ScanDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}
