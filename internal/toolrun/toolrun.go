// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package toolrun detects and executes the external OCR toolchain. Page
// rasterization and recognition are collaborators, not code we own:
// pdftoppm renders a single PDF page to an image and tesseract turns
// that image into plain text.
package toolrun

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"

	"github.com/pdiddy/hymnal-engine/pkg/types"
)

const (
	binRender    = "pdftoppm"
	binRecognize = "tesseract"
)

// Engine runs the OCR toolchain for single pages.
type Engine interface {
	// Name returns a description of the toolchain binaries.
	Name() string

	// RecognizePage renders page (zero-based) of the PDF at path and
	// recognizes it, returning the raw text. The context bounds the
	// whole render-plus-recognize step.
	RecognizePage(ctx context.Context, path string, page int, cfg types.OCRConfig) (string, error)
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	return cmd.Run()
}

// engine implements Engine over two external binaries.
type engine struct {
	render    string
	recognize string
	exec      executor
}

func (e *engine) Name() string {
	return e.render + "+" + e.recognize
}

// RecognizePage pipes pdftoppm's PNG output straight into tesseract.
// Image preprocessing (grayscale, thresholding) is delegated to
// tesseract's own pipeline; we only pass parameters through.
func (e *engine) RecognizePage(ctx context.Context, path string, page int, cfg types.OCRConfig) (string, error) {
	dpi := cfg.DPI
	if dpi <= 0 {
		dpi = 300
	}
	psm := cfg.PageSegMode
	if psm <= 0 {
		psm = 6
	}

	// pdftoppm pages are one-based.
	p := strconv.Itoa(page + 1)
	renderArgs := []string{"-png", "-gray", "-r", strconv.Itoa(dpi), "-f", p, "-l", p, path}

	var img bytes.Buffer
	if err := e.exec.RunPiped(ctx, e.render, renderArgs, nil, &img); err != nil {
		return "", fmt.Errorf("rendering page %d of %s: %w", page+1, path, err)
	}
	if img.Len() == 0 {
		return "", fmt.Errorf("rendering page %d of %s: empty image", page+1, path)
	}

	recognizeArgs := []string{"stdin", "stdout", "--psm", strconv.Itoa(psm)}
	if cfg.Languages != "" {
		recognizeArgs = append(recognizeArgs, "-l", cfg.Languages)
	}

	var out bytes.Buffer
	if err := e.exec.RunPiped(ctx, e.recognize, recognizeArgs, &img, &out); err != nil {
		return "", fmt.Errorf("recognizing page %d of %s: %w", page+1, path, err)
	}
	return out.String(), nil
}

var defaultExec executor = &osExecutor{}

// Detect verifies that both OCR binaries exist on PATH and returns an
// Engine using them. Callers treat an error as "no OCR available" and
// continue with embedded text only.
func Detect() (Engine, error) {
	return detect(defaultExec)
}

func detect(exec executor) (Engine, error) {
	for _, bin := range []string{binRender, binRecognize} {
		if _, err := exec.LookPath(bin); err != nil {
			return nil, fmt.Errorf("OCR toolchain unavailable: %s not found on PATH", bin)
		}
	}
	return &engine{render: binRender, recognize: binRecognize, exec: exec}, nil
}
