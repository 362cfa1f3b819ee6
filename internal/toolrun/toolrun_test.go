// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package toolrun

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/pdiddy/hymnal-engine/pkg/types"
)

// call records one RunPiped invocation on the fake executor.
type call struct {
	name  string
	args  []string
	stdin string
}

// fakeExecutor scripts LookPath and RunPiped behavior.
type fakeExecutor struct {
	missing   map[string]bool
	calls     []call
	renderOut string
	renderErr error
	recogOut  string
	recogErr  error
}

func (f *fakeExecutor) LookPath(file string) (string, error) {
	if f.missing[file] {
		return "", errors.New("executable file not found in $PATH")
	}
	return "/usr/bin/" + file, nil
}

func (f *fakeExecutor) RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error {
	c := call{name: name, args: args}
	if stdin != nil {
		data, _ := io.ReadAll(stdin)
		c.stdin = string(data)
	}
	f.calls = append(f.calls, c)

	switch name {
	case binRender:
		if f.renderErr != nil {
			return f.renderErr
		}
		fmt.Fprint(stdout, f.renderOut)
	case binRecognize:
		if f.recogErr != nil {
			return f.recogErr
		}
		fmt.Fprint(stdout, f.recogOut)
	}
	return nil
}

func TestDetect(t *testing.T) {
	eng, err := detect(&fakeExecutor{})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if eng.Name() != "pdftoppm+tesseract" {
		t.Errorf("Name = %q", eng.Name())
	}
}

func TestDetect_MissingBinary(t *testing.T) {
	tests := []string{binRender, binRecognize}
	for _, bin := range tests {
		t.Run(bin, func(t *testing.T) {
			_, err := detect(&fakeExecutor{missing: map[string]bool{bin: true}})
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), bin) {
				t.Errorf("error %q does not name the missing binary", err)
			}
		})
	}
}

func TestRecognizePage(t *testing.T) {
	fake := &fakeExecutor{renderOut: "PNGDATA", recogOut: "Amazing grace\n"}
	eng, err := detect(fake)
	if err != nil {
		t.Fatal(err)
	}

	text, err := eng.RecognizePage(context.Background(), "book.pdf", 4, types.OCRConfig{
		Languages:   "por+eng",
		PageSegMode: 6,
		DPI:         300,
	})
	if err != nil {
		t.Fatalf("RecognizePage: %v", err)
	}
	if text != "Amazing grace\n" {
		t.Errorf("text = %q", text)
	}

	if len(fake.calls) != 2 {
		t.Fatalf("got %d calls, want render then recognize", len(fake.calls))
	}

	render := fake.calls[0]
	// Page 4 (zero-based) maps to pdftoppm page 5.
	wantRender := []string{"-png", "-gray", "-r", "300", "-f", "5", "-l", "5", "book.pdf"}
	if strings.Join(render.args, " ") != strings.Join(wantRender, " ") {
		t.Errorf("render args = %v, want %v", render.args, wantRender)
	}

	recog := fake.calls[1]
	wantRecog := []string{"stdin", "stdout", "--psm", "6", "-l", "por+eng"}
	if strings.Join(recog.args, " ") != strings.Join(wantRecog, " ") {
		t.Errorf("recognize args = %v, want %v", recog.args, wantRecog)
	}
	if recog.stdin != "PNGDATA" {
		t.Errorf("recognizer stdin = %q, want rendered image bytes", recog.stdin)
	}
}

func TestRecognizePage_Defaults(t *testing.T) {
	fake := &fakeExecutor{renderOut: "PNG", recogOut: "ok"}
	eng, _ := detect(fake)

	if _, err := eng.RecognizePage(context.Background(), "book.pdf", 0, types.OCRConfig{}); err != nil {
		t.Fatal(err)
	}

	render := strings.Join(fake.calls[0].args, " ")
	if !strings.Contains(render, "-r 300") {
		t.Errorf("default DPI not applied: %s", render)
	}
	recog := strings.Join(fake.calls[1].args, " ")
	if !strings.Contains(recog, "--psm 6") {
		t.Errorf("default page segmentation mode not applied: %s", recog)
	}
	if strings.Contains(recog, "-l ") {
		t.Errorf("language flag emitted without configured languages: %s", recog)
	}
}

func TestRecognizePage_RenderFails(t *testing.T) {
	fake := &fakeExecutor{renderErr: errors.New("boom")}
	eng, _ := detect(fake)

	_, err := eng.RecognizePage(context.Background(), "book.pdf", 1, types.OCRConfig{})
	if err == nil || !strings.Contains(err.Error(), "rendering page 2") {
		t.Errorf("err = %v, want rendering failure for page 2", err)
	}
}

func TestRecognizePage_EmptyImage(t *testing.T) {
	fake := &fakeExecutor{renderOut: ""}
	eng, _ := detect(fake)

	_, err := eng.RecognizePage(context.Background(), "book.pdf", 0, types.OCRConfig{})
	if err == nil || !strings.Contains(err.Error(), "empty image") {
		t.Errorf("err = %v, want empty image failure", err)
	}
}

func TestRecognizePage_RecognizeFails(t *testing.T) {
	fake := &fakeExecutor{renderOut: "PNG", recogErr: errors.New("bad psm")}
	eng, _ := detect(fake)

	_, err := eng.RecognizePage(context.Background(), "book.pdf", 0, types.OCRConfig{})
	if err == nil || !strings.Contains(err.Error(), "recognizing page 1") {
		t.Errorf("err = %v, want recognition failure", err)
	}
}
