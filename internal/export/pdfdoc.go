// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// PDFWriter renders the document shape: book title heading, then each
// song on its own page with stanza subheadings.
type PDFWriter struct{}

// NewPDFWriter creates a PDFWriter.
func NewPDFWriter() *PDFWriter { return &PDFWriter{} }

// Extension returns ".pdf".
func (w *PDFWriter) Extension() string { return ".pdf" }

// Render produces the songbook PDF.
func (w *PDFWriter) Render(s Snapshot) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	if s.Metadata.Title != "" {
		pdf.SetFont("Helvetica", "B", 20)
		pdf.MultiCell(0, 10, tr(s.Metadata.Title), "", "C", false)
		pdf.Ln(6)
	}

	for i, song := range s.Songs {
		// Page break between songs; the first song shares the title page.
		if i > 0 || s.Metadata.Title != "" {
			pdf.AddPage()
		}

		heading := song.Title
		if song.Number != "" {
			heading = fmt.Sprintf("%s. %s", song.Number, song.Title)
		}
		pdf.SetFont("Helvetica", "B", 14)
		pdf.MultiCell(0, 8, tr(heading), "", "L", false)
		pdf.Ln(2)

		for _, v := range song.Verses {
			pdf.SetFont("Helvetica", "B", 11)
			pdf.MultiCell(0, 6, tr("Stanza "+v.Number), "", "L", false)
			pdf.SetFont("Helvetica", "", 11)
			for _, line := range v.Lines {
				pdf.MultiCell(0, 5.5, tr(line), "", "L", false)
			}
			pdf.Ln(3)
		}

		if song.Chorus != nil {
			pdf.SetFont("Helvetica", "B", 11)
			pdf.MultiCell(0, 6, tr("Chorus"), "", "L", false)
			pdf.SetFont("Helvetica", "I", 11)
			for _, line := range song.Chorus.Lines {
				pdf.MultiCell(0, 5.5, tr(line), "", "L", false)
			}
			pdf.Ln(3)
		}
		if song.ChorusRef != "" {
			pdf.SetFont("Helvetica", "I", 10)
			pdf.MultiCell(0, 5.5, tr("Chorus: as song "+song.ChorusRef), "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering songbook PDF: %w", err)
	}
	return buf.Bytes(), nil
}
