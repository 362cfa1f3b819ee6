// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// FileStatus is the outcome of processing one input file.
type FileStatus string

const (
	StatusSuccess FileStatus = "success"
	StatusFailed  FileStatus = "failed"
	StatusSkipped FileStatus = "skipped"
)

// FileReport holds per-file extraction counts for the batch report.
type FileReport struct {
	// File is the input filename (base name, not the full path).
	File string `json:"file" yaml:"file"`

	// Status records whether the file was extracted, skipped, or failed.
	Status FileStatus `json:"status" yaml:"status"`

	// OutputDir is the folder the export files were written to.
	OutputDir string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`

	// Pages is the number of pages processed.
	Pages int `json:"pages" yaml:"pages"`

	// OCRPages is how many pages fell back to OCR.
	OCRPages int `json:"ocr_pages" yaml:"ocr_pages"`

	// Songs is the number of songs that survived validation.
	Songs int `json:"songs" yaml:"songs"`

	// Verses is the total verse count across surviving songs.
	Verses int `json:"verses" yaml:"verses"`

	// NotationLines is how many lines the notation filter removed.
	NotationLines int `json:"notation_lines" yaml:"notation_lines"`

	// Rejected counts entities (songs, verses, choruses) the validator
	// dropped.
	Rejected int `json:"rejected" yaml:"rejected"`

	// Warnings lists recoverable problems (empty pages, OCR timeouts).
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	// Error is the failure message for a failed file.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}
