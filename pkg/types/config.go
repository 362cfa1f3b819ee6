// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "hymnal-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchConfig holds settings for downloading hymnal PDFs.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// DownloadDelay is the delay between consecutive downloads (default 1s).
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay"`

	// BooksDir is the base directory for books (contains raw/, metadata/).
	BooksDir string `json:"books_dir" yaml:"books_dir"`
}

// OCRConfig holds settings for the OCR fallback path. Rendering and
// recognition are delegated to external tools; these fields are the
// parameters handed to them.
type OCRConfig struct {
	// Enabled controls whether OCR fallback is attempted at all. When
	// false, pages without an embedded text layer yield zero lines.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Languages is the recognition language set (e.g. "por+eng").
	Languages string `json:"languages" yaml:"languages"`

	// PageSegMode is the tesseract page segmentation mode (default 6,
	// uniform block of text).
	PageSegMode int `json:"page_seg_mode" yaml:"page_seg_mode"`

	// DPI is the rasterization resolution for rendered pages (default 300).
	DPI int `json:"dpi" yaml:"dpi"`

	// PageTimeout bounds recognition of a single page. A timed-out page
	// contributes zero lines; the file continues (default 2m).
	PageTimeout time.Duration `json:"page_timeout" yaml:"page_timeout"`
}

// NotationRule is one weighted pattern in the musical-notation table.
// Rules are data so the filter can be tuned per hymnal without code changes.
type NotationRule struct {
	// Pattern is a regular expression matching notation fragments
	// (solfège runs, bar lines, rhythm marks).
	Pattern string `json:"pattern" yaml:"pattern"`

	// Weight scales the characters matched by this rule when computing
	// the line's notation score.
	Weight float64 `json:"weight" yaml:"weight"`
}

// NotationConfig holds the musical-notation filter settings.
type NotationConfig struct {
	// Threshold is the notation-score fraction above which a line is
	// discarded as notation (default 0.5).
	Threshold float64 `json:"threshold" yaml:"threshold"`

	// Rules is the weighted pattern table. Empty means the built-in
	// defaults.
	Rules []NotationRule `json:"rules,omitempty" yaml:"rules,omitempty"`

	// PureLinePatterns match lines that are notation in their entirety
	// (isolated chord progressions, staff remnants) regardless of score.
	// Empty means the built-in defaults.
	PureLinePatterns []string `json:"pure_line_patterns,omitempty" yaml:"pure_line_patterns,omitempty"`

	// RulesFile optionally points at a YAML file whose contents replace
	// Rules and PureLinePatterns.
	RulesFile string `json:"rules_file,omitempty" yaml:"rules_file,omitempty"`
}

// ClassifierConfig holds the line-classifier heuristics that vary per hymnal.
type ClassifierConfig struct {
	// ChorusMarkers are the keywords opening a chorus block
	// (default CHORUS, CORO, CÔRO, REFRAIN, R:).
	ChorusMarkers []string `json:"chorus_markers,omitempty" yaml:"chorus_markers,omitempty"`

	// MinTitleWords is the minimum word count for the text after a song
	// number to count as a title rather than lyric text (default 1).
	MinTitleWords int `json:"min_title_words" yaml:"min_title_words"`

	// MainTitleMinLen is the minimum length for an all-caps line to be a
	// main-title candidate (default 10).
	MainTitleMinLen int `json:"main_title_min_len" yaml:"main_title_min_len"`
}

// ValidationConfig holds the quality-gate thresholds.
type ValidationConfig struct {
	// MinLineChars is the minimum length of at least one line for a
	// verse or chorus to survive (default 3).
	MinLineChars int `json:"min_line_chars" yaml:"min_line_chars"`
}

// ExtractionConfig holds settings for the extraction pipeline.
type ExtractionConfig struct {
	// BooksDir is the base directory scanned for PDF files.
	BooksDir string `json:"books_dir" yaml:"books_dir"`

	// MinEmbeddedChars is the minimum number of non-whitespace characters
	// an embedded text layer must yield before OCR fallback is skipped
	// (default 100).
	MinEmbeddedChars int `json:"min_embedded_chars" yaml:"min_embedded_chars"`

	OCR        OCRConfig        `json:"ocr" yaml:"ocr"`
	Notation   NotationConfig   `json:"notation" yaml:"notation"`
	Classifier ClassifierConfig `json:"classifier" yaml:"classifier"`
	Validation ValidationConfig `json:"validation" yaml:"validation"`
}

// CatalogConfig holds settings for the song catalog.
type CatalogConfig struct {
	// CatalogDir is the base directory for the catalog (contains index/).
	CatalogDir string `json:"catalog_dir" yaml:"catalog_dir"`

	// MaxResults caps retrieval result counts (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}
