// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// TextSource identifies how a page's text was obtained.
type TextSource string

const (
	// SourceEmbedded means the text layer embedded in the PDF was used.
	SourceEmbedded TextSource = "embedded"
	// SourceOCR means the page was rasterized and recognized.
	SourceOCR TextSource = "ocr"
)

// Role is the semantic role assigned to a line by the classifier.
type Role string

const (
	// RoleNone marks a line that has not been classified yet.
	RoleNone Role = ""

	// RoleSongHeader is a song number followed by its title on one line.
	RoleSongHeader Role = "song_header"

	// RoleVerseNumber is a bare stanza number standing alone.
	RoleVerseNumber Role = "verse_number"

	// RoleChorusMarker is a chorus/refrain keyword line.
	RoleChorusMarker Role = "chorus_marker"

	// RoleTitleCandidate is a long all-caps line that may be the book's
	// main title when it appears before any song.
	RoleTitleCandidate Role = "title_candidate"

	// RoleBody is ordinary lyric text.
	RoleBody Role = "body"

	// RoleUnknown is anything the heuristics could not place. Unknown
	// lines are treated like body text by the structure builder.
	RoleUnknown Role = "unknown"
)

// Line is one line of extracted text moving through the pipeline.
type Line struct {
	// Text is the raw line content, whitespace-trimmed.
	Text string

	// Page is the zero-based page index the line came from.
	Page int

	// Index is the line's position within its page.
	Index int

	// Source records whether the page text came from the embedded layer
	// or from OCR.
	Source TextSource

	// NotationScore is the weighted fraction of musical-notation
	// characters, set by the notation filter.
	NotationScore float64

	// IsNotation marks lines dominated by musical notation. Such lines
	// never reach the classifier.
	IsNotation bool

	// Role is the classifier's verdict, RoleNone until classified.
	Role Role
}
