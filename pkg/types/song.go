// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the shared schema passed between pipeline stages:
// lines, songs, books, reports, and stage configuration.
package types

// Verse is one numbered stanza of a song.
type Verse struct {
	// Number is the verse label as printed in the source ("1", "2a").
	// When the source omits it, the sequence position is used.
	Number string `json:"number" yaml:"number"`

	// Lines are the verse's text lines in reading order. Never empty
	// for a verse that survived validation.
	Lines []string `json:"lines" yaml:"lines"`
}

// Chorus is the refrain owned by the song that defines it.
type Chorus struct {
	Lines []string `json:"lines" yaml:"lines"`
}

// Song is one extracted hymn or song.
type Song struct {
	// Number is the song number as printed. It may be non-numeric.
	Number string `json:"number" yaml:"number"`

	// Title is the song title from the header line.
	Title string `json:"title" yaml:"title"`

	// Verses are the song's stanzas in document order.
	Verses []Verse `json:"verses" yaml:"verses"`

	// Chorus is the refrain defined by this song, nil when absent.
	Chorus *Chorus `json:"chorus,omitempty" yaml:"chorus,omitempty"`

	// ChorusRef is the number of an earlier song whose chorus this song
	// repeats ("same as N" markers). It is a reference, not a copy; the
	// chorus content stays owned by the originating song.
	ChorusRef string `json:"chorus_ref,omitempty" yaml:"chorus_ref,omitempty"`
}

// HasContent reports whether the song carries at least one verse or a
// chorus (own or referenced).
func (s Song) HasContent() bool {
	return len(s.Verses) > 0 || s.Chorus != nil || s.ChorusRef != ""
}

// Book is the structured result of extracting one hymnal file.
type Book struct {
	// Title is the book's main title, when one was detected before the
	// first song.
	Title string `json:"title" yaml:"title"`

	// Songs are the extracted songs in document order.
	Songs []Song `json:"songs" yaml:"songs"`
}
