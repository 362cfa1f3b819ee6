// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export exposes the read-only snapshot of an extracted book and
// the writers that serialize it. Writers share one interface so the
// pipeline can emit every configured format in a loop; none of them may
// mutate the snapshot.
package export

import (
	"time"

	"github.com/pdiddy/hymnal-engine/pkg/types"
)

// Metadata describes the extraction run a snapshot came from.
type Metadata struct {
	Title          string    `json:"title"`
	ExtractionDate time.Time `json:"extraction_date"`
	TotalSongs     int       `json:"total_songs"`
}

// Snapshot is the stable schema handed to output writers.
type Snapshot struct {
	Songs    []types.Song
	Metadata Metadata
}

// NewSnapshot freezes a validated book for export.
func NewSnapshot(book types.Book, now time.Time) Snapshot {
	return Snapshot{
		Songs: book.Songs,
		Metadata: Metadata{
			Title:          book.Title,
			ExtractionDate: now,
			TotalSongs:     len(book.Songs),
		},
	}
}

// Writer serializes a snapshot into one output format.
type Writer interface {
	// Render produces the serialized document.
	Render(s Snapshot) ([]byte, error)

	// Extension returns the output file extension, dot included.
	Extension() string
}
