// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// Row types for the tabular export shape.
const (
	rowMainTitle = "MAIN TITLE"
	rowTitle     = "TITLE"
	rowVerse     = "VERSE"
	rowChorus    = "CHORUS"
)

// CSVWriter serializes snapshots to the tabular shape: one row per
// song title, verse, and chorus, with verse lines joined by " / ".
type CSVWriter struct{}

// NewCSVWriter creates a CSVWriter.
func NewCSVWriter() *CSVWriter { return &CSVWriter{} }

// Extension returns ".csv".
func (w *CSVWriter) Extension() string { return ".csv" }

// Render produces CSV with a header row.
func (w *CSVWriter) Render(s Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	records := [][]string{{"Number", "Title", "Type", "Verse", "Content"}}

	if s.Metadata.Title != "" {
		records = append(records, []string{"", "", rowMainTitle, "", s.Metadata.Title})
	}

	for _, song := range s.Songs {
		records = append(records, []string{song.Number, song.Title, rowTitle, "", ""})
		for _, v := range song.Verses {
			records = append(records, []string{
				song.Number, "", rowVerse, v.Number, strings.Join(v.Lines, " / "),
			})
		}
		if song.Chorus != nil {
			records = append(records, []string{
				song.Number, "", rowChorus, "", strings.Join(song.Chorus.Lines, " / "),
			})
		}
		if song.ChorusRef != "" {
			records = append(records, []string{
				song.Number, "", rowChorus, "", "(chorus of song " + song.ChorusRef + ")",
			})
		}
	}

	if err := cw.WriteAll(records); err != nil {
		return nil, fmt.Errorf("writing CSV export: %w", err)
	}
	cw.Flush()
	return buf.Bytes(), nil
}
