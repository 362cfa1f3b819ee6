// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/pdiddy/hymnal-engine/pkg/types"
)

// jsonDocument is the on-disk JSON shape:
//
//	{metadata: {...}, content: {title, songs: [...]}}
type jsonDocument struct {
	Metadata jsonMetadata `json:"metadata"`
	Content  jsonContent  `json:"content"`
}

type jsonMetadata struct {
	ExtractionDate string `json:"extraction_date"`
	TotalSongs     int    `json:"total_songs"`
	Title          string `json:"title"`
}

type jsonContent struct {
	Title string     `json:"title"`
	Songs []jsonSong `json:"songs"`
}

// jsonSong keys verses as "stanza_<number>".
type jsonSong struct {
	Number    string               `json:"number"`
	Title     string               `json:"title"`
	Verses    map[string]jsonVerse `json:"verses"`
	Chorus    []string             `json:"chorus"`
	ChorusRef string               `json:"chorus_ref,omitempty"`
}

type jsonVerse struct {
	Number string   `json:"number"`
	Lines  []string `json:"lines"`
}

// JSONWriter serializes snapshots to the JSON document shape.
type JSONWriter struct{}

// NewJSONWriter creates a JSONWriter.
func NewJSONWriter() *JSONWriter { return &JSONWriter{} }

// Extension returns ".json".
func (w *JSONWriter) Extension() string { return ".json" }

// Render produces indented JSON.
func (w *JSONWriter) Render(s Snapshot) ([]byte, error) {
	doc := jsonDocument{
		Metadata: jsonMetadata{
			ExtractionDate: s.Metadata.ExtractionDate.Format("2006-01-02T15:04:05"),
			TotalSongs:     s.Metadata.TotalSongs,
			Title:          s.Metadata.Title,
		},
		Content: jsonContent{
			Title: s.Metadata.Title,
			Songs: make([]jsonSong, 0, len(s.Songs)),
		},
	}

	for _, song := range s.Songs {
		js := jsonSong{
			Number:    song.Number,
			Title:     song.Title,
			Verses:    make(map[string]jsonVerse, len(song.Verses)),
			Chorus:    []string{},
			ChorusRef: song.ChorusRef,
		}
		for _, v := range song.Verses {
			js.Verses["stanza_"+v.Number] = jsonVerse{Number: v.Number, Lines: v.Lines}
		}
		if song.Chorus != nil {
			js.Chorus = song.Chorus.Lines
		}
		doc.Content.Songs = append(doc.Content.Songs, js)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding JSON export: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseJSON reads a JSON export back into songs and metadata. Verse
// order inside each song is reconstructed by numeric verse number, so a
// render/parse round trip reproduces the original song list.
func ParseJSON(r io.Reader) (Snapshot, error) {
	var doc jsonDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Snapshot{}, fmt.Errorf("parsing JSON export: %w", err)
	}

	snap := Snapshot{
		Metadata: Metadata{
			Title:      doc.Metadata.Title,
			TotalSongs: doc.Metadata.TotalSongs,
		},
	}
	if doc.Metadata.ExtractionDate != "" {
		t, err := time.Parse("2006-01-02T15:04:05", doc.Metadata.ExtractionDate)
		if err != nil {
			return Snapshot{}, fmt.Errorf("parsing extraction date: %w", err)
		}
		snap.Metadata.ExtractionDate = t
	}

	for _, js := range doc.Content.Songs {
		song := types.Song{
			Number:    js.Number,
			Title:     js.Title,
			ChorusRef: js.ChorusRef,
		}
		for _, v := range js.Verses {
			song.Verses = append(song.Verses, types.Verse{Number: v.Number, Lines: v.Lines})
		}
		sort.Slice(song.Verses, func(i, j int) bool {
			return verseOrder(song.Verses[i].Number) < verseOrder(song.Verses[j].Number)
		})
		if len(js.Chorus) > 0 {
			song.Chorus = &types.Chorus{Lines: js.Chorus}
		}
		snap.Songs = append(snap.Songs, song)
	}
	return snap, nil
}

// verseOrder maps a verse label to its sort position. Non-numeric
// labels ("2a") sort by their numeric prefix.
func verseOrder(number string) int {
	digits := number
	for i, r := range number {
		if r < '0' || r > '9' {
			digits = number[:i]
			break
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 1 << 30
	}
	return n
}
