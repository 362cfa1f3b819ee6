// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package songbook

import (
	"fmt"

	"github.com/pdiddy/hymnal-engine/pkg/types"
)

const defaultMinLineChars = 3

// Rejection records one entity the validator dropped, for the report.
type Rejection struct {
	// Song is the number or title of the affected song.
	Song string
	// Reason is a short human-readable explanation.
	Reason string
}

func (r Rejection) String() string {
	return fmt.Sprintf("song %s: %s", r.Song, r.Reason)
}

// Validate applies the quality gate to a built book. It never mutates
// surviving content, only removes: verses and choruses whose every line
// is below the minimum length are dropped, then songs with no identity
// (no number and no title) or no surviving content are dropped. The
// returned book shares no slices with the input.
func Validate(book types.Book, cfg types.ValidationConfig) (types.Book, []Rejection) {
	minChars := cfg.MinLineChars
	if minChars <= 0 {
		minChars = defaultMinLineChars
	}

	out := types.Book{Title: book.Title}
	var rejected []Rejection

	for _, song := range book.Songs {
		label := song.Number
		if label == "" {
			label = song.Title
		}

		if song.Number == "" && song.Title == "" {
			rejected = append(rejected, Rejection{Song: "(unnumbered)", Reason: "no number and no title"})
			continue
		}

		kept := types.Song{
			Number:    song.Number,
			Title:     song.Title,
			ChorusRef: song.ChorusRef,
		}
		for _, v := range song.Verses {
			if !hasSubstance(v.Lines, minChars) {
				rejected = append(rejected, Rejection{
					Song:   label,
					Reason: fmt.Sprintf("verse %s below minimum content", v.Number),
				})
				continue
			}
			kept.Verses = append(kept.Verses, types.Verse{
				Number: v.Number,
				Lines:  append([]string(nil), v.Lines...),
			})
		}
		if song.Chorus != nil {
			if hasSubstance(song.Chorus.Lines, minChars) {
				kept.Chorus = &types.Chorus{
					Lines: append([]string(nil), song.Chorus.Lines...),
				}
			} else {
				rejected = append(rejected, Rejection{Song: label, Reason: "chorus below minimum content"})
			}
		}

		if !kept.HasContent() {
			rejected = append(rejected, Rejection{Song: label, Reason: "no content"})
			continue
		}
		out.Songs = append(out.Songs, kept)
	}
	return out, rejected
}

// hasSubstance reports whether at least one line reaches the minimum
// character length.
func hasSubstance(lines []string, minChars int) bool {
	if len(lines) == 0 {
		return false
	}
	for _, l := range lines {
		if len(l) >= minChars {
			return true
		}
	}
	return false
}
