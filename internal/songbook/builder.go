// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package songbook assembles classified lines into a Book of songs with
// ordered verses and choruses, then gates the result for quality.
//
// The builder is an explicit state machine. It is fed one classified
// line at a time, in document order, and carries its state across page
// boundaries: a song routinely starts on one page and ends on the next.
package songbook

import (
	"strconv"
	"strings"

	"github.com/pdiddy/hymnal-engine/internal/classify"
	"github.com/pdiddy/hymnal-engine/pkg/types"
)

// State is the builder's position in the document.
type State int

const (
	// AwaitingSong: no song is open yet. Everything except a song
	// header or a main-title candidate is discarded.
	AwaitingSong State = iota
	// InVerse: a song is open and lines accumulate into a verse buffer.
	InVerse
	// InChorus: a song is open and lines accumulate into its chorus.
	InChorus
	// Done: input is exhausted and the last song is closed.
	Done
)

func (s State) String() string {
	switch s {
	case AwaitingSong:
		return "awaiting_song"
	case InVerse:
		return "in_verse"
	case InChorus:
		return "in_chorus"
	case Done:
		return "done"
	}
	return "unknown"
}

// Builder consumes a classified line stream and produces a Book.
type Builder struct {
	state State
	book  types.Book

	current   *types.Song
	buf       []string
	verseNum  string // explicit number of the open verse, "" when absent
	chorusBuf []string
}

// NewBuilder returns a Builder in the AwaitingSong state.
func NewBuilder() *Builder {
	return &Builder{state: AwaitingSong}
}

// State exposes the current machine state, mainly for tests.
func (b *Builder) State() State { return b.state }

// Feed advances the machine by one classified line. Notation lines must
// already have been removed; feeding one is ignored defensively.
func (b *Builder) Feed(line types.Line) {
	if b.state == Done || line.IsNotation {
		return
	}
	text := strings.TrimSpace(line.Text)
	if text == "" {
		return
	}

	switch line.Role {
	case types.RoleSongHeader:
		b.openSong(text)
	case types.RoleVerseNumber:
		b.startVerse(strings.Trim(text, ".):-– "))
	case types.RoleChorusMarker:
		b.openChorus(text)
	case types.RoleTitleCandidate:
		// Only meaningful before the first song; afterwards it is an
		// all-caps lyric line.
		if b.state == AwaitingSong && b.book.Title == "" {
			b.book.Title = text
		} else {
			b.appendLine(text)
		}
	default:
		b.appendLine(text)
	}
}

// Finish flushes open buffers, closes the open song if any, and returns
// the assembled Book. The builder is Done afterwards.
func (b *Builder) Finish() types.Book {
	if b.state != Done {
		b.closeSong()
		b.state = Done
	}
	return b.book
}

// openSong closes the current song and opens a new one from a header
// line of the form "<number> <title>".
func (b *Builder) openSong(text string) {
	b.closeSong()

	number, title := splitHeader(text)
	b.current = &types.Song{Number: number, Title: title}
	b.buf = nil
	b.verseNum = ""
	b.chorusBuf = nil
	b.state = InVerse
}

// startVerse flushes the open verse buffer and begins a new verse with
// the given explicit number.
func (b *Builder) startVerse(number string) {
	if b.current == nil {
		// A stray verse number before any song opens; discard.
		return
	}
	if b.state == InChorus {
		b.closeChorus()
	} else {
		b.flushVerse()
	}
	b.verseNum = number
	b.state = InVerse
}

// openChorus flushes the open buffer and begins collecting chorus lines.
// A repeat marker ("same as N") attaches a back-reference instead and
// leaves the machine in verse mode.
func (b *Builder) openChorus(text string) {
	if b.current == nil {
		// Chorus marker before any song header: nothing to attach it
		// to, discard.
		return
	}
	if ref, ok := classify.RepeatRef(text); ok {
		b.flushCurrent()
		b.current.ChorusRef = ref
		b.state = InVerse
		return
	}
	b.flushCurrent()
	b.chorusBuf = nil
	b.state = InChorus
}

// appendLine adds body text to whichever buffer is open.
func (b *Builder) appendLine(text string) {
	switch b.state {
	case InVerse:
		b.buf = append(b.buf, text)
	case InChorus:
		b.chorusBuf = append(b.chorusBuf, text)
	default:
		// Leading body text before the first song header is discarded.
	}
}

// flushCurrent flushes whichever buffer the state points at.
func (b *Builder) flushCurrent() {
	if b.state == InChorus {
		b.closeChorus()
	} else {
		b.flushVerse()
	}
}

// flushVerse emits the buffered lines as a completed verse. An empty
// buffer emits nothing. A missing verse number falls back to the next
// sequence position.
func (b *Builder) flushVerse() {
	if b.current == nil || len(b.buf) == 0 {
		b.buf = nil
		b.verseNum = ""
		return
	}
	number := b.verseNum
	if number == "" {
		number = strconv.Itoa(len(b.current.Verses) + 1)
	}
	b.current.Verses = append(b.current.Verses, types.Verse{
		Number: number,
		Lines:  b.buf,
	})
	b.buf = nil
	b.verseNum = ""
}

// closeChorus attaches the buffered chorus to the open song. An empty
// buffer attaches nothing; a second chorus block extends the first.
func (b *Builder) closeChorus() {
	if b.current == nil || len(b.chorusBuf) == 0 {
		b.chorusBuf = nil
		return
	}
	if b.current.Chorus == nil {
		b.current.Chorus = &types.Chorus{}
	}
	b.current.Chorus.Lines = append(b.current.Chorus.Lines, b.chorusBuf...)
	b.chorusBuf = nil
}

// closeSong flushes buffers and appends the open song to the book.
func (b *Builder) closeSong() {
	if b.current == nil {
		return
	}
	b.flushVerse()
	b.closeChorus()
	b.book.Songs = append(b.book.Songs, *b.current)
	b.current = nil
}

// splitHeader splits "123. Amazing Grace" into number and title.
func splitHeader(text string) (number, title string) {
	fields := strings.SplitN(text, " ", 2)
	number = strings.Trim(fields[0], ".):-– ")
	if len(fields) == 2 {
		title = strings.TrimSpace(fields[1])
	}
	return number, title
}

// Build runs the full machine over a classified line stream.
func Build(lines []types.Line) types.Book {
	b := NewBuilder()
	for _, l := range lines {
		b.Feed(l)
	}
	return b.Finish()
}
