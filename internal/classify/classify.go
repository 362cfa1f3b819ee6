// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify assigns semantic roles to lyric lines. Classification
// is a pure function over a two-line window (current line plus lookahead),
// so the structure builder can stay independent of page I/O.
package classify

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/pdiddy/hymnal-engine/pkg/types"
)

var (
	// songHeaderPattern matches "<number><separator> <title text>".
	// The number is a short digit token, optionally with a letter
	// suffix ("12a") as some hymnals use.
	songHeaderPattern = regexp.MustCompile(`^(\d{1,4}[A-Za-z]?)[.):\-–]?\s+(.+)$`)

	// verseNumberPattern matches a bare stanza number standing alone,
	// optionally with trailing punctuation.
	verseNumberPattern = regexp.MustCompile(`^(\d{1,3})[.):\-–]?$`)

	// repeatRefPattern captures "repeat chorus of N" / "same as N"
	// markers that reference an earlier song's chorus.
	repeatRefPattern = regexp.MustCompile(`(?i)(?:repeat\s+chorus\s+of|same\s+as(?:\s+song)?)\s+#?(\d{1,4}[A-Za-z]?)`)
)

var defaultChorusMarkers = []string{"CHORUS", "CORO", "CÔRO", "REFRAIN", "R:"}

// Window is the classifier's view: the current line and at most one line
// of lookahead. Next is nil at end of input.
type Window struct {
	Current types.Line
	Next    *types.Line
}

// Classifier applies the role heuristics with per-hymnal settings.
type Classifier struct {
	chorusMarkers   []string
	minTitleWords   int
	mainTitleMinLen int
}

// New builds a Classifier from cfg, falling back to defaults for unset
// fields.
func New(cfg types.ClassifierConfig) *Classifier {
	markers := cfg.ChorusMarkers
	if len(markers) == 0 {
		markers = defaultChorusMarkers
	}
	upper := make([]string, len(markers))
	for i, m := range markers {
		upper[i] = strings.ToUpper(m)
	}

	minWords := cfg.MinTitleWords
	if minWords <= 0 {
		minWords = 1
	}
	minLen := cfg.MainTitleMinLen
	if minLen <= 0 {
		minLen = 10
	}
	return &Classifier{
		chorusMarkers:   upper,
		minTitleWords:   minWords,
		mainTitleMinLen: minLen,
	}
}

// Classify returns the role for the window's current line. Priority
// order: song header, verse number, chorus marker, main-title candidate,
// body. A line that could be both a song header and a verse number is a
// header only when title-cased text follows the number on the same line;
// a bare number is always a verse number, and a number followed by
// lowercase prose is verse text, not a header.
func (c *Classifier) Classify(w Window) types.Role {
	text := strings.TrimSpace(w.Current.Text)
	if text == "" {
		return types.RoleUnknown
	}

	if verseNumberPattern.MatchString(text) {
		return types.RoleVerseNumber
	}

	if m := songHeaderPattern.FindStringSubmatch(text); m != nil {
		if c.isTitleText(m[2]) && isTitleCase(m[2]) && !nextIsIndexEntry(w.Next) {
			return types.RoleSongHeader
		}
		// Number followed by verse prose ("1 When peace like a river...")
		// or an index-page entry: body, so it never opens a spurious song.
		return types.RoleBody
	}

	if c.isChorusMarker(text) {
		return types.RoleChorusMarker
	}

	if c.isMainTitleCandidate(text) {
		return types.RoleTitleCandidate
	}

	return types.RoleBody
}

// ClassifyAll annotates every line with its role, feeding each the next
// line as lookahead.
func (c *Classifier) ClassifyAll(lines []types.Line) []types.Line {
	out := make([]types.Line, len(lines))
	for i, l := range lines {
		w := Window{Current: l}
		if i+1 < len(lines) {
			w.Next = &lines[i+1]
		}
		l.Role = c.Classify(w)
		out[i] = l
	}
	return out
}

// nextIsIndexEntry reports whether the lookahead line is another
// number-plus-title-case line. Two such lines in a row are an index or
// contents page, not a song header followed by lyrics: a header's real
// successor is verse text, which stays mostly lowercase even when it
// carries its stanza number inline.
func nextIsIndexEntry(next *types.Line) bool {
	if next == nil {
		return false
	}
	m := songHeaderPattern.FindStringSubmatch(strings.TrimSpace(next.Text))
	return m != nil && isTitleCase(m[2])
}

// isTitleCase reports whether at least half the words start with an
// uppercase letter. Printed song titles are title-cased or all caps;
// verse prose that opens with its stanza number ("1 When peace like a
// river attendeth my way") fails this test.
func isTitleCase(text string) bool {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return false
	}
	upper := 0
	for _, f := range fields {
		if unicode.IsUpper([]rune(f)[0]) {
			upper++
		}
	}
	return upper*2 >= len(fields)
}

// RepeatRef extracts the referenced song number from a "repeat chorus"
// marker, reporting whether the text is such a marker.
func RepeatRef(text string) (string, bool) {
	if m := repeatRefPattern.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	return "", false
}

// isTitleText reports whether the text after a song number reads like a
// title: enough words, some letters, not another bare number.
func (c *Classifier) isTitleText(text string) bool {
	text = strings.TrimSpace(text)
	if len(text) <= 3 {
		return false
	}
	if len(strings.Fields(text)) < c.minTitleWords {
		return false
	}
	for _, r := range text {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func (c *Classifier) isChorusMarker(text string) bool {
	upper := strings.ToUpper(text)
	if _, ok := RepeatRef(text); ok {
		return true
	}
	for _, m := range c.chorusMarkers {
		if upper == m || strings.HasPrefix(upper, m+" ") || strings.HasPrefix(upper, m+":") {
			return true
		}
	}
	return false
}

// isMainTitleCandidate matches long all-caps lines. The structure
// builder only honors the role before the first song header.
func (c *Classifier) isMainTitleCandidate(text string) bool {
	if len(text) < c.mainTitleMinLen {
		return false
	}
	hasUpper := false
	for _, r := range text {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasUpper = true
		}
	}
	return hasUpper
}
