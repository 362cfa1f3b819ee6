// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pdiddy/hymnal-engine/pkg/types"
)

func mustFilter(t *testing.T, cfg types.NotationConfig) *Filter {
	t.Helper()
	f, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return f
}

func TestApply(t *testing.T) {
	f := mustFilter(t, types.NotationConfig{})

	tests := []struct {
		name         string
		text         string
		wantNotation bool
	}{
		{
			name:         "chord progression line",
			text:         "C  G  Am  F",
			wantNotation: true,
		},
		{
			name:         "solfa duration line",
			text:         "s,:-.d |m:f |s:-.l |s:-",
			wantNotation: true,
		},
		{
			name:         "bar delimited staff remnant",
			text:         "| : - . | : - . |",
			wantNotation: true,
		},
		{
			name:         "ordinary lyric line",
			text:         "Amazing grace how sweet the sound",
			wantNotation: false,
		},
		{
			name:         "lyric with punctuation",
			text:         "That saved a wretch like me!",
			wantNotation: false,
		},
		{
			name:         "song header line",
			text:         "12 Great Is Thy Faithfulness",
			wantNotation: false,
		},
		{
			name:         "rhythm mark run",
			text:         ":—.:—.:—.:—.",
			wantNotation: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := types.Line{Text: tt.text}
			f.Apply(&line)
			if line.IsNotation != tt.wantNotation {
				t.Errorf("IsNotation = %v (score %.2f), want %v",
					line.IsNotation, line.NotationScore, tt.wantNotation)
			}
		})
	}
}

func TestScore_EmptyLine(t *testing.T) {
	f := mustFilter(t, types.NotationConfig{})
	if got := f.Score(""); got != 0 {
		t.Errorf("Score(\"\") = %v, want 0", got)
	}
}

func TestScore_MultibyteRunes(t *testing.T) {
	f := mustFilter(t, types.NotationConfig{})
	// Em-dashes are three bytes each; a fully matched run must score
	// exactly 1, not the byte/rune ratio.
	if got := f.Score("———"); got != 1.0 {
		t.Errorf("Score(\"———\") = %v, want 1.0", got)
	}
}

func TestScore_LowercaseLyricLetters(t *testing.T) {
	f := mustFilter(t, types.NotationConfig{})
	// The chord rule is uppercase-only; standalone lowercase words must
	// not register as chords.
	if got := f.Score("a b a b"); got != 0 {
		t.Errorf("Score(\"a b a b\") = %v, want 0", got)
	}
}

func TestSplit(t *testing.T) {
	f := mustFilter(t, types.NotationConfig{})

	lines := []types.Line{
		{Text: "Amazing grace how sweet the sound"},
		{Text: "C  G  Am  F"},
		{Text: "That saved a wretch like me"},
	}
	kept, removed := f.Split(lines)

	if len(kept) != 2 {
		t.Fatalf("kept %d lines, want 2", len(kept))
	}
	if len(removed) != 1 {
		t.Fatalf("removed %d lines, want 1", len(removed))
	}
	if !removed[0].IsNotation {
		t.Error("removed line not flagged as notation")
	}
}

func TestNew_BadPattern(t *testing.T) {
	_, err := New(types.NotationConfig{
		Rules: []types.NotationRule{{Pattern: "[unclosed", Weight: 1}},
	})
	if err == nil {
		t.Fatal("expected error for malformed pattern")
	}
}

func TestNew_BadThreshold(t *testing.T) {
	_, err := New(types.NotationConfig{Threshold: 1.5})
	if err == nil {
		t.Fatal("expected error for threshold >= 1")
	}
}

func TestNew_RulesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	content := `rules:
  - pattern: 'zzz+'
    weight: 2.0
pure_line_patterns:
  - '^ONLYME$'
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	f := mustFilter(t, types.NotationConfig{RulesFile: path})

	line := types.Line{Text: "ONLYME"}
	f.Apply(&line)
	if !line.IsNotation {
		t.Error("custom pure-line pattern not applied")
	}

	// The default chord pattern must be replaced by the file's rules.
	chord := types.Line{Text: "C  G  Am  F"}
	f.Apply(&chord)
	if chord.IsNotation {
		t.Error("default patterns still active after loading rules file")
	}
}

func TestNew_RulesFileMissing(t *testing.T) {
	_, err := New(types.NotationConfig{RulesFile: "does/not/exist.yaml"})
	if err == nil {
		t.Fatal("expected error for missing rules file")
	}
}
