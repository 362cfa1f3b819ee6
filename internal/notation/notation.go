// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notation scores lines for musical-notation content and flags
// the ones that are notation rather than lyrics. Hymnal scans interleave
// solfège rows, chord progressions, and bar lines with the text; those
// must never reach the classifier.
//
// The pattern table is data, not code: rules are (regexp, weight) pairs
// loadable from YAML so the filter can be tuned per hymnal.
package notation

import (
	"fmt"
	"os"
	"regexp"
	"unicode"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/hymnal-engine/pkg/types"
)

const defaultThreshold = 0.5

// defaultRules cover tonic sol-fa runs (s, d, m with octave marks and
// duration colons/dashes), bar and repeat marks, and rhythm clusters.
var defaultRules = []types.NotationRule{
	{Pattern: `[smtdfrl][,']*\s*[:.\-—]+\s*[smtdfrl,']*`, Weight: 1.0},
	{Pattern: `[:]+[-—.:]+[|]*`, Weight: 1.0},
	{Pattern: `[|]+\s*[:.\-—]*\s*[|]*`, Weight: 1.0},
	{Pattern: `[:.\-—]{3,}`, Weight: 1.0},
	{Pattern: `\b[A-G][#b]?(?:m|maj|min|dim|aug|sus)?\d*\b`, Weight: 0.8},
	{Pattern: `\d+/\d+`, Weight: 0.6},
}

// defaultPureLinePatterns match lines that are notation in their
// entirety, whatever their character score.
var defaultPureLinePatterns = []string{
	// Isolated chord progressions: "C  G  Am  F".
	`^\s*(?:[A-G][#b]?(?:m|maj|min|dim|aug|sus)?\d*\s+)*[A-G][#b]?(?:m|maj|min|dim|aug|sus)?\d*\s*$`,
	// Pure sol-fa / duration lines: "s,:-.d |m:f".
	`^[smtdfrl,':.\-—|\s]+$`,
	// Bar-delimited staff remnants.
	`^\s*[|]+.*[|]+\s*$`,
}

type compiledRule struct {
	re     *regexp.Regexp
	weight float64
}

// ruleFile is the on-disk shape of a notation rules file.
type ruleFile struct {
	Rules            []types.NotationRule `yaml:"rules"`
	PureLinePatterns []string             `yaml:"pure_line_patterns"`
}

// Filter flags notation lines according to a weighted pattern table.
type Filter struct {
	threshold float64
	rules     []compiledRule
	pure      []*regexp.Regexp
}

// New compiles a Filter from cfg. Unset fields fall back to the built-in
// defaults. A malformed pattern is a configuration error and is fatal to
// the caller.
func New(cfg types.NotationConfig) (*Filter, error) {
	rules := cfg.Rules
	pure := cfg.PureLinePatterns

	if cfg.RulesFile != "" {
		loaded, err := loadRulesFile(cfg.RulesFile)
		if err != nil {
			return nil, err
		}
		rules = loaded.Rules
		pure = loaded.PureLinePatterns
	}
	if len(rules) == 0 {
		rules = defaultRules
	}
	if len(pure) == 0 {
		pure = defaultPureLinePatterns
	}

	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = defaultThreshold
	}
	if threshold >= 1 {
		return nil, fmt.Errorf("notation threshold %v out of range (0, 1)", threshold)
	}

	// Patterns compile as written: casing is part of the rule data, so
	// the chord rule's [A-G] never swallows lowercase lyric letters.
	f := &Filter{threshold: threshold}
	for _, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compiling notation rule %q: %w", r.Pattern, err)
		}
		w := r.Weight
		if w <= 0 {
			w = 1.0
		}
		f.rules = append(f.rules, compiledRule{re: re, weight: w})
	}
	for _, p := range pure {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compiling pure-line pattern %q: %w", p, err)
		}
		f.pure = append(f.pure, re)
	}
	return f, nil
}

func loadRulesFile(path string) (*ruleFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading notation rules file: %w", err)
	}
	var rf ruleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing notation rules file %s: %w", path, err)
	}
	return &rf, nil
}

// Score returns the weighted fraction of notation characters in text:
// for each rule, matched non-whitespace characters times the rule
// weight, summed and divided by the count of non-whitespace characters.
// Both sides count runes, so multi-byte glyphs (em-dashes, accented
// letters) weigh the same as ASCII. The result can exceed 1.0 when
// rules overlap; callers compare against the threshold.
func (f *Filter) Score(text string) float64 {
	total := 0
	for _, r := range text {
		if !unicode.IsSpace(r) {
			total++
		}
	}
	if total == 0 {
		return 0
	}

	weighted := 0.0
	for _, rule := range f.rules {
		for _, m := range rule.re.FindAllString(text, -1) {
			for _, r := range m {
				if !unicode.IsSpace(r) {
					weighted += rule.weight
				}
			}
		}
	}
	return weighted / float64(total)
}

// Apply sets line.NotationScore and line.IsNotation. A line is notation
// when its score exceeds the threshold or a pure-line pattern matches
// the whole line.
func (f *Filter) Apply(line *types.Line) {
	line.NotationScore = f.Score(line.Text)
	if line.NotationScore > f.threshold {
		line.IsNotation = true
		return
	}
	for _, re := range f.pure {
		if re.MatchString(line.Text) {
			line.IsNotation = true
			return
		}
	}
}

// Split partitions lines into kept lyrics and removed notation lines,
// scoring each as it goes.
func (f *Filter) Split(lines []types.Line) (kept, removed []types.Line) {
	for _, l := range lines {
		f.Apply(&l)
		if l.IsNotation {
			removed = append(removed, l)
		} else {
			kept = append(kept, l)
		}
	}
	return kept, removed
}
