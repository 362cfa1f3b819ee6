// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package songbook

import (
	"reflect"
	"testing"

	"github.com/pdiddy/hymnal-engine/internal/classify"
	"github.com/pdiddy/hymnal-engine/pkg/types"
)

// classified builds a line stream through the real classifier so the
// builder tests exercise the same roles production does.
func classified(texts ...string) []types.Line {
	lines := make([]types.Line, len(texts))
	for i, t := range texts {
		lines[i] = types.Line{Text: t, Index: i}
	}
	return classify.New(types.ClassifierConfig{}).ClassifyAll(lines)
}

func TestBuild_NumberedVerses(t *testing.T) {
	book := Build(classified(
		"1 Amazing Grace",
		"Amazing grace how sweet the sound",
		"That saved a wretch like me",
		"2",
		"I once was lost but now am found",
	))

	if len(book.Songs) != 1 {
		t.Fatalf("got %d songs, want 1", len(book.Songs))
	}
	song := book.Songs[0]
	if song.Number != "1" || song.Title != "Amazing Grace" {
		t.Errorf("song = %q %q, want \"1\" \"Amazing Grace\"", song.Number, song.Title)
	}
	if len(song.Verses) != 2 {
		t.Fatalf("got %d verses, want 2", len(song.Verses))
	}
	if song.Verses[0].Number != "1" || len(song.Verses[0].Lines) != 2 {
		t.Errorf("verse 1 = %+v, want number 1 with 2 lines", song.Verses[0])
	}
	if song.Verses[1].Number != "2" || len(song.Verses[1].Lines) != 1 {
		t.Errorf("verse 2 = %+v, want number 2 with 1 line", song.Verses[1])
	}
}

func TestBuild_LeadingChorusDiscarded(t *testing.T) {
	book := Build(classified(
		"Chorus",
		"How sweet the sound",
		"1 Amazing Grace",
		"line one of the first verse",
	))

	if len(book.Songs) != 1 {
		t.Fatalf("got %d songs, want 1", len(book.Songs))
	}
	song := book.Songs[0]
	if song.Number != "1" {
		t.Errorf("song number = %q, want \"1\"", song.Number)
	}
	if song.Chorus != nil {
		t.Errorf("leading chorus was attached to the song: %+v", song.Chorus)
	}
	if len(song.Verses) != 1 || len(song.Verses[0].Lines) != 1 {
		t.Errorf("verses = %+v, want one verse with one line", song.Verses)
	}
}

func TestBuild_ChorusOwnedBySong(t *testing.T) {
	book := Build(classified(
		"7 Blessed Assurance",
		"Blessed assurance, Jesus is mine",
		"Chorus",
		"This is my story, this is my song",
		"Praising my Savior all the day long",
		"2",
		"Perfect submission, perfect delight",
	))

	if len(book.Songs) != 1 {
		t.Fatalf("got %d songs, want 1", len(book.Songs))
	}
	song := book.Songs[0]
	if song.Chorus == nil || len(song.Chorus.Lines) != 2 {
		t.Fatalf("chorus = %+v, want 2 lines", song.Chorus)
	}
	if len(song.Verses) != 2 {
		t.Fatalf("got %d verses, want 2", len(song.Verses))
	}
	if song.Verses[1].Number != "2" {
		t.Errorf("second verse number = %q, want \"2\"", song.Verses[1].Number)
	}
}

func TestBuild_RepeatChorusReference(t *testing.T) {
	book := Build(classified(
		"1 First Song",
		"First verse line of song one",
		"Chorus",
		"Shared chorus line",
		"2 Second Song",
		"First verse line of song two",
		"Repeat chorus of 1",
		"Second verse line of song two",
	))

	if len(book.Songs) != 2 {
		t.Fatalf("got %d songs, want 2", len(book.Songs))
	}
	first, second := book.Songs[0], book.Songs[1]

	if first.Chorus == nil {
		t.Fatal("first song lost its chorus")
	}
	if second.Chorus != nil {
		t.Errorf("second song owns a chorus copy: %+v", second.Chorus)
	}
	if second.ChorusRef != "1" {
		t.Errorf("second song ChorusRef = %q, want \"1\"", second.ChorusRef)
	}
	// The repeat marker closes the open verse; lines after it start the
	// next one because the machine stays in verse mode.
	if len(second.Verses) != 2 {
		t.Errorf("second song verses = %+v, want 2", second.Verses)
	}
}

func TestBuild_SongSpansPages(t *testing.T) {
	lines := classified(
		"3 Abide With Me",
		"Abide with me, fast falls the eventide",
		"The darkness deepens, Lord with me abide",
	)
	// Same song continues on the next page.
	lines[1].Page = 0
	lines[2].Page = 1

	b := NewBuilder()
	for _, l := range lines {
		b.Feed(l)
	}
	book := b.Finish()

	if len(book.Songs) != 1 {
		t.Fatalf("got %d songs, want 1", len(book.Songs))
	}
	if got := len(book.Songs[0].Verses[0].Lines); got != 2 {
		t.Errorf("verse has %d lines, want 2 (page boundary split the song)", got)
	}
}

func TestBuild_HeaderBeforeInlineNumberedVerse(t *testing.T) {
	book := Build(classified(
		"5 It Is Well With My Soul",
		"1 When peace like a river attendeth my way",
		"And sorrows like sea billows roll",
	))

	if len(book.Songs) != 1 {
		t.Fatalf("got %d songs, want 1", len(book.Songs))
	}
	song := book.Songs[0]
	if song.Number != "5" || song.Title != "It Is Well With My Soul" {
		t.Fatalf("song = %q %q, want \"5\" \"It Is Well With My Soul\"", song.Number, song.Title)
	}
	if len(song.Verses) != 1 || len(song.Verses[0].Lines) != 2 {
		t.Errorf("verses = %+v, want one verse with 2 lines", song.Verses)
	}
}

func TestBuild_MainTitle(t *testing.T) {
	book := Build(classified(
		"HYMNS OF PRAISE AND WORSHIP",
		"some stray front matter",
		"1 Amazing Grace",
		"Amazing grace how sweet the sound",
	))

	if book.Title != "HYMNS OF PRAISE AND WORSHIP" {
		t.Errorf("book title = %q", book.Title)
	}
	if len(book.Songs) != 1 {
		t.Fatalf("got %d songs, want 1", len(book.Songs))
	}
	// The stray front matter must not appear in the song.
	for _, v := range book.Songs[0].Verses {
		for _, l := range v.Lines {
			if l == "some stray front matter" {
				t.Error("front matter leaked into a verse")
			}
		}
	}
}

func TestBuild_EmptyVerseDropped(t *testing.T) {
	book := Build(classified(
		"1 Amazing Grace",
		"2",
		"I once was lost but now am found",
	))

	song := book.Songs[0]
	if len(song.Verses) != 1 {
		t.Fatalf("got %d verses, want 1 (empty buffer must not emit)", len(song.Verses))
	}
	if song.Verses[0].Number != "2" {
		t.Errorf("verse number = %q, want \"2\"", song.Verses[0].Number)
	}
}

func TestBuild_Idempotent(t *testing.T) {
	input := []string{
		"GOSPEL SONGS COLLECTION",
		"1 Amazing Grace",
		"Amazing grace how sweet the sound",
		"Chorus",
		"Praise the Lord, praise the Lord",
		"2 Second Song",
		"Second song first line here",
	}

	first := Build(classified(input...))
	second := Build(classified(input...))

	if !reflect.DeepEqual(first, second) {
		t.Error("two runs over the same input produced different books")
	}
}

func TestBuilder_States(t *testing.T) {
	b := NewBuilder()
	if b.State() != AwaitingSong {
		t.Errorf("initial state = %v", b.State())
	}

	for _, l := range classified("1 A Song Title", "a body line") {
		b.Feed(l)
	}
	if b.State() != InVerse {
		t.Errorf("state after header = %v, want InVerse", b.State())
	}

	for _, l := range classified("Chorus") {
		b.Feed(l)
	}
	if b.State() != InChorus {
		t.Errorf("state after chorus marker = %v, want InChorus", b.State())
	}

	b.Finish()
	if b.State() != Done {
		t.Errorf("state after Finish = %v, want Done", b.State())
	}
}
