// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdiddy/hymnal-engine/pkg/types"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{url: "https://example.com/books/Hymnal_1962.pdf", want: "hymnal_1962"},
		{url: "https://example.com/Songs%20Of%20Praise.pdf", want: "songs-of-praise"},
		{url: "https://example.com/a/b/c/gospel-hymns.PDF", want: "gospel-hymns"},
		{url: "https://example.com/", wantErr: true},
		{url: "://bad url", wantErr: true},
	}

	for _, tt := range tests {
		got, err := Slug(tt.url)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Slug(%q) = %q, want error", tt.url, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("Slug(%q): %v", tt.url, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestFetchBook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF-1.4 fake body"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	cfg := types.FetchConfig{BooksDir: dir}
	var out bytes.Buffer

	book, skipped, err := FetchBook(context.Background(), srv.Client(), srv.URL+"/hymnal.pdf", cfg, &out)
	if err != nil {
		t.Fatalf("FetchBook: %v", err)
	}
	if skipped {
		t.Fatal("first fetch reported as skipped")
	}
	if book.Slug != "hymnal" {
		t.Errorf("slug = %q", book.Slug)
	}

	data, err := os.ReadFile(filepath.Join(dir, "raw", "hymnal.pdf"))
	if err != nil {
		t.Fatalf("PDF not written: %v", err)
	}
	if string(data) != "%PDF-1.4 fake body" {
		t.Errorf("PDF content = %q", data)
	}

	if _, err := os.Stat(filepath.Join(dir, "metadata", "hymnal.yaml")); err != nil {
		t.Errorf("metadata sidecar not written: %v", err)
	}
	if book.FetchedAt.IsZero() {
		t.Error("FetchedAt not set")
	}
}

func TestFetchBook_SkipsExisting(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("body"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	cfg := types.FetchConfig{BooksDir: dir}
	url := srv.URL + "/hymnal.pdf"
	var out bytes.Buffer

	if _, _, err := FetchBook(context.Background(), srv.Client(), url, cfg, &out); err != nil {
		t.Fatal(err)
	}
	book, skipped, err := FetchBook(context.Background(), srv.Client(), url, cfg, &out)
	if err != nil {
		t.Fatal(err)
	}
	if !skipped {
		t.Error("second fetch not skipped")
	}
	if hits != 1 {
		t.Errorf("server hit %d times, want 1", hits)
	}
	// Metadata from the first run is returned on the skip path.
	if book.SourceURL != url {
		t.Errorf("skip returned SourceURL %q, want %q", book.SourceURL, url)
	}
}

func TestFetchBook_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dir := t.TempDir()
	var out bytes.Buffer

	_, _, err := FetchBook(context.Background(), srv.Client(), srv.URL+"/missing.pdf",
		types.FetchConfig{BooksDir: dir}, &out)
	if err == nil {
		t.Fatal("expected error for 404")
	}
	// No partial file may remain.
	if _, statErr := os.Stat(filepath.Join(dir, "raw", "missing.pdf")); statErr == nil {
		t.Error("partial download left behind")
	}
}

func TestFetchBatch_ContinuesOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken.pdf" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("body"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	var out bytes.Buffer

	urls := []string{srv.URL + "/good.pdf", srv.URL + "/broken.pdf", srv.URL + "/also-good.pdf"}
	result := FetchBatch(context.Background(), srv.Client(), urls, types.FetchConfig{BooksDir: dir}, &out)

	if result.Downloaded != 2 || result.Failed != 1 || result.Skipped != 0 {
		t.Errorf("result = %+v", result)
	}
	if result.Total() != 3 {
		t.Errorf("Total = %d, want 3", result.Total())
	}
	if !result.HasFailures() {
		t.Error("HasFailures = false")
	}
	if !bytes.Contains(out.Bytes(), []byte("Batch summary: 2 downloaded, 0 skipped, 1 failed (total: 3)")) {
		t.Errorf("summary line missing:\n%s", out.String())
	}
}
