// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog persists extracted songs in a SQLite database and
// serves full-text retrieval over them. The catalog is built from the
// JSON exports the extraction pipeline writes; re-ingesting is
// incremental and keyed on file modification times.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/hymnal-engine/internal/export"
	"github.com/pdiddy/hymnal-engine/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "catalog.db"

	// exportFileSuffix matches the pipeline's JSON output files.
	exportFileSuffix = "_extracted.json"
)

// Store manages the song catalog SQLite database.
type Store struct {
	db         *sql.DB
	catalogDir string
	maxResults int
}

// NewStore opens or creates the catalog database at
// catalogDir/index/catalog.db, creating the schema if needed.
func NewStore(cfg types.CatalogConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.CatalogDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, catalogDir: cfg.CatalogDir, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS books (
			id TEXT PRIMARY KEY,
			title TEXT,
			source_file TEXT,
			extracted_at TEXT,
			song_count INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS songs (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			book_id TEXT NOT NULL REFERENCES books(id),
			number TEXT,
			title TEXT,
			verse_count INTEGER,
			has_chorus INTEGER,
			chorus_ref TEXT,
			body TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_songs_book_id ON songs(book_id)`,
		`CREATE INDEX IF NOT EXISTS idx_songs_number ON songs(number)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			book_id TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='songs_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE songs_fts USING fts5(title, body, content=songs, content_rowid=rowid)`,
			`CREATE TRIGGER songs_ai AFTER INSERT ON songs BEGIN
				INSERT INTO songs_fts(rowid, title, body) VALUES (new.rowid, new.title, new.body);
			END`,
			`CREATE TRIGGER songs_ad AFTER DELETE ON songs BEGIN
				INSERT INTO songs_fts(songs_fts, rowid, title, body) VALUES('delete', old.rowid, old.title, old.body);
			END`,
			`CREATE TRIGGER songs_au AFTER UPDATE ON songs BEGIN
				INSERT INTO songs_fts(songs_fts, rowid, title, body) VALUES('delete', old.rowid, old.title, old.body);
				INSERT INTO songs_fts(rowid, title, body) VALUES (new.rowid, new.title, new.body);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from a catalog indexing run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of books processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest walks booksDir for extraction JSON files and populates the
// database. Unchanged files are skipped; changed books are re-indexed
// wholesale.
func (s *Store) Ingest(ctx context.Context, booksDir string, w io.Writer) (IngestSummary, error) {
	var paths []string
	err := filepath.Walk(booksDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(info.Name(), exportFileSuffix) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return IngestSummary{}, fmt.Errorf("scanning %s for extraction files: %w", booksDir, err)
	}

	var summary IngestSummary
	for _, path := range paths {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		bookID := strings.TrimSuffix(filepath.Base(path), exportFileSuffix)

		info, err := os.Stat(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", bookID, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE book_id = ?`, bookID,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", bookID)
			summary.Skipped++
			continue
		}
		isUpdate := err == nil

		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", bookID, err)
			summary.Failed++
			continue
		}
		snap, err := export.ParseJSON(f)
		f.Close()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: parse error: %v\n", bookID, err)
			summary.Failed++
			continue
		}

		if err := s.ingestBook(ctx, bookID, path, snap, modTime, isUpdate); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", bookID, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d songs)\n", bookID, len(snap.Songs))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexed %s (%d songs)\n", bookID, len(snap.Songs))
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)
	return summary, nil
}

func (s *Store) ingestBook(ctx context.Context, bookID, path string, snap export.Snapshot, modTime string, isUpdate bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if isUpdate {
		if _, err := tx.ExecContext(ctx, `DELETE FROM songs WHERE book_id = ?`, bookID); err != nil {
			return fmt.Errorf("deleting old songs: %w", err)
		}
	}

	extractedAt := ""
	if !snap.Metadata.ExtractionDate.IsZero() {
		extractedAt = snap.Metadata.ExtractionDate.Format(time.RFC3339)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO books (id, title, source_file, extracted_at, song_count)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, source_file=excluded.source_file,
			extracted_at=excluded.extracted_at, song_count=excluded.song_count`,
		bookID, snap.Metadata.Title, path, extractedAt, len(snap.Songs),
	)
	if err != nil {
		return fmt.Errorf("upserting book: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO songs (book_id, number, title, verse_count, has_chorus, chorus_ref, body)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, song := range snap.Songs {
		hasChorus := 0
		if song.Chorus != nil {
			hasChorus = 1
		}
		_, err := stmt.ExecContext(ctx,
			bookID, song.Number, song.Title,
			len(song.Verses), hasChorus, song.ChorusRef, songBody(song),
		)
		if err != nil {
			return fmt.Errorf("inserting song %s: %w", song.Number, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (book_id, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(book_id) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		bookID, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}

// songBody flattens a song's lyric content for full-text indexing.
func songBody(song types.Song) string {
	var sb strings.Builder
	for _, v := range song.Verses {
		sb.WriteString(strings.Join(v.Lines, "\n"))
		sb.WriteString("\n")
	}
	if song.Chorus != nil {
		sb.WriteString(strings.Join(song.Chorus.Lines, "\n"))
	}
	return sb.String()
}
