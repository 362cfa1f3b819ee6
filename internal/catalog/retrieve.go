// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// QueryOptions holds parameters for catalog queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string over titles and lyrics.
	Query string

	// BookID filters by book.
	BookID string

	// Number filters by song number.
	Number string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.BookID == "" && q.Number == ""
}

// QueryResult is one matching song with its book context.
type QueryResult struct {
	BookID     string `json:"book_id" yaml:"book_id"`
	BookTitle  string `json:"book_title" yaml:"book_title"`
	Number     string `json:"number" yaml:"number"`
	Title      string `json:"title" yaml:"title"`
	VerseCount int    `json:"verse_count" yaml:"verse_count"`
	HasChorus  bool   `json:"has_chorus" yaml:"has_chorus"`
	ChorusRef  string `json:"chorus_ref,omitempty" yaml:"chorus_ref,omitempty"`
	Body       string `json:"body" yaml:"body"`
}

// Retrieve queries the catalog with optional full-text search and
// structured filters. Full-text queries are ranked by relevance;
// structured-only queries sort by book and numeric song number.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT g.book_id, b.title, g.number, g.title, g.verse_count,
				g.has_chorus, g.chorus_ref, g.body
			FROM songs_fts
			JOIN songs g ON g.rowid = songs_fts.rowid
			LEFT JOIN books b ON g.book_id = b.id
			WHERE songs_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT g.book_id, b.title, g.number, g.title, g.verse_count,
				g.has_chorus, g.chorus_ref, g.body
			FROM songs g
			LEFT JOIN books b ON g.book_id = b.id
			WHERE 1=1`)
	}

	if opts.BookID != "" {
		qb.WriteString(` AND g.book_id = ?`)
		args = append(args, opts.BookID)
	}
	if opts.Number != "" {
		qb.WriteString(` AND g.number = ?`)
		args = append(args, opts.Number)
	}

	if useFTS {
		qb.WriteString(` ORDER BY songs_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY g.book_id, CAST(g.number AS INTEGER), g.number`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var (
			qr        QueryResult
			bookTitle sql.NullString
			hasChorus int
		)
		if err := rows.Scan(&qr.BookID, &bookTitle, &qr.Number, &qr.Title,
			&qr.VerseCount, &hasChorus, &qr.ChorusRef, &qr.Body); err != nil {
			return nil, fmt.Errorf("scanning result row: %w", err)
		}
		qr.BookTitle = bookTitle.String
		qr.HasChorus = hasChorus != 0
		results = append(results, qr)
	}
	return results, rows.Err()
}
