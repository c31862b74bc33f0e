package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_note_store.go -package=mocks tagboard/internal/storage NoteStore

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// NoteStore defines the interface for note search operations.
type NoteStore interface {
	// MatchRanked runs a full-text MATCH expression and returns every matching
	// note with matchinfo populated. Rows are in store order.
	MatchRanked(ctx context.Context, expr string) ([]NoteMatch, error)
	// MatchSubstring returns every note whose body matches the LIKE pattern,
	// newest post first.
	MatchSubstring(ctx context.Context, pattern string) ([]NoteMatch, error)
	// Texts returns the bodies of the given notes keyed by id. When expr is not
	// empty, each text also carries the full-text snippet for expr.
	Texts(ctx context.Context, ids []int64, expr string) (map[int64]NoteText, error)
	// Get returns a single note. Returns ErrNotFound if it does not exist.
	Get(ctx context.Context, id int64) (*Note, error)
}

// NoteRepo provides methods for note operations.
// It implements the NoteStore interface.
type NoteRepo struct {
	db *sql.DB
}

// NewNoteRepo creates a new NoteRepo.
func NewNoteRepo(db *sql.DB) *NoteRepo {
	return &NoteRepo{db: db}
}

// MatchRanked searches the notes_fts index. Only the columns needed to rank and
// merge are read; bodies and snippets come from Texts for the hits kept.
func (r *NoteRepo) MatchRanked(ctx context.Context, expr string) ([]NoteMatch, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT n.id, n.post_id, p.hash, p.imported_at, n.name, n.content_hash,
			matchinfo(notes_fts, 'pcx')
		FROM notes_fts
		JOIN notes n ON n.id = notes_fts.docid
		JOIN posts p ON p.id = n.post_id
		WHERE notes_fts MATCH ?`,
		expr,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to run full-text note query: %w", err)
	}
	return scanNoteMatches(rows, true)
}

// MatchSubstring scans note bodies with LIKE. Slower than MatchRanked but
// reaches partial words the tokenizer splits differently.
func (r *NoteRepo) MatchSubstring(ctx context.Context, pattern string) ([]NoteMatch, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT n.id, n.post_id, p.hash, p.imported_at, n.name, n.content_hash
		FROM notes n
		JOIN posts p ON p.id = n.post_id
		WHERE n.body LIKE ? ESCAPE '\'
		ORDER BY p.imported_at DESC, n.id DESC`,
		pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to run substring note query: %w", err)
	}
	return scanNoteMatches(rows, false)
}

func scanNoteMatches(rows *sql.Rows, withMatchInfo bool) ([]NoteMatch, error) {
	defer func() {
		_ = rows.Close()
	}()

	matches := []NoteMatch{}
	for rows.Next() {
		var m NoteMatch
		var importedAt int64
		dest := []any{&m.NoteID, &m.PostID, &m.PostHash, &importedAt, &m.Name, &m.ContentHash}
		if withMatchInfo {
			dest = append(dest, &m.MatchInfo)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan note match: %w", err)
		}
		m.ImportedAt = time.Unix(importedAt, 0).UTC()
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return matches, nil
}

// Texts loads note bodies, and snippets for expr when it is not empty. Matched
// terms in a snippet are wrapped in \x02 and \x03 so callers can escape the text
// before highlighting. Unknown ids are absent from the map.
func (r *NoteRepo) Texts(ctx context.Context, ids []int64, expr string) (map[int64]NoteText, error) {
	texts := make(map[int64]NoteText, len(ids))
	if len(ids) == 0 {
		return texts, nil
	}
	idJSON, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to encode note ids: %w", err)
	}

	var rows *sql.Rows
	if expr == "" {
		rows, err = r.db.QueryContext(ctx,
			`SELECT id, body, '' FROM notes WHERE id IN (SELECT value FROM json_each(?))`,
			string(idJSON),
		)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT n.id, n.body, snippet(notes_fts, char(2), char(3), '…', -1, 24)
			FROM notes_fts
			JOIN notes n ON n.id = notes_fts.docid
			WHERE notes_fts MATCH ?
			AND notes_fts.docid IN (SELECT value FROM json_each(?))`,
			expr, string(idJSON),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load note texts: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var id int64
		var text NoteText
		if err := rows.Scan(&id, &text.Body, &text.Snippet); err != nil {
			return nil, fmt.Errorf("failed to scan note text: %w", err)
		}
		texts[id] = text
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return texts, nil
}

// Get gets a note by ID.
// Returns nil and ErrNotFound if not found.
func (r *NoteRepo) Get(ctx context.Context, id int64) (*Note, error) {
	var note Note
	err := r.db.QueryRowContext(ctx,
		"SELECT id, post_id, name, body, content_hash FROM notes WHERE id = ?",
		id,
	).Scan(&note.ID, &note.PostID, &note.Name, &note.Body, &note.ContentHash)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query note: %w", err)
	}
	return &note, nil
}

// Insert creates a note and sets note.ID. ContentHash is computed from Body when empty.
// Used by ingestion tooling and fixtures.
func (r *NoteRepo) Insert(ctx context.Context, note *Note) error {
	if note.ContentHash == "" {
		note.ContentHash = ContentHash(note.Body)
	}
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO notes (post_id, name, body, content_hash) VALUES (?, ?, ?, ?)",
		note.PostID, note.Name, note.Body, note.ContentHash,
	)
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read note id: %w", err)
	}
	note.ID = id
	return nil
}

// ContentHash returns the SHA256 hex digest used to merge byte-identical notes.
func ContentHash(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}
