package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// IsRemoteDSN reports whether dsn points at a libsql/Turso server rather than a local file.
func IsRemoteDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "libsql://") ||
		strings.HasPrefix(dsn, "https://") ||
		strings.HasPrefix(dsn, "http://") ||
		strings.HasPrefix(dsn, "wss://") ||
		strings.HasPrefix(dsn, "ws://")
}

// New opens the relational store. Local paths use SQLite with foreign keys
// enabled; remote DSNs go through the libsql driver with authToken appended when set.
func New(dsn, authToken string) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	if IsRemoteDSN(dsn) {
		connStr := dsn
		if authToken != "" {
			sep := "?"
			if strings.Contains(connStr, "?") {
				sep = "&"
			}
			connStr += sep + "authToken=" + authToken
		}
		db, err = sql.Open("libsql", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open libsql database: %w", err)
		}
	} else {
		db, err = sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, err
		}
		// Enable foreign keys (disabled by default in SQLite)
		if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate creates the post/tag/note schema and the notes full-text index.
// It is idempotent. Production schemas are owned by ingestion; this keeps
// local databases and tests in the same shape.
func Migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS posts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			hash TEXT NOT NULL UNIQUE,
			width INTEGER,
			height INTEGER,
			mime_type TEXT NOT NULL DEFAULT '',
			imported_at INTEGER NOT NULL,
			orientation TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_posts_imported ON posts (imported_at DESC, id DESC);`,
		`CREATE TABLE IF NOT EXISTS tags (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			category TEXT NOT NULL DEFAULT 'general',
			post_count INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tags_category_count ON tags (category, post_count DESC);`,
		`CREATE TABLE IF NOT EXISTS post_tags (
			post_id INTEGER NOT NULL,
			tag_id INTEGER NOT NULL,
			FOREIGN KEY (post_id) REFERENCES posts(id) ON DELETE CASCADE,
			FOREIGN KEY (tag_id) REFERENCES tags(id) ON DELETE CASCADE,
			UNIQUE (post_id, tag_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_post_tags_tag ON post_tags (tag_id, post_id);`,
		`CREATE TABLE IF NOT EXISTS notes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			post_id INTEGER NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			body TEXT NOT NULL,
			content_hash TEXT NOT NULL,
			FOREIGN KEY (post_id) REFERENCES posts(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_notes_content_hash ON notes (content_hash);`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS notes_fts USING fts4(content="notes", body, tokenize=unicode61);`,
		`CREATE TRIGGER IF NOT EXISTS notes_fts_bu BEFORE UPDATE ON notes BEGIN
			DELETE FROM notes_fts WHERE docid = old.id;
		END;`,
		`CREATE TRIGGER IF NOT EXISTS notes_fts_bd BEFORE DELETE ON notes BEGIN
			DELETE FROM notes_fts WHERE docid = old.id;
		END;`,
		`CREATE TRIGGER IF NOT EXISTS notes_fts_au AFTER UPDATE ON notes BEGIN
			INSERT INTO notes_fts (docid, body) VALUES (new.id, new.body);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS notes_fts_ai AFTER INSERT ON notes BEGIN
			INSERT INTO notes_fts (docid, body) VALUES (new.id, new.body);
		END;`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}

// EscapeLike escapes the LIKE metacharacters %, _ and the escape character
// itself so s matches literally inside a LIKE ... ESCAPE '\' expression.
func EscapeLike(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\\', '%', '_':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
