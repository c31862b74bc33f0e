// Package storagetest builds small, fully migrated SQLite stores for tests.
package storagetest

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tagboard/internal/storage"
)

// BaseTime is the import time of the first seeded post. Each following post is one minute newer.
var BaseTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// PostSpec describes one post to seed.
type PostSpec struct {
	Label      string // fixture name; the hash is derived from it
	Width      *int
	Height     *int
	MimeType   string
	ImportedAt time.Time // zero means BaseTime plus the post's index in minutes
	Tags       []string
	Notes      []string
}

// Fixture is a seeded store plus lookups by fixture label and tag name.
type Fixture struct {
	DB    *sql.DB
	Posts map[string]storage.Post
	Tags  map[string]storage.Tag
	label map[int64]string
}

// NewDB opens a migrated SQLite database in a per-test temp dir.
func NewDB(t testing.TB) *sql.DB {
	t.Helper()

	db, err := storage.New(filepath.Join(t.TempDir(), "test.db"), "")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	if err := storage.Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return db
}

// Seed inserts tags, posts, associations and notes, then recomputes post counts.
// Tags referenced by posts but not listed in tags are created with CategoryOf(name).
func Seed(t testing.TB, db *sql.DB, posts []PostSpec, tags ...storage.Tag) *Fixture {
	t.Helper()
	ctx := context.Background()

	f := &Fixture{
		DB:    db,
		Posts: make(map[string]storage.Post, len(posts)),
		Tags:  make(map[string]storage.Tag),
		label: make(map[int64]string, len(posts)),
	}
	tagRepo := storage.NewTagRepo(db)
	postRepo := storage.NewPostRepo(db)
	noteRepo := storage.NewNoteRepo(db)

	for _, tag := range tags {
		tag := tag
		if err := tagRepo.Insert(ctx, &tag); err != nil {
			t.Fatalf("Insert(tag %q) error = %v", tag.Name, err)
		}
		f.Tags[tag.Name] = tag
	}

	for i, spec := range posts {
		imported := spec.ImportedAt
		if imported.IsZero() {
			imported = BaseTime.Add(time.Duration(i) * time.Minute)
		}
		post := storage.Post{
			Hash:       Hash(spec.Label),
			Width:      spec.Width,
			Height:     spec.Height,
			MimeType:   spec.MimeType,
			ImportedAt: imported,
		}
		if post.MimeType == "" {
			post.MimeType = "image/png"
		}
		if err := postRepo.Insert(ctx, &post); err != nil {
			t.Fatalf("Insert(post %q) error = %v", spec.Label, err)
		}
		f.Posts[spec.Label] = post
		f.label[post.ID] = spec.Label

		for _, name := range spec.Tags {
			name = strings.ToLower(name)
			tag, ok := f.Tags[name]
			if !ok {
				tag = storage.Tag{Name: name, Category: CategoryOf(name)}
				if err := tagRepo.Insert(ctx, &tag); err != nil {
					t.Fatalf("Insert(tag %q) error = %v", name, err)
				}
				f.Tags[name] = tag
			}
			if err := tagRepo.Attach(ctx, post.ID, tag.ID); err != nil {
				t.Fatalf("Attach() error = %v", err)
			}
		}

		for j, body := range spec.Notes {
			note := storage.Note{PostID: post.ID, Name: "note", Body: body}
			if j > 0 {
				note.Name = "note " + string(rune('a'+j))
			}
			if err := noteRepo.Insert(ctx, &note); err != nil {
				t.Fatalf("Insert(note) error = %v", err)
			}
		}
	}

	if _, err := storage.NewStatsRepo(db).RecomputeTagCounts(ctx); err != nil {
		t.Fatalf("RecomputeTagCounts() error = %v", err)
	}
	for name := range f.Tags {
		refreshed, err := tagRepo.GetByNames(ctx, []string{name})
		if err != nil || len(refreshed) != 1 {
			t.Fatalf("GetByNames(%q) = %v, %v", name, refreshed, err)
		}
		f.Tags[name] = refreshed[0]
	}

	return f
}

// Label returns the fixture label of a post id, or "" when unknown.
func (f *Fixture) Label(postID int64) string {
	return f.label[postID]
}

// Labels maps posts back to their fixture labels, preserving order.
func (f *Fixture) Labels(posts []storage.Post) []string {
	labels := make([]string, len(posts))
	for i, p := range posts {
		labels[i] = f.label[p.ID]
	}
	return labels
}

// TagID returns the id of a seeded tag, failing the test when absent.
func (f *Fixture) TagID(t testing.TB, name string) int64 {
	t.Helper()
	tag, ok := f.Tags[name]
	if !ok {
		t.Fatalf("fixture has no tag %q", name)
	}
	return tag.ID
}

// Hash derives a stable 64 hex character post hash from a fixture label.
func Hash(label string) string {
	sum := sha256.Sum256([]byte(label))
	return hex.EncodeToString(sum[:])
}

// Dim returns a pointer to v for PostSpec dimensions.
func Dim(v int) *int {
	return &v
}

// CategoryOf picks a category from a namespace prefix such as "artist:".
func CategoryOf(name string) storage.Category {
	if ns, _, ok := strings.Cut(name, ":"); ok {
		switch ns {
		case "artist", "creator":
			return storage.CategoryArtist
		case "series", "copyright":
			return storage.CategoryCopyright
		case "character":
			return storage.CategoryCharacter
		case "meta", "system":
			return storage.CategoryMeta
		}
	}
	return storage.CategoryGeneral
}
