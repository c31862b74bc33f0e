package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_post_store.go -package=mocks tagboard/internal/storage PostStore

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"
)

// PostStore defines the read operations the search engine issues against posts.
type PostStore interface {
	// List returns one page of posts satisfying w, newest import first, id as tiebreak.
	List(ctx context.Context, w Where, limit, offset int) ([]Post, error)
	// Count returns the number of posts satisfying w.
	Count(ctx context.Context, w Where) (int, error)
	// IDsWithAllTags returns the ids of posts carrying every tag in tagIDs, ascending.
	IDsWithAllTags(ctx context.Context, tagIDs []int64) ([]int64, error)
}

// PostRepo provides methods for post operations.
// It implements the PostStore interface.
type PostRepo struct {
	db *sql.DB
}

// NewPostRepo creates a new PostRepo.
func NewPostRepo(db *sql.DB) *PostRepo {
	return &PostRepo{db: db}
}

const postColumns = "p.id, p.hash, p.width, p.height, p.mime_type, p.imported_at, p.orientation"

// List returns one page of posts satisfying w.
func (r *PostRepo) List(ctx context.Context, w Where, limit, offset int) ([]Post, error) {
	query := "SELECT " + postColumns + " FROM posts p"
	args := append([]any{}, w.Args...)
	if w.Clause != "" {
		query += " WHERE " + w.Clause
	}
	query += " ORDER BY p.imported_at DESC, p.id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	posts := []Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return posts, nil
}

// Count returns the number of posts satisfying w.
func (r *PostRepo) Count(ctx context.Context, w Where) (int, error) {
	query := "SELECT COUNT(*) FROM posts p"
	if w.Clause != "" {
		query += " WHERE " + w.Clause
	}

	var n int
	if err := r.db.QueryRowContext(ctx, query, w.Args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return n, nil
}

// IDsWithAllTags matches the whole tag set with one grouped aggregate:
// a post qualifies when the number of distinct matching tags equals the set size.
func (r *PostRepo) IDsWithAllTags(ctx context.Context, tagIDs []int64) ([]int64, error) {
	unique := uniqueIDs(tagIDs)
	if len(unique) == 0 {
		return []int64{}, nil
	}

	args := make([]any, 0, len(unique)+1)
	for _, id := range unique {
		args = append(args, id)
	}
	args = append(args, len(unique))

	rows, err := r.db.QueryContext(ctx,
		`SELECT post_id FROM post_tags
		WHERE tag_id IN (`+placeholders(len(unique))+`)
		GROUP BY post_id
		HAVING COUNT(DISTINCT tag_id) = ?
		ORDER BY post_id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts by tag set: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan post id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return ids, nil
}

// Insert creates a post and sets post.ID. Orientation is derived when empty.
// Used by ingestion tooling and fixtures.
func (r *PostRepo) Insert(ctx context.Context, post *Post) error {
	if post.Orientation == "" {
		post.Orientation = DeriveOrientation(post.Width, post.Height)
	}
	if post.ImportedAt.IsZero() {
		post.ImportedAt = time.Now().UTC()
	}

	var orientation any
	if post.Orientation != "" {
		orientation = string(post.Orientation)
	}

	result, err := r.db.ExecContext(ctx,
		"INSERT INTO posts (hash, width, height, mime_type, imported_at, orientation) VALUES (?, ?, ?, ?, ?, ?)",
		strings.ToLower(post.Hash), nullableInt(post.Width), nullableInt(post.Height),
		post.MimeType, post.ImportedAt.Unix(), orientation,
	)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read post id: %w", err)
	}
	post.ID = id
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (Post, error) {
	var post Post
	var width, height sql.NullInt64
	var importedAt int64
	var orientation sql.NullString

	if err := row.Scan(&post.ID, &post.Hash, &width, &height, &post.MimeType, &importedAt, &orientation); err != nil {
		return Post{}, fmt.Errorf("failed to scan post: %w", err)
	}
	post.Width = intPtr(width)
	post.Height = intPtr(height)
	post.ImportedAt = time.Unix(importedAt, 0).UTC()
	if orientation.Valid {
		post.Orientation = Orientation(orientation.String)
	}
	return post, nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
