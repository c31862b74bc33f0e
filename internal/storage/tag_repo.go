package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_tag_store.go -package=mocks tagboard/internal/storage TagStore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// TagStore defines the read operations the search engine issues against tags.
type TagStore interface {
	// GetByNames returns the tags whose name is in names. Missing names are simply absent.
	GetByNames(ctx context.Context, names []string) ([]Tag, error)
	// Find lists tags matching the filter ordered by post_count DESC, id ASC.
	Find(ctx context.Context, filter TagFilter, limit int) ([]Tag, error)
	// CoOccurring counts, for every tag attached to any of postIDs (except excludeIDs),
	// how many of those posts carry it. Ordered by count DESC, id ASC.
	CoOccurring(ctx context.Context, postIDs, excludeIDs []int64, filter TagFilter, limit int) ([]TagCount, error)
	// CategoryCounts returns the number of tags per category.
	CategoryCounts(ctx context.Context) (map[Category]int, error)
}

// TagRepo provides methods for tag operations.
// It implements the TagStore interface.
type TagRepo struct {
	db *sql.DB
}

// NewTagRepo creates a new TagRepo.
func NewTagRepo(db *sql.DB) *TagRepo {
	return &TagRepo{db: db}
}

// GetByNames returns the tags whose name is in names.
// Names are expected to be normalized (lowercase) already.
func (r *TagRepo) GetByNames(ctx context.Context, names []string) ([]Tag, error) {
	if len(names) == 0 {
		return []Tag{}, nil
	}

	args := make([]any, len(names))
	for i, name := range names {
		args[i] = name
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, category, post_count FROM tags WHERE name IN ("+placeholders(len(names))+")",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags by name: %w", err)
	}
	return scanTags(rows)
}

// Find lists tags matching filter, most used first.
func (r *TagRepo) Find(ctx context.Context, filter TagFilter, limit int) ([]Tag, error) {
	clauses, args := filter.clauses("t")
	query := "SELECT t.id, t.name, t.category, t.post_count FROM tags t"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY t.post_count DESC, t.id ASC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	return scanTags(rows)
}

// CoOccurring runs one grouped aggregate over post_tags restricted to postIDs.
// The id sets are bound as JSON arrays so large post sets stay within the
// store's bound-parameter limit.
func (r *TagRepo) CoOccurring(ctx context.Context, postIDs, excludeIDs []int64, filter TagFilter, limit int) ([]TagCount, error) {
	if len(postIDs) == 0 {
		return []TagCount{}, nil
	}
	if excludeIDs == nil {
		excludeIDs = []int64{}
	}

	postJSON, err := json.Marshal(postIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode post ids: %w", err)
	}
	excludeJSON, err := json.Marshal(excludeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode excluded tag ids: %w", err)
	}

	query := `SELECT t.id, t.name, t.category, t.post_count, COUNT(*) AS n
		FROM post_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id IN (SELECT value FROM json_each(?))
		AND pt.tag_id NOT IN (SELECT value FROM json_each(?))`
	args := []any{string(postJSON), string(excludeJSON)}

	clauses, filterArgs := filter.clauses("t")
	for _, c := range clauses {
		query += " AND " + c
	}
	args = append(args, filterArgs...)

	query += " GROUP BY t.id ORDER BY n DESC, t.id ASC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query co-occurring tags: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	counts := []TagCount{}
	for rows.Next() {
		var tc TagCount
		var category string
		if err := rows.Scan(&tc.ID, &tc.Name, &category, &tc.PostCount, &tc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan tag count: %w", err)
		}
		tc.Category = Category(category)
		counts = append(counts, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return counts, nil
}

// CategoryCounts returns the number of tags in each category. Categories
// without tags are reported as zero.
func (r *TagRepo) CategoryCounts(ctx context.Context) (map[Category]int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT category, COUNT(*) FROM tags GROUP BY category")
	if err != nil {
		return nil, fmt.Errorf("failed to count tags by category: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	counts := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		counts[c] = 0
	}
	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, fmt.Errorf("failed to scan category count: %w", err)
		}
		counts[Category(category)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return counts, nil
}

// Insert creates a tag and sets tag.ID. Used by ingestion tooling and fixtures.
func (r *TagRepo) Insert(ctx context.Context, tag *Tag) error {
	if tag.Category == "" {
		tag.Category = CategoryGeneral
	}
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO tags (name, category, post_count) VALUES (?, ?, ?)",
		strings.ToLower(tag.Name), string(tag.Category), tag.PostCount,
	)
	if err != nil {
		return fmt.Errorf("failed to insert tag: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read tag id: %w", err)
	}
	tag.ID = id
	tag.Name = strings.ToLower(tag.Name)
	return nil
}

// Attach associates tags with a post. Existing pairs are ignored.
func (r *TagRepo) Attach(ctx context.Context, postID int64, tagIDs ...int64) error {
	for _, tagID := range tagIDs {
		_, err := r.db.ExecContext(ctx,
			"INSERT OR IGNORE INTO post_tags (post_id, tag_id) VALUES (?, ?)",
			postID, tagID,
		)
		if err != nil {
			return fmt.Errorf("failed to attach tag %d to post %d: %w", tagID, postID, err)
		}
	}
	return nil
}

// clauses renders the filter as SQL conditions on the tags alias.
func (f TagFilter) clauses(alias string) ([]string, []any) {
	var clauses []string
	var args []any
	if f.Category != "" {
		clauses = append(clauses, alias+".category = ?")
		args = append(args, string(f.Category))
	}
	if f.NamePattern != "" {
		clauses = append(clauses, alias+`.name LIKE ? ESCAPE '\'`)
		args = append(args, f.NamePattern)
	}
	for _, p := range f.ExcludePatterns {
		clauses = append(clauses, alias+`.name NOT LIKE ? ESCAPE '\'`)
		args = append(args, p)
	}
	if f.NonEmpty {
		clauses = append(clauses, alias+".post_count > 0")
	}
	return clauses, args
}

func scanTags(rows *sql.Rows) ([]Tag, error) {
	defer func() {
		_ = rows.Close()
	}()

	tags := []Tag{}
	for rows.Next() {
		var tag Tag
		var category string
		if err := rows.Scan(&tag.ID, &tag.Name, &category, &tag.PostCount); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tag.Category = Category(category)
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tags, nil
}
