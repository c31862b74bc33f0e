package storage

import (
	"strings"
	"time"
)

// Category is the kind of a tag. Stored lowercase in tags.category.
type Category string

const (
	CategoryArtist    Category = "artist"
	CategoryCopyright Category = "copyright"
	CategoryCharacter Category = "character"
	CategoryGeneral   Category = "general"
	CategoryMeta      Category = "meta"
)

// Categories lists every tag category in display order.
var Categories = []Category{
	CategoryArtist,
	CategoryCopyright,
	CategoryCharacter,
	CategoryGeneral,
	CategoryMeta,
}

// ParseCategory parses a category name case-insensitively.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, true
		}
	}
	return "", false
}

// Orientation is derived from a post's width and height by ingestion.
// The empty value means the dimensions were unknown (NULL in the store).
type Orientation string

const (
	OrientationPortrait  Orientation = "portrait"
	OrientationLandscape Orientation = "landscape"
	OrientationSquare    Orientation = "square"
	OrientationUnknown   Orientation = "unknown"
)

// DeriveOrientation computes the orientation stored alongside a post.
// It returns "" when either dimension is missing.
func DeriveOrientation(width, height *int) Orientation {
	if width == nil || height == nil {
		return ""
	}
	w, h := *width, *height
	switch {
	case w <= 0 || h <= 0:
		return OrientationUnknown
	case w > h:
		return OrientationLandscape
	case h > w:
		return OrientationPortrait
	default:
		return OrientationSquare
	}
}

// Post represents an imported media file.
type Post struct {
	ID          int64       `json:"id"`
	Hash        string      `json:"hash"` // SHA256 hex of the file content
	Width       *int        `json:"width,omitempty"`
	Height      *int        `json:"height,omitempty"`
	MimeType    string      `json:"mimeType"`
	ImportedAt  time.Time   `json:"importedAt"`
	Orientation Orientation `json:"orientation,omitempty"`
}

// Tag represents a named, categorized label.
// PostCount is a denormalized snapshot refreshed out of band and may lag post_tags.
type Tag struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Category  Category `json:"category"`
	PostCount int      `json:"postCount"`
}

// TagCount is a tag with a co-occurrence count computed for a specific post set.
type TagCount struct {
	Tag
	Count int `json:"count"`
}

// Note is a free-text note attached to a post.
type Note struct {
	ID          int64
	PostID      int64
	Name        string
	Body        string
	ContentHash string // SHA256 hex of Body
}

// NoteMatch is one note row returned by a note search, joined with its post.
// Bodies are fetched separately through NoteStore.Texts.
type NoteMatch struct {
	NoteID      int64
	PostID      int64
	PostHash    string
	ImportedAt  time.Time
	Name        string
	ContentHash string
	// MatchInfo is the raw FTS matchinfo 'pcx' blob (ranked mode only).
	MatchInfo []byte
}

// NoteText is the displayable text of a matched note.
type NoteText struct {
	Body string
	// Snippet is the store-generated excerpt with \x02/\x03 around matched terms.
	// Empty unless a full-text expression was given.
	Snippet string
}

// Where is a compiled boolean condition over the posts table aliased as p.
// An empty Clause matches every post.
type Where struct {
	Clause string
	Args   []any
}

// TagFilter narrows tag listings. Patterns are store LIKE patterns (see EscapeLike).
type TagFilter struct {
	Category        Category
	NamePattern     string
	ExcludePatterns []string
	NonEmpty        bool // only tags whose post_count snapshot is positive
}

// RecomputeStats summarizes a post_count recompute run.
type RecomputeStats struct {
	TagsChecked int           `json:"tagsChecked"`
	TagsUpdated int           `json:"tagsUpdated"`
	TotalDrift  int           `json:"totalDrift"`
	MaxDrift    int           `json:"maxDrift"`
	MaxDriftTag string        `json:"maxDriftTag,omitempty"`
	Duration    time.Duration `json:"duration"`
}
