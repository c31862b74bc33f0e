package search

import (
	"strings"

	"tagboard/internal/storage"
)

const (
	highResMinDimension = 1920
	lowResMaxDimension  = 500
)

// MetaTag is a virtual tag computed from post attributes. Match and Condition
// express the same predicate: Match over an in-memory post, Condition as a SQL
// boolean over the posts table aliased p. Condition never evaluates to NULL,
// so Negated is its exact complement.
type MetaTag struct {
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Category    storage.Category        `json:"category"`
	Match       func(storage.Post) bool `json:"-"`
	Condition   string                  `json:"-"`
}

// Negated returns the SQL condition matching exactly the posts Condition rejects.
func (m *MetaTag) Negated() string {
	return "NOT (" + m.Condition + ")"
}

// Registry is an immutable lookup of meta-tags by lowercased name.
type Registry struct {
	byName  map[string]*MetaTag
	ordered []*MetaTag
}

// NewRegistry builds a registry from tags. Later duplicates replace earlier ones.
func NewRegistry(tags ...*MetaTag) *Registry {
	r := &Registry{byName: make(map[string]*MetaTag, len(tags))}
	for _, tag := range tags {
		name := normalizeName(tag.Name)
		if _, exists := r.byName[name]; !exists {
			r.ordered = append(r.ordered, tag)
		}
		r.byName[name] = tag
	}
	return r
}

// DefaultRegistry returns the built-in meta-tags.
func DefaultRegistry() *Registry {
	return NewRegistry(builtinMetaTags()...)
}

// Lookup returns the meta-tag named name, case-insensitively.
func (r *Registry) Lookup(name string) (*MetaTag, bool) {
	tag, ok := r.byName[normalizeName(name)]
	return tag, ok
}

// All returns the meta-tags in registration order.
func (r *Registry) All() []*MetaTag {
	out := make([]*MetaTag, len(r.ordered))
	copy(out, r.ordered)
	return out
}

func builtinMetaTags() []*MetaTag {
	orientation := func(o storage.Orientation, desc string) *MetaTag {
		return &MetaTag{
			Name:        string(o),
			Description: desc,
			Category:    storage.CategoryMeta,
			Match:       func(p storage.Post) bool { return p.Orientation == o },
			Condition:   "COALESCE(p.orientation, '') = '" + string(o) + "'",
		}
	}

	return []*MetaTag{
		{
			Name:        "video",
			Description: "Video files",
			Category:    storage.CategoryMeta,
			Match: func(p storage.Post) bool {
				return strings.HasPrefix(strings.ToLower(p.MimeType), "video/")
			},
			Condition: "lower(COALESCE(p.mime_type, '')) LIKE 'video/%'",
		},
		{
			Name:        "animated",
			Description: "Animated images (GIF, APNG)",
			Category:    storage.CategoryMeta,
			Match: func(p storage.Post) bool {
				switch strings.ToLower(p.MimeType) {
				case "image/gif", "image/apng":
					return true
				}
				return false
			},
			Condition: "lower(COALESCE(p.mime_type, '')) IN ('image/gif', 'image/apng')",
		},
		orientation(storage.OrientationPortrait, "Taller than wide"),
		orientation(storage.OrientationLandscape, "Wider than tall"),
		orientation(storage.OrientationSquare, "Equal width and height"),
		{
			Name:        "highres",
			Description: "Width or height of at least 1920 pixels",
			Category:    storage.CategoryMeta,
			Match: func(p storage.Post) bool {
				return (p.Width != nil && *p.Width >= highResMinDimension) ||
					(p.Height != nil && *p.Height >= highResMinDimension)
			},
			Condition: "(COALESCE(p.width, 0) >= 1920 OR COALESCE(p.height, 0) >= 1920)",
		},
		{
			Name:        "lowres",
			Description: "Known dimensions of at most 500 pixels",
			Category:    storage.CategoryMeta,
			Match: func(p storage.Post) bool {
				return p.Width != nil && p.Height != nil &&
					*p.Width <= lowResMaxDimension && *p.Height <= lowResMaxDimension
			},
			Condition: "(p.width IS NOT NULL AND p.height IS NOT NULL AND p.width <= 500 AND p.height <= 500)",
		},
	}
}
