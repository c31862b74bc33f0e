// Package search resolves tag queries into post result sets: tag identity
// resolution, meta-tags, wildcard patterns, predicate composition and
// co-occurrence narrowing.
package search

import (
	"math"
	"strconv"
	"strings"

	"tagboard/internal/storage"
)

// negationPrefix marks an excluded token.
const negationPrefix = "-"

// Outcome distinguishes why a result has the posts it has.
type Outcome string

const (
	// OutcomeMatched means the query ran against the store; the result may still be empty.
	OutcomeMatched Outcome = "matched"
	// OutcomeEmptyQuery means no usable condition was left after parsing and resolution.
	OutcomeEmptyQuery Outcome = "empty_query"
	// OutcomeNoSuchTag means an included or selected tag name does not exist.
	OutcomeNoSuchTag Outcome = "no_such_tag"
)

// ResolvedWildcard is a wildcard pattern expanded to concrete tags.
// Slices are shared with the cache and must be treated as read-only.
type ResolvedWildcard struct {
	Pattern    string             `json:"pattern"`
	Negated    bool               `json:"negated"`
	TagIDs     []int64            `json:"tagIds"`
	TagNames   []string           `json:"tagNames"`
	Categories []storage.Category `json:"categories"`
	Truncated  bool               `json:"truncated"`
}

// splitNegation strips a leading negation marker.
func splitNegation(token string) (string, bool) {
	if strings.HasPrefix(token, negationPrefix) {
		return token[len(negationPrefix):], true
	}
	return token, false
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// idsKey renders sorted ids as a cache key.
func idsKey(ids []int64) string {
	var b strings.Builder
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(id, 10))
	}
	return b.String()
}

// totalPages returns the number of pages needed for total items. Zero items means zero pages.
func totalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// pageOffset returns the row offset of a 1-based page, or false when it does not fit in an int.
func pageOffset(page, pageSize int) (int, bool) {
	if page-1 > math.MaxInt/pageSize {
		return 0, false
	}
	return (page - 1) * pageSize, true
}
