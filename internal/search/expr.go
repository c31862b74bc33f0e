package search

import (
	"strings"

	"tagboard/internal/storage"
)

// Expr is a node in a boolean predicate tree over posts.
// Trees are built per request and compiled once with Compile.
type Expr interface {
	compile(b *whereBuilder)
	eval(post storage.Post, tags map[int64]struct{}) bool
}

// And holds when every child holds. An empty And is true.
type And []Expr

// Or holds when any child holds. An empty Or is false.
type Or []Expr

// Not negates X.
type Not struct {
	X Expr
}

// HasTag holds for posts carrying the tag.
type HasTag struct {
	ID int64
}

// HasAnyTag holds for posts carrying at least one of the tags. An empty set is false.
type HasAnyTag struct {
	IDs []int64
}

// Attr holds for posts satisfying a meta-tag.
type Attr struct {
	Meta *MetaTag
}

const (
	sqlTrue  = "1=1"
	sqlFalse = "0=1"

	existsTag    = "EXISTS (SELECT 1 FROM post_tags pt WHERE pt.post_id = p.id AND pt.tag_id = ?)"
	existsAnyTag = "EXISTS (SELECT 1 FROM post_tags pt WHERE pt.post_id = p.id AND pt.tag_id IN (SELECT value FROM json_each(?)))"
)

// Compile renders e as a condition over posts aliased p.
func Compile(e Expr) storage.Where {
	b := &whereBuilder{}
	e.compile(b)
	return storage.Where{Clause: b.sb.String(), Args: b.args}
}

// Eval evaluates e in memory for a post carrying tags.
func Eval(e Expr, post storage.Post, tags map[int64]struct{}) bool {
	return e.eval(post, tags)
}

type whereBuilder struct {
	sb   strings.Builder
	args []any
}

func (b *whereBuilder) write(s string, args ...any) {
	b.sb.WriteString(s)
	b.args = append(b.args, args...)
}

func (b *whereBuilder) join(op string, children []Expr) {
	b.write("(")
	for i, child := range children {
		if i > 0 {
			b.write(" " + op + " ")
		}
		child.compile(b)
	}
	b.write(")")
}

func (a And) compile(b *whereBuilder) {
	switch len(a) {
	case 0:
		b.write(sqlTrue)
	case 1:
		a[0].compile(b)
	default:
		b.join("AND", a)
	}
}

func (a And) eval(post storage.Post, tags map[int64]struct{}) bool {
	for _, child := range a {
		if !child.eval(post, tags) {
			return false
		}
	}
	return true
}

func (o Or) compile(b *whereBuilder) {
	switch len(o) {
	case 0:
		b.write(sqlFalse)
	case 1:
		o[0].compile(b)
	default:
		b.join("OR", o)
	}
}

func (o Or) eval(post storage.Post, tags map[int64]struct{}) bool {
	for _, child := range o {
		if child.eval(post, tags) {
			return true
		}
	}
	return false
}

func (n Not) compile(b *whereBuilder) {
	if attr, ok := n.X.(Attr); ok {
		b.write("(" + attr.Meta.Negated() + ")")
		return
	}
	b.write("NOT (")
	n.X.compile(b)
	b.write(")")
}

func (n Not) eval(post storage.Post, tags map[int64]struct{}) bool {
	return !n.X.eval(post, tags)
}

func (h HasTag) compile(b *whereBuilder) {
	b.write(existsTag, h.ID)
}

func (h HasTag) eval(_ storage.Post, tags map[int64]struct{}) bool {
	_, ok := tags[h.ID]
	return ok
}

func (h HasAnyTag) compile(b *whereBuilder) {
	switch len(h.IDs) {
	case 0:
		b.write(sqlFalse)
	case 1:
		b.write(existsTag, h.IDs[0])
	default:
		b.write(existsAnyTag, "["+idsKey(h.IDs)+"]")
	}
}

func (h HasAnyTag) eval(_ storage.Post, tags map[int64]struct{}) bool {
	for _, id := range h.IDs {
		if _, ok := tags[id]; ok {
			return true
		}
	}
	return false
}

func (a Attr) compile(b *whereBuilder) {
	b.write("(" + a.Meta.Condition + ")")
}

func (a Attr) eval(post storage.Post, _ map[int64]struct{}) bool {
	return a.Meta.Match(post)
}
