package notes

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// PlainText renders note bodies, which are written in markdown, as single-line text.
type PlainText struct {
	parser goldmark.Markdown
}

// NewPlainText creates a PlainText renderer.
func NewPlainText() *PlainText {
	return &PlainText{
		parser: goldmark.New(
			goldmark.WithExtensions(extension.Table, extension.Strikethrough),
		),
	}
}

// Render drops markdown syntax and collapses whitespace. Link text is kept, link
// targets are not. Code blocks keep their content.
func (p *PlainText) Render(body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	content := []byte(body)
	doc := p.parser.Parser().Parse(text.NewReader(content))

	var b strings.Builder
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if node.Type() == ast.TypeBlock {
				b.WriteByte(' ')
			}
			return ast.WalkContinue, nil
		}

		switch v := node.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(content))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		case *ast.AutoLink:
			b.Write(v.Label(content))
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := v.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				b.Write(line.Value(content))
			}
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML, *ast.HTMLBlock:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return strings.Join(strings.Fields(b.String()), " ")
}
