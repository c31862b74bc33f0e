package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"tagboard/internal/contextutil"
	"tagboard/internal/service"
)

// NoteHandler serves a single post note as a rendered HTML page.
type NoteHandler struct {
	searchService service.SearchService
	parser        goldmark.Markdown
	template      *template.Template
}

// notePageData holds template data for rendered note pages.
type notePageData struct {
	Title   string
	PostID  int64
	Content template.HTML
}

// NewNoteHandler creates a new handler for rendering notes.
func NewNoteHandler(searchService service.SearchService) *NoteHandler {
	tmpl := template.Must(template.New("note").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}} &middot; post {{.PostID}}</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif;
      margin: 0 auto;
      padding: 2rem;
      max-width: 900px;
      line-height: 1.7;
    }
    header {
      margin-bottom: 2rem;
      border-bottom: 1px solid #ddd;
      padding-bottom: 1rem;
    }
    pre {
      padding: 1rem;
      overflow-x: auto;
      background: #f5f5f5;
    }
    .meta {
      color: #666;
      font-size: 0.95rem;
    }
  </style>
</head>
<body>
  <header>
    <h1>{{.Title}}</h1>
    <p class="meta">Post #{{.PostID}}</p>
  </header>
  <article>{{.Content}}</article>
</body>
</html>`))

	return &NoteHandler{
		searchService: searchService,
		// Raw HTML in note bodies is omitted.
		parser: goldmark.New(
			goldmark.WithExtensions(
				extension.Table,
				extension.Strikethrough,
				extension.Linkify,
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
		),
		template: tmpl,
	}
}

// ServeHTTP renders the requested note as HTML.
func (h *NoteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	id, err := strconv.ParseInt(strings.TrimSpace(chi.URLParam(r, "id")), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid note id", http.StatusBadRequest)
		return
	}

	note, err := h.searchService.Note(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			http.Error(w, "note not found", http.StatusNotFound)
			return
		}
		logger.ErrorContext(ctx, "failed to load note", "note_id", id, "error", err)
		http.Error(w, "failed to load note", http.StatusServiceUnavailable)
		return
	}

	htmlContent, err := h.renderMarkdown([]byte(note.Body))
	if err != nil {
		logger.ErrorContext(ctx, "failed to render markdown", "note_id", id, "error", err)
		http.Error(w, "failed to render note", http.StatusInternalServerError)
		return
	}

	title := note.Name
	if strings.TrimSpace(title) == "" {
		title = "Note"
	}
	pageData := notePageData{
		Title:   title,
		PostID:  note.PostID,
		Content: template.HTML(htmlContent),
	}

	var buf bytes.Buffer
	if err := h.template.Execute(&buf, pageData); err != nil {
		logger.ErrorContext(ctx, "failed to execute note template", "note_id", id, "error", err)
		http.Error(w, "failed to render note", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (h *NoteHandler) renderMarkdown(content []byte) (string, error) {
	var buf bytes.Buffer
	if err := h.parser.Convert(content, &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}
