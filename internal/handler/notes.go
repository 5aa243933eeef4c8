package handler

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// notesRenderer 将记录备注渲染为安全的 HTML
type notesRenderer struct {
	markdown  goldmark.Markdown
	sanitizer *bluemonday.Policy
}

func newNotesRenderer() *notesRenderer {
	return &notesRenderer{
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Linkify),
			goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
		),
		sanitizer: bluemonday.UGCPolicy(),
	}
}

func (r *notesRenderer) Render(notes string) string {
	if strings.TrimSpace(notes) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(notes), &buf); err != nil {
		return r.sanitizer.Sanitize(notes)
	}
	return strings.TrimSpace(r.sanitizer.Sanitize(buf.String()))
}
