// internal/scaffold/render.go
package scaffold

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

var (
	markdownRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(
				util.Prioritized(newMDLinkTransformer(), 100),
			),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)
	htmlSanitizer = bluemonday.UGCPolicy()

	notePage = template.Must(template.New("note").Parse(notePageTemplate))
)

// renderNote converts a markdown usage note into a standalone HTML page.
// The body is sanitized unless unsafe is set.
func renderNote(title string, markdown []byte, unsafe bool) ([]byte, error) {
	var body bytes.Buffer
	if err := markdownRenderer.Convert(markdown, &body); err != nil {
		return nil, fmt.Errorf("failed to render markdown with goldmark: %w", err)
	}

	content := body.Bytes()
	if !unsafe {
		content = htmlSanitizer.SanitizeBytes(content)
	}

	var page bytes.Buffer
	data := struct {
		Title   string
		Content template.HTML
	}{
		Title:   title,
		Content: template.HTML(content),
	}
	if err := notePage.Execute(&page, data); err != nil {
		return nil, fmt.Errorf("failed to execute note template: %w", err)
	}
	return page.Bytes(), nil
}

const notePageTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{ .Title }}</title>
  <style>
    body { font-family: sans-serif; max-width: 700px; margin: 2em auto; padding: 0 1em; line-height: 1.6; color: #222; }
    pre { background: #f4f4f4; padding: 1em; overflow-x: auto; }
  </style>
</head>
<body>
{{ .Content }}
</body>
</html>
`
