// Package document produces export artifacts from rendered documents.
package document

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/felixgeelhaar/markpro/internal/export/domain"
)

var htmlDocument = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 800px; margin: 0 auto; padding: 2rem; line-height: 1.6; color: #1f2937; }
h1, h2, h3 { margin-top: 1.5em; }
code { background: #f3f4f6; padding: 0.2em 0.4em; border-radius: 3px; }
pre { background: #f3f4f6; padding: 1em; border-radius: 6px; overflow-x: auto; }
pre code { background: none; padding: 0; }
blockquote { border-left: 4px solid #d1d5db; margin: 0; padding-left: 1em; color: #4b5563; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #d1d5db; padding: 0.5em; text-align: left; }
a { color: #2563eb; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// HTMLExporter wraps a rendered fragment in a standalone HTML document.
type HTMLExporter struct{}

// NewHTMLExporter creates an HTML document exporter.
func NewHTMLExporter() HTMLExporter {
	return HTMLExporter{}
}

// Format implements domain.Exporter.
func (HTMLExporter) Format() domain.Format {
	return domain.FormatHTML
}

// Export implements domain.Exporter. doc.HTML must already be sanitized.
func (HTMLExporter) Export(ctx context.Context, doc domain.Document) ([]byte, error) {
	title := doc.Title
	if title == "" {
		title = domain.DefaultTitle
	}

	var buf bytes.Buffer
	err := htmlDocument.Execute(&buf, struct {
		Title string
		Body  template.HTML
	}{
		Title: title,
		Body:  template.HTML(doc.HTML), //nolint:gosec // sanitized by the renderer
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build HTML document: %w", err)
	}
	return buf.Bytes(), nil
}
