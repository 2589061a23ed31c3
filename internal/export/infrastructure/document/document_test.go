package document_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/felixgeelhaar/markpro/internal/export/domain"
	"github.com/felixgeelhaar/markpro/internal/export/infrastructure/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `# Welcome to Markdown Pro

## Start writing...

- This is a **bold** feature
- *Italic* text support
- ` + "`Code snippets`" + `
- [Links](https://example.com)

1. first
2. second
   - nested

> a quote

---

| Plan | Price |
|------|-------|
| Pro  | 9     |

` + "```javascript\nconsole.log(\"Hello World!\");\n```" + `
`

func TestHTMLExporter(t *testing.T) {
	exp := document.NewHTMLExporter()
	assert.Equal(t, domain.FormatHTML, exp.Format())

	out, err := exp.Export(context.Background(), domain.Document{HTML: "<h1>Hi</h1>"})
	require.NoError(t, err)

	html := string(out)
	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, `<meta charset="UTF-8">`)
	assert.Contains(t, html, "<title>Markdown Export</title>")
	assert.Contains(t, html, "<style>")
	assert.Contains(t, html, "<h1>Hi</h1>")
}

func TestHTMLExporter_EscapesTitle(t *testing.T) {
	out, err := document.NewHTMLExporter().Export(context.Background(), domain.Document{Title: "<b>x</b>"})
	require.NoError(t, err)

	assert.Contains(t, string(out), "<title>&lt;b&gt;x&lt;/b&gt;</title>")
}

func TestPDFExporter(t *testing.T) {
	exp := document.NewPDFExporter()
	assert.Equal(t, domain.FormatPDF, exp.Format())

	out, err := exp.Export(context.Background(), domain.Document{Markdown: sample})
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Contains(t, string(out), "%%EOF")
}

func TestPDFExporter_EmptyDocument(t *testing.T) {
	out, err := document.NewPDFExporter().Export(context.Background(), domain.Document{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestPDFExporter_NonLatinText(t *testing.T) {
	_, err := document.NewPDFExporter().Export(context.Background(), domain.Document{Markdown: "Café — naïve ✓"})
	assert.NoError(t, err)
}

func TestPDFExporter_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := document.NewPDFExporter().Export(ctx, domain.Document{Markdown: sample})
	assert.ErrorIs(t, err, context.Canceled)
}
