// Package domain defines export formats, artifacts and the collaborator ports
// used to render and export Markdown documents.
package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Format identifies an export artifact type.
type Format string

const (
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
)

// ErrUnsupportedFormat is returned for unknown export formats.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatHTML, FormatPDF:
		return Format(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// MIMEType returns the artifact content type.
func (f Format) MIMEType() string {
	switch f {
	case FormatHTML:
		return "text/html"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// IsPremium reports whether exporting this format requires a premium license.
func (f Format) IsPremium() bool {
	return f == FormatPDF
}

// FilenamePrefix starts every exported filename.
const FilenamePrefix = "markdown-export-"

// Filename returns markdown-export-<unix-ms>.<ext>.
func Filename(f Format, at time.Time) string {
	return fmt.Sprintf("%s%d.%s", FilenamePrefix, at.UnixMilli(), f)
}

// Artifact is a downloadable export result.
type Artifact struct {
	Filename string
	MIMEType string
	Content  []byte
}

// Document is the input handed to exporters: the raw Markdown and its
// sanitized HTML rendering.
type Document struct {
	Title    string
	Markdown string
	HTML     string
}

// DefaultTitle is used when a document has no explicit title.
const DefaultTitle = "Markdown Export"

// Renderer converts Markdown into a sanitized HTML fragment.
type Renderer interface {
	Render(markdown string) (string, error)
}

// Exporter turns a Document into artifact bytes for one format.
type Exporter interface {
	Format() Format
	Export(ctx context.Context, doc Document) ([]byte, error)
}

// PreviewOptions controls terminal preview rendering.
type PreviewOptions struct {
	Width int
	Dark  bool
}

// Previewer renders Markdown for display in a terminal.
type Previewer interface {
	Preview(markdown string, opts PreviewOptions) (string, error)
}
