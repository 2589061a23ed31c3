package markdown

import (
	"fmt"

	"github.com/charmbracelet/glamour"

	"github.com/felixgeelhaar/markpro/internal/export/domain"
)

// DefaultPreviewWidth is the wrap width when none is given.
const DefaultPreviewWidth = 80

// TerminalPreviewer renders Markdown for a terminal with glamour.
type TerminalPreviewer struct{}

// NewTerminalPreviewer creates a terminal previewer.
func NewTerminalPreviewer() TerminalPreviewer {
	return TerminalPreviewer{}
}

// Preview implements domain.Previewer. Dark selects glamour's dark style.
func (TerminalPreviewer) Preview(markdown string, opts domain.PreviewOptions) (string, error) {
	width := opts.Width
	if width <= 0 {
		width = DefaultPreviewWidth
	}
	style := "light"
	if opts.Dark {
		style = "dark"
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("can't initialize the Markdown renderer: %w", err)
	}
	defer renderer.Close()

	out, err := renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("can't render preview: %w", err)
	}
	return out, nil
}
