package document

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/felixgeelhaar/markpro/internal/export/domain"
)

const (
	pageMargin   = 20.0
	bodyFontSize = 11.0
	codeFontSize = 9.5
	indentStep   = 6.0
)

var headingSizes = map[int]float64{1: 20, 2: 16, 3: 14, 4: 12, 5: 11, 6: 11}

// PDFExporter lays out the Markdown AST on A4 pages.
type PDFExporter struct {
	parser parser.Parser
}

// NewPDFExporter creates a PDF exporter with GFM parsing.
func NewPDFExporter() *PDFExporter {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	return &PDFExporter{parser: md.Parser()}
}

// Format implements domain.Exporter.
func (e *PDFExporter) Format() domain.Format {
	return domain.FormatPDF
}

// Export implements domain.Exporter.
func (e *PDFExporter) Export(ctx context.Context, doc domain.Document) ([]byte, error) {
	title := doc.Title
	if title == "" {
		title = domain.DefaultTitle
	}

	source := []byte(doc.Markdown)
	root := e.parser.Parse(text.NewReader(source))

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetCreator("markpro", true)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()

	w := &pdfWriter{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		source: source,
	}
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		w.block(n, 0)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to lay out PDF: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

type pdfWriter struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	source []byte
}

func (w *pdfWriter) block(n ast.Node, indent float64) {
	switch node := n.(type) {
	case *ast.Heading:
		size, ok := headingSizes[node.Level]
		if !ok {
			size = bodyFontSize
		}
		w.pdf.Ln(2)
		w.pdf.SetFont("Helvetica", "B", size)
		w.write(w.inlineText(node), indent, size*0.5)
		w.pdf.Ln(2)

	case *ast.Paragraph, *ast.TextBlock:
		w.pdf.SetFont("Helvetica", "", bodyFontSize)
		w.write(w.inlineText(node), indent, 5.5)
		w.pdf.Ln(2)

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		w.pdf.SetFont("Courier", "", codeFontSize)
		w.pdf.SetFillColor(243, 244, 246)
		w.pdf.SetX(pageMargin + indent)
		w.pdf.MultiCell(0, 4.5, w.tr(w.codeText(node)), "", "L", true)
		w.pdf.Ln(2)

	case *ast.Blockquote:
		w.pdf.SetTextColor(75, 85, 99)
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			w.block(c, indent+indentStep)
		}
		w.pdf.SetTextColor(0, 0, 0)

	case *ast.List:
		num := node.Start
		if num == 0 {
			num = 1
		}
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			marker := "-"
			if node.IsOrdered() {
				marker = fmt.Sprintf("%d.", num)
				num++
			}
			w.listItem(item, marker, indent)
		}
		w.pdf.Ln(1)

	case *ast.ThematicBreak:
		pageW, _ := w.pdf.GetPageSize()
		y := w.pdf.GetY() + 2
		w.pdf.Line(pageMargin, y, pageW-pageMargin, y)
		w.pdf.Ln(6)

	case *east.Table:
		w.table(node)

	case *ast.HTMLBlock:
		// raw HTML is not rendered

	default:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			w.block(c, indent)
		}
	}
}

func (w *pdfWriter) listItem(item ast.Node, marker string, indent float64) {
	first := true
	for c := item.FirstChild(); c != nil; c = c.NextSibling() {
		if _, nested := c.(*ast.List); nested {
			w.block(c, indent+indentStep)
			continue
		}
		line := w.inlineText(c)
		if first {
			line = marker + " " + line
			first = false
		}
		w.pdf.SetFont("Helvetica", "", bodyFontSize)
		w.write(line, indent+indentStep/2, 5.5)
	}
}

func (w *pdfWriter) table(t *east.Table) {
	cols := 0
	for c := t.FirstChild(); c != nil; c = c.NextSibling() {
		if n := c.ChildCount(); n > cols {
			cols = n
		}
	}
	if cols == 0 {
		return
	}
	pageW, _ := w.pdf.GetPageSize()
	colW := (pageW - 2*pageMargin) / float64(cols)

	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		style := ""
		if _, header := row.(*east.TableHeader); header {
			style = "B"
		}
		w.pdf.SetFont("Helvetica", style, 10)
		w.pdf.SetX(pageMargin)
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			w.pdf.CellFormat(colW, 7, w.tr(w.inlineText(cell)), "1", 0, "L", false, 0, "")
		}
		w.pdf.Ln(-1)
	}
	w.pdf.Ln(3)
}

func (w *pdfWriter) write(s string, indent, lineHeight float64) {
	w.pdf.SetX(pageMargin + indent)
	w.pdf.MultiCell(0, lineHeight, w.tr(s), "", "L", false)
}

func (w *pdfWriter) codeText(n ast.Node) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(w.source))
	}
	return strings.TrimRight(b.String(), "\n")
}

// inlineText flattens inline content; link targets follow their text.
func (w *pdfWriter) inlineText(n ast.Node) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if link, ok := c.(*ast.Link); ok && len(link.Destination) > 0 {
				b.WriteString(" (" + string(link.Destination) + ")")
			}
			return ast.WalkContinue, nil
		}
		switch node := c.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(w.source))
			switch {
			case node.HardLineBreak():
				b.WriteByte('\n')
			case node.SoftLineBreak():
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(node.Value)
		case *ast.AutoLink:
			b.Write(node.URL(w.source))
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
