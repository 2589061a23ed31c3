package application_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/felixgeelhaar/markpro/internal/export/application"
	"github.com/felixgeelhaar/markpro/internal/export/domain"
	licensing "github.com/felixgeelhaar/markpro/internal/licensing/application"
	licensingDomain "github.com/felixgeelhaar/markpro/internal/licensing/domain"
	"github.com/felixgeelhaar/markpro/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type paragraphRenderer struct{ err error }

func (r paragraphRenderer) Render(markdown string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return "<p>" + markdown + "</p>", nil
}

// recordingExporter counts calls so tests can prove it was never invoked.
type recordingExporter struct {
	format domain.Format
	calls  int
	last   domain.Document
	err    error
}

func (e *recordingExporter) Format() domain.Format { return e.format }

func (e *recordingExporter) Export(ctx context.Context, doc domain.Document) ([]byte, error) {
	e.calls++
	e.last = doc
	if e.err != nil {
		return nil, e.err
	}
	return []byte(string(e.format) + ":" + doc.HTML), nil
}

type echoPreviewer struct{}

func (echoPreviewer) Preview(markdown string, opts domain.PreviewOptions) (string, error) {
	return markdown, nil
}

type memStore struct{ slots map[string]string }

func (s *memStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok := s.slots[key]
	return v, ok, nil
}

func (s *memStore) Set(ctx context.Context, key, value string) error {
	s.slots[key] = value
	return nil
}

var fixedNow = func() time.Time { return time.UnixMilli(1700000000000) }

func newFixture(t *testing.T) (*application.Service, *licensing.Service, *recordingExporter, *recordingExporter, *observability.InMemoryMetrics) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	license := licensing.NewService(&memStore{slots: map[string]string{}}, logger)
	html := &recordingExporter{format: domain.FormatHTML}
	pdf := &recordingExporter{format: domain.FormatPDF}
	metrics := observability.NewInMemoryMetrics()

	svc := application.NewService(application.ServiceConfig{
		Renderer:  paragraphRenderer{},
		Exporters: []domain.Exporter{html, pdf},
		Previewer: echoPreviewer{},
		Gate:      license,
		Metrics:   metrics,
		Logger:    logger,
		Now:       fixedNow,
	})
	return svc, license, html, pdf, metrics
}

func TestService_ExportHTMLIsFree(t *testing.T) {
	svc, _, html, _, metrics := newFixture(t)

	artifact, err := svc.ExportHTML(context.Background(), "# hi")
	require.NoError(t, err)

	assert.Equal(t, "markdown-export-1700000000000.html", artifact.Filename)
	assert.Equal(t, "text/html", artifact.MIMEType)
	assert.Equal(t, "html:<p># hi</p>", string(artifact.Content))
	assert.Equal(t, 1, html.calls)
	assert.Equal(t, domain.DefaultTitle, html.last.Title)
	assert.Equal(t, "# hi", html.last.Markdown)
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricExports,
		observability.T("format", "html"), observability.T("result", "success")))
}

func TestService_ExportPDFOnFreeNeverInvokesExporter(t *testing.T) {
	svc, _, _, pdf, _ := newFixture(t)

	artifact, err := svc.ExportPDF(context.Background(), "# hi")

	assert.ErrorIs(t, err, licensingDomain.ErrUpgradeRequired)
	assert.Zero(t, pdf.calls)
	assert.Empty(t, artifact.Content)
}

func TestService_ExportPDFOnPremium(t *testing.T) {
	svc, license, _, pdf, _ := newFixture(t)
	_, err := license.StartTrial(context.Background())
	require.NoError(t, err)

	artifact, err := svc.ExportPDF(context.Background(), "# hi")
	require.NoError(t, err)

	assert.Equal(t, 1, pdf.calls)
	assert.Equal(t, "markdown-export-1700000000000.pdf", artifact.Filename)
	assert.Equal(t, "application/pdf", artifact.MIMEType)
}

func TestService_ExportErrors(t *testing.T) {
	t.Run("unsupported format", func(t *testing.T) {
		svc, _, _, _, _ := newFixture(t)
		_, err := svc.Export(context.Background(), domain.Format("docx"), "x")
		assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	})

	t.Run("exporter failure", func(t *testing.T) {
		svc, _, html, _, metrics := newFixture(t)
		html.err = errors.New("disk full")

		_, err := svc.ExportHTML(context.Background(), "x")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "export html: disk full")
		assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricExports,
			observability.T("format", "html"), observability.T("result", "error")))
	})

	t.Run("renderer failure", func(t *testing.T) {
		html := &recordingExporter{format: domain.FormatHTML}
		svc := application.NewService(application.ServiceConfig{
			Renderer:  paragraphRenderer{err: errors.New("bad markdown")},
			Exporters: []domain.Exporter{html},
		})

		_, err := svc.ExportHTML(context.Background(), "x")

		assert.EqualError(t, err, "bad markdown")
		assert.Zero(t, html.calls)
	})
}

func TestService_RenderAndPreview(t *testing.T) {
	svc, _, _, _, _ := newFixture(t)

	fragment, err := svc.Render(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "<p>x</p>", fragment)

	out, err := svc.Preview(context.Background(), "# x", domain.PreviewOptions{})
	require.NoError(t, err)
	assert.Equal(t, "# x", out)

	bare := application.NewService(application.ServiceConfig{Renderer: paragraphRenderer{}})
	_, err = bare.Preview(context.Background(), "x", domain.PreviewOptions{})
	assert.Error(t, err)
}
