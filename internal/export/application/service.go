package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/markpro/internal/export/domain"
	"github.com/felixgeelhaar/markpro/pkg/observability"
)

// Gate runs premium-only work after an entitlement check.
type Gate interface {
	RunPremium(ctx context.Context, operation string, fn func(ctx context.Context) error) error
}

// ServiceConfig holds the collaborators of the export service.
type ServiceConfig struct {
	Renderer  domain.Renderer
	Exporters []domain.Exporter
	Previewer domain.Previewer
	Gate      Gate
	Metrics   observability.Metrics
	Logger    *slog.Logger
	Now       func() time.Time
}

// Service renders, previews and exports Markdown documents.
// Premium formats are only produced after a successful gate check.
type Service struct {
	renderer  domain.Renderer
	exporters map[domain.Format]domain.Exporter
	previewer domain.Previewer
	gate      Gate
	metrics   observability.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates an export service.
func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		renderer:  cfg.Renderer,
		exporters: make(map[domain.Format]domain.Exporter, len(cfg.Exporters)),
		previewer: cfg.Previewer,
		gate:      cfg.Gate,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		now:       cfg.Now,
	}
	for _, e := range cfg.Exporters {
		s.exporters[e.Format()] = e
	}
	if s.metrics == nil {
		s.metrics = observability.NoopMetrics{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Render returns the sanitized HTML fragment for markdown.
func (s *Service) Render(ctx context.Context, markdown string) (string, error) {
	return s.renderer.Render(markdown)
}

// Preview renders markdown for a terminal.
func (s *Service) Preview(ctx context.Context, markdown string, opts domain.PreviewOptions) (string, error) {
	if s.previewer == nil {
		return "", errors.New("preview not available")
	}
	return s.previewer.Preview(markdown, opts)
}

// ExportHTML produces the standalone HTML document. It is not gated.
func (s *Service) ExportHTML(ctx context.Context, markdown string) (domain.Artifact, error) {
	return s.Export(ctx, domain.FormatHTML, markdown)
}

// ExportPDF produces the PDF document. On the free tier it returns
// licensing ErrUpgradeRequired and never invokes the PDF exporter.
func (s *Service) ExportPDF(ctx context.Context, markdown string) (domain.Artifact, error) {
	return s.Export(ctx, domain.FormatPDF, markdown)
}

// Export produces an artifact in format, gating premium formats.
func (s *Service) Export(ctx context.Context, format domain.Format, markdown string) (domain.Artifact, error) {
	exporter, ok := s.exporters[format]
	if !ok {
		return domain.Artifact{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}

	if !format.IsPremium() {
		artifact, err := s.export(ctx, exporter, markdown)
		s.record(format, err)
		return artifact, err
	}

	if s.gate == nil {
		return domain.Artifact{}, errors.New("premium gate not configured")
	}

	var artifact domain.Artifact
	err := s.gate.RunPremium(ctx, "export "+string(format), func(ctx context.Context) error {
		var err error
		artifact, err = s.export(ctx, exporter, markdown)
		return err
	})
	s.record(format, err)
	return artifact, err
}

func (s *Service) export(ctx context.Context, exporter domain.Exporter, markdown string) (domain.Artifact, error) {
	fragment, err := s.renderer.Render(markdown)
	if err != nil {
		return domain.Artifact{}, err
	}

	format := exporter.Format()
	content, err := exporter.Export(ctx, domain.Document{
		Title:    domain.DefaultTitle,
		Markdown: markdown,
		HTML:     fragment,
	})
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("export %s: %w", format, err)
	}

	artifact := domain.Artifact{
		Filename: domain.Filename(format, s.now()),
		MIMEType: format.MIMEType(),
		Content:  content,
	}
	s.logger.InfoContext(ctx, "document exported",
		"format", string(format),
		"filename", artifact.Filename,
		"size", len(content),
	)
	return artifact, nil
}

func (s *Service) record(format domain.Format, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	s.metrics.Counter(observability.MetricExports, 1,
		observability.T("format", string(format)),
		observability.T("result", result),
	)
}
