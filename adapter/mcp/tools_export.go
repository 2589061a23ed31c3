package mcp

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
	exportDomain "github.com/felixgeelhaar/markpro/internal/export/domain"
	licensingDomain "github.com/felixgeelhaar/markpro/internal/licensing/domain"
)

type exportInput struct {
	Markdown string `json:"markdown" jsonschema:"required"`
}

type artifactOutput struct {
	Filename string `json:"filename"`
	MIMEType string `json:"mime_type"`
	Encoding string `json:"encoding"`
	Content  string `json:"content"`
}

func registerExportTools(srv *mcp.Server, deps ToolDependencies) error {
	srv.Tool("export.html").
		Description("Export Markdown as a standalone HTML document").
		Handler(exportTool(deps, exportDomain.FormatHTML))

	srv.Tool("export.pdf").
		Description("Export Markdown as a PDF document (requires Pro or trial)").
		Handler(exportTool(deps, exportDomain.FormatPDF))

	return nil
}

func exportTool(deps ToolDependencies, format exportDomain.Format) func(context.Context, exportInput) (artifactOutput, error) {
	return func(ctx context.Context, input exportInput) (artifactOutput, error) {
		if deps.Export == nil {
			return artifactOutput{}, errors.New("export service not available")
		}

		artifact, err := deps.Export.Export(ctx, format, input.Markdown)
		if err != nil {
			if errors.Is(err, licensingDomain.ErrUpgradeRequired) && deps.UpgradeURL != "" {
				return artifactOutput{}, fmt.Errorf("%w: upgrade at %s", err, deps.UpgradeURL)
			}
			return artifactOutput{}, err
		}

		out := artifactOutput{
			Filename: artifact.Filename,
			MIMEType: artifact.MIMEType,
		}
		if format == exportDomain.FormatHTML {
			out.Encoding = "utf-8"
			out.Content = string(artifact.Content)
		} else {
			out.Encoding = "base64"
			out.Content = base64.StdEncoding.EncodeToString(artifact.Content)
		}
		return out, nil
	}
}
