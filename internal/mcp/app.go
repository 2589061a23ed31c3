package mcp

import (
	mcplocal "github.com/felixgeelhaar/markpro/adapter/mcp"
	"github.com/felixgeelhaar/markpro/internal/app"
)

// NewToolDependencies exposes the container's services to MCP tools.
func NewToolDependencies(container *app.Container) mcplocal.ToolDependencies {
	return mcplocal.ToolDependencies{
		License:    container.LicenseService,
		Verify:     container.VerifyService,
		Export:     container.ExportService,
		UpgradeURL: container.Config.UpgradeURL,
	}
}
