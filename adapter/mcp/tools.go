// Package mcp registers markpro operations as MCP tools.
package mcp

import (
	"errors"

	"github.com/felixgeelhaar/mcp-go"
	exportApp "github.com/felixgeelhaar/markpro/internal/export/application"
	licensingApp "github.com/felixgeelhaar/markpro/internal/licensing/application"
)

// ToolDependencies provides the services behind MCP tools.
type ToolDependencies struct {
	License    *licensingApp.Service
	Verify     *licensingApp.VerifyService
	Export     *exportApp.Service
	UpgradeURL string
}

// RegisterTools registers the license and export tools.
func RegisterTools(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	if deps.License == nil {
		return errors.New("license service is required")
	}

	if err := registerLicenseTools(srv, deps); err != nil {
		return err
	}
	if err := registerExportTools(srv, deps); err != nil {
		return err
	}
	return nil
}
