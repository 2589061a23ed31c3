package license

import (
	"github.com/felixgeelhaar/markpro/internal/licensing/application"
	"github.com/spf13/cobra"
)

var (
	licenseService *application.Service
	verifyService  *application.VerifyService
	upgradeURL     = "https://gumroad.com/l/markdown-pro"
)

// SetLicenseService sets the license service for CLI commands.
func SetLicenseService(s *application.Service) {
	licenseService = s
}

// SetVerifyService sets the verifier used by `license verify`.
func SetVerifyService(s *application.VerifyService) {
	verifyService = s
}

// SetUpgradeURL sets the checkout page printed and opened by upgrade.
func SetUpgradeURL(url string) {
	if url != "" {
		upgradeURL = url
	}
}

// Cmd is the parent command for license operations.
var Cmd = &cobra.Command{
	Use:   "license",
	Short: "Manage your Markdown Pro license",
	Long: `Manage your Markdown Pro license.

Use these commands to activate a key, start a trial, check status,
or verify a key without activating it. For purchase options, run:
markpro upgrade`,
}

func init() {
	Cmd.AddCommand(statusCmd)
}
