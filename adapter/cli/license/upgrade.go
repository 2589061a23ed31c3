package license

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"
)

var noBrowser bool

// UpgradeCmd is exposed at the root level as `markpro upgrade`.
var UpgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade to Markdown Pro",
	Long: `Open the Markdown Pro checkout page in your browser.

After purchase, you'll receive a license key via email.
Activate it with: markpro license activate <license-key>`,
	RunE: runUpgrade,
}

func runUpgrade(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(cmd.OutOrStdout(), "Upgrade to Markdown Pro")
	fmt.Fprintln(cmd.OutOrStdout(), "=======================")
	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprintln(cmd.OutOrStdout(), "  - PDF export       Print-ready documents from any Markdown file")
	fmt.Fprintln(cmd.OutOrStdout())

	if !noBrowser && openBrowser(upgradeURL) {
		fmt.Fprintln(cmd.OutOrStdout(), "Opening checkout in your browser...")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "Please visit:")
	}
	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", upgradeURL)
	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprintln(cmd.OutOrStdout(), "After purchase, activate with:")
	fmt.Fprintln(cmd.OutOrStdout(), "  markpro license activate <license-key>")
	fmt.Fprintln(cmd.OutOrStdout())

	return nil
}

func init() {
	UpgradeCmd.Flags().BoolVar(&noBrowser, "no-browser", false, "print the checkout URL without opening a browser")
}

// openBrowser attempts to open a URL in the default browser.
func openBrowser(url string) bool {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return false
	}

	return cmd.Start() == nil
}
