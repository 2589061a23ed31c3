package license

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/markpro/internal/licensing/domain"
	"github.com/spf13/cobra"
)

// activateCmd activates a license key.
var activateCmd = &cobra.Command{
	Use:   "activate <license-key>",
	Short: "Activate a license key to enable Pro features",
	Long: `Activate a license key to enable Markdown Pro features such as PDF export.

Keys longer than ten characters are accepted and stored on this machine.

Example:
  markpro license activate MDPRO-1234-5678-ABCD`,
	Args: cobra.ExactArgs(1),
	RunE: runActivate,
}

func init() {
	Cmd.AddCommand(activateCmd)
}

func runActivate(cmd *cobra.Command, args []string) error {
	if licenseService == nil {
		return fmt.Errorf("license service not available")
	}

	state, err := licenseService.Activate(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrActivationRejected) {
			return fmt.Errorf("invalid license key\nPlease check the key from your purchase receipt")
		}
		return fmt.Errorf("failed to activate license: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "License activated successfully!")
	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprintf(cmd.OutOrStdout(), "License: %s\n", state.MaskedKey())
	fmt.Fprintf(cmd.OutOrStdout(), "Plan: %s\n", state.Plan)
	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprintln(cmd.OutOrStdout(), "PDF export is now enabled.")

	return nil
}
