package license

import (
	"fmt"

	"github.com/felixgeelhaar/markpro/internal/licensing/domain"
	"github.com/spf13/cobra"
)

// statusCmd shows the current license status.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current license status",
	Long: `Display the current license status including:
- License key (masked)
- Plan type
- Tier (free or premium)`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	if licenseService == nil {
		return fmt.Errorf("license service not available")
	}

	state := licenseService.Current()
	if !state.IsPremium() {
		return displayFreeTierStatus(cmd)
	}
	if state.Plan == domain.PlanTrial {
		return displayTrialStatus(cmd, state)
	}
	return displayActiveStatus(cmd, state)
}

func displayTrialStatus(cmd *cobra.Command, state domain.LicenseState) error {
	fmt.Fprintln(cmd.OutOrStdout(), "License Status: Trial")
	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprintf(cmd.OutOrStdout(), "Trial key: %s\n", state.MaskedKey())
	fmt.Fprintln(cmd.OutOrStdout(), "All Pro features are enabled during your trial.")
	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprintln(cmd.OutOrStdout(), "To continue using Pro features after the trial:")
	fmt.Fprintln(cmd.OutOrStdout(), "  markpro upgrade")
	return nil
}

func displayActiveStatus(cmd *cobra.Command, state domain.LicenseState) error {
	fmt.Fprintf(cmd.OutOrStdout(), "License: %s\n", state.MaskedKey())
	fmt.Fprintf(cmd.OutOrStdout(), "Plan: %s\n", state.Plan)
	fmt.Fprintln(cmd.OutOrStdout(), "Status: Active")
	return nil
}

func displayFreeTierStatus(cmd *cobra.Command) error {
	fmt.Fprintln(cmd.OutOrStdout(), "License Status: Free")
	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprintln(cmd.OutOrStdout(), "HTML export is available. PDF export requires Pro.")
	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprintln(cmd.OutOrStdout(), "  markpro license trial                  Start a trial")
	fmt.Fprintln(cmd.OutOrStdout(), "  markpro license activate <license-key> Activate a purchased key")
	return nil
}
