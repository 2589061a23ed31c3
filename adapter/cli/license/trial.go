package license

import (
	"fmt"

	"github.com/spf13/cobra"
)

// trialCmd starts a trial.
var trialCmd = &cobra.Command{
	Use:   "trial",
	Short: "Start a Pro trial",
	Long: `Start a Pro trial on this machine.

A trial key is generated and stored like a purchased license.
Running trial again replaces the stored key with a new trial key.`,
	Args: cobra.NoArgs,
	RunE: runTrial,
}

func init() {
	Cmd.AddCommand(trialCmd)
}

func runTrial(cmd *cobra.Command, args []string) error {
	if licenseService == nil {
		return fmt.Errorf("license service not available")
	}

	state, err := licenseService.StartTrial(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to start trial: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Trial started!")
	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprintf(cmd.OutOrStdout(), "Trial key: %s\n", state.MaskedKey())
	fmt.Fprintln(cmd.OutOrStdout(), "All Pro features are enabled during your trial.")
	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprintln(cmd.OutOrStdout(), "To keep Pro features, purchase a license:")
	fmt.Fprintln(cmd.OutOrStdout(), "  markpro upgrade")

	return nil
}
