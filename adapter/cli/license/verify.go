package license

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/markpro/internal/licensing/domain"
	"github.com/spf13/cobra"
)

// verifyCmd checks a key against the verifier without activating it.
var verifyCmd = &cobra.Command{
	Use:   "verify <license-key>",
	Short: "Check a license key without activating it",
	Args:  cobra.ExactArgs(1),
	RunE:  runVerify,
}

func init() {
	Cmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	if verifyService == nil {
		return fmt.Errorf("verify service not available")
	}

	result, err := verifyService.Verify(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrLicenseKeyRequired) {
			return fmt.Errorf("license key required")
		}
		return fmt.Errorf("verification failed: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.Message)
	if result.Valid {
		fmt.Fprintf(cmd.OutOrStdout(), "Plan: %s\n", result.Plan)
	}
	return nil
}
