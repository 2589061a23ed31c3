// Package verifier contains implementations of domain.Verifier.
package verifier

import (
	"context"

	"github.com/felixgeelhaar/markpro/internal/licensing/domain"
)

// SubstringVerifier is the placeholder policy: a key is valid when it
// contains "PRO" or "TRIAL" (case-sensitive). TRIAL wins when both appear.
type SubstringVerifier struct{}

// NewSubstringVerifier returns the stub verifier.
func NewSubstringVerifier() SubstringVerifier {
	return SubstringVerifier{}
}

// Verify implements domain.Verifier. It has no side effects.
func (SubstringVerifier) Verify(ctx context.Context, licenseKey string) (domain.Verification, error) {
	if licenseKey == "" {
		return domain.Verification{}, domain.NewKeyRequiredError()
	}
	plan := domain.PlanForKey(licenseKey)
	return domain.NewVerification(plan != domain.PlanNone, plan), nil
}
