package domain

import (
	"context"
	"strings"
	"unicode/utf8"
)

// Verification is the verifier's judgment on a license key.
type Verification struct {
	Valid   bool   `json:"valid"`
	Plan    Plan   `json:"plan"`
	Message string `json:"message"`
}

// Verification messages.
const (
	MessageValid   = "License is valid"
	MessageInvalid = "Invalid license key"
)

// NewVerification builds a Verification, keeping plan empty when invalid.
func NewVerification(valid bool, plan Plan) Verification {
	if !valid {
		return Verification{Valid: false, Plan: PlanNone, Message: MessageInvalid}
	}
	if plan == PlanNone {
		plan = PlanPro
	}
	return Verification{Valid: true, Plan: plan, Message: MessageValid}
}

// Verifier judges a license key. Implementations must not touch persisted state.
// Implementations return *VerificationServiceError when they cannot reach a decision.
type Verifier interface {
	Verify(ctx context.Context, licenseKey string) (Verification, error)
}

// ActivationPolicy is the local heuristic used by Activate.
type ActivationPolicy interface {
	Accept(key string) bool
}

// MinActivationKeyLength is the exclusive lower bound on activatable key length.
const MinActivationKeyLength = 10

// LengthPolicy accepts keys strictly longer than MinExclusive characters.
type LengthPolicy struct {
	MinExclusive int
}

// DefaultActivationPolicy returns the policy applied to user-supplied keys.
func DefaultActivationPolicy() LengthPolicy {
	return LengthPolicy{MinExclusive: MinActivationKeyLength}
}

// Accept implements ActivationPolicy.
func (p LengthPolicy) Accept(key string) bool {
	return key != "" && utf8.RuneCountInString(key) > p.MinExclusive
}

// TokenGenerator synthesizes fresh trial keys.
type TokenGenerator interface {
	NewTrialKey() (string, error)
}

// PlanForKey classifies a key using the substring convention shared by
// trial tokens and issued keys. It returns PlanNone when neither marker is present.
func PlanForKey(key string) Plan {
	switch {
	case strings.Contains(key, "TRIAL"):
		return PlanTrial
	case strings.Contains(key, "PRO"):
		return PlanPro
	default:
		return PlanNone
	}
}
