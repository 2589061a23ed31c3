package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrLicenseKeyRequired indicates the verifier was called without a key.
	ErrLicenseKeyRequired = errors.New("license key required")

	// ErrVerificationService indicates the downstream verification service failed.
	ErrVerificationService = errors.New("license verification service unavailable")

	// ErrActivationRejected indicates the local activation heuristic refused a key.
	ErrActivationRejected = errors.New("invalid license key")

	// ErrUpgradeRequired indicates a premium-only action was attempted on the free tier.
	ErrUpgradeRequired = errors.New("premium license required")
)

// ValidationError reports bad or missing input to the verifier.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is matches ErrLicenseKeyRequired for missing license keys.
func (e *ValidationError) Is(target error) bool {
	return target == ErrLicenseKeyRequired && e.Field == "licenseKey"
}

// NewKeyRequiredError returns the ValidationError for an absent license key.
func NewKeyRequiredError() *ValidationError {
	return &ValidationError{Field: "licenseKey", Reason: "required"}
}

// VerificationServiceError wraps a downstream failure of the verifier.
// Callers must treat it as "cannot confirm premium".
type VerificationServiceError struct {
	StatusCode int
	Err        error
}

func (e *VerificationServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d): %v", ErrVerificationService, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", ErrVerificationService, e.Err)
}

func (e *VerificationServiceError) Unwrap() []error {
	return []error{ErrVerificationService, e.Err}
}

// ActivationRejectedError is returned when Activate refuses a key.
type ActivationRejectedError struct {
	MaskedKey string
}

func (e *ActivationRejectedError) Error() string {
	if e.MaskedKey == "" {
		return ErrActivationRejected.Error()
	}
	return fmt.Sprintf("%s: %s", ErrActivationRejected, e.MaskedKey)
}

func (e *ActivationRejectedError) Unwrap() error {
	return ErrActivationRejected
}
