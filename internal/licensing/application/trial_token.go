package application

import (
	"fmt"

	"github.com/felixgeelhaar/markpro/internal/licensing/domain"
	"github.com/google/uuid"
)

// TrialTokenGenerator produces "TRIAL-" keys from time-ordered UUIDs,
// so rapid successive calls never collide.
type TrialTokenGenerator struct{}

// NewTrialTokenGenerator returns the default trial key generator.
func NewTrialTokenGenerator() TrialTokenGenerator {
	return TrialTokenGenerator{}
}

// NewTrialKey implements domain.TokenGenerator.
func (TrialTokenGenerator) NewTrialKey() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("uuid: %w", err)
	}
	return domain.TrialKeyPrefix + id.String(), nil
}
