package domain

import (
	"strings"
)

// Plan is the tier classification attached to a license.
type Plan string

const (
	// PlanNone is the plan of every invalid or absent license.
	PlanNone Plan = ""
	// PlanTrial is granted to trial keys.
	PlanTrial Plan = "trial"
	// PlanPro is granted to purchased keys.
	PlanPro Plan = "pro"
)

// String returns the plan label, "none" for PlanNone.
func (p Plan) String() string {
	if p == PlanNone {
		return "none"
	}
	return string(p)
}

// Tier is the entitlement state derived from a LicenseState.
type Tier string

const (
	// TierFree is the initial state of every session.
	TierFree Tier = "free"
	// TierPremium unlocks gated features.
	TierPremium Tier = "premium"
)

// TrialKeyPrefix is prepended to every synthesized trial token.
const TrialKeyPrefix = "TRIAL-"

// LicenseState is the in-memory representation of the installation's entitlement.
// IsValid and Plan are derived; only the state machine sets them.
type LicenseState struct {
	Key     string `json:"key"`
	IsValid bool   `json:"isValid"`
	Plan    Plan   `json:"plan"`
}

// NewFreeState returns the state every session starts from.
func NewFreeState() LicenseState {
	return LicenseState{}
}

// NewPremiumState returns a valid state for key with the given plan.
// A PlanNone plan is normalized to PlanPro.
func NewPremiumState(key string, plan Plan) LicenseState {
	if plan == PlanNone {
		plan = PlanPro
	}
	return LicenseState{Key: key, IsValid: true, Plan: plan}
}

// Tier reports whether the state is Free or Premium.
func (s LicenseState) Tier() Tier {
	if s.IsValid {
		return TierPremium
	}
	return TierFree
}

// IsPremium reports whether gated features are unlocked.
func (s LicenseState) IsPremium() bool {
	return s.Tier() == TierPremium
}

// MaskedKey returns the key with the middle masked for display and logs.
// e.g., "TRIAL-****-****-7c1e"
func (s LicenseState) MaskedKey() string {
	return MaskKey(s.Key)
}

// MaskKey masks all but the first and last four characters of key.
func MaskKey(key string) string {
	if key == "" {
		return ""
	}
	r := []rune(key)
	if len(r) <= 4 {
		return key
	}
	if len(r) < 12 {
		return string(r[:4]) + strings.Repeat("*", len(r)-4)
	}
	return string(r[:4]) + "****-****-" + string(r[len(r)-4:])
}

// IsTrialKey reports whether key was synthesized by a trial start.
func IsTrialKey(key string) bool {
	return strings.HasPrefix(key, TrialKeyPrefix)
}
