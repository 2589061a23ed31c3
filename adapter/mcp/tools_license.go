package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/markpro/internal/licensing/domain"
)

// errVerificationUnavailable hides provider details from MCP clients.
// The verify service logs the underlying failure.
var errVerificationUnavailable = errors.New("license verification unavailable")

type licenseKeyInput struct {
	LicenseKey string `json:"license_key" jsonschema:"required"`
}

type licenseStateOutput struct {
	Key     string `json:"key"`
	IsValid bool   `json:"is_valid"`
	Plan    string `json:"plan,omitempty"`
	Tier    string `json:"tier"`
}

type verifyOutput struct {
	Valid   bool   `json:"valid"`
	Plan    string `json:"plan,omitempty"`
	Message string `json:"message"`
}

func stateOutput(s domain.LicenseState) licenseStateOutput {
	return licenseStateOutput{
		Key:     s.MaskedKey(),
		IsValid: s.IsValid,
		Plan:    string(s.Plan),
		Tier:    string(s.Tier()),
	}
}

func registerLicenseTools(srv *mcp.Server, deps ToolDependencies) error {
	srv.Tool("license.status").
		Description("Show the current entitlement: masked key, plan and tier").
		Handler(licenseStatus(deps))

	srv.Tool("license.activate").
		Description("Activate a license key on this installation").
		Handler(licenseActivate(deps))

	srv.Tool("license.trial").
		Description("Start a Pro trial on this installation").
		Handler(licenseTrial(deps))

	srv.Tool("license.verify").
		Description("Check a license key without activating it").
		Handler(licenseVerify(deps))

	return nil
}

func licenseStatus(deps ToolDependencies) func(context.Context, struct{}) (licenseStateOutput, error) {
	return func(ctx context.Context, input struct{}) (licenseStateOutput, error) {
		return stateOutput(deps.License.Current()), nil
	}
}

func licenseActivate(deps ToolDependencies) func(context.Context, licenseKeyInput) (licenseStateOutput, error) {
	return func(ctx context.Context, input licenseKeyInput) (licenseStateOutput, error) {
		state, err := deps.License.Activate(ctx, input.LicenseKey)
		if err != nil {
			if errors.Is(err, domain.ErrActivationRejected) {
				return licenseStateOutput{}, domain.ErrActivationRejected
			}
			return licenseStateOutput{}, err
		}
		return stateOutput(state), nil
	}
}

func licenseTrial(deps ToolDependencies) func(context.Context, struct{}) (licenseStateOutput, error) {
	return func(ctx context.Context, input struct{}) (licenseStateOutput, error) {
		state, err := deps.License.StartTrial(ctx)
		if err != nil {
			return licenseStateOutput{}, err
		}
		return stateOutput(state), nil
	}
}

func licenseVerify(deps ToolDependencies) func(context.Context, licenseKeyInput) (verifyOutput, error) {
	return func(ctx context.Context, input licenseKeyInput) (verifyOutput, error) {
		if deps.Verify == nil {
			return verifyOutput{}, errors.New("verify service not available")
		}
		result, err := deps.Verify.Verify(ctx, input.LicenseKey)
		if err != nil {
			var validation *domain.ValidationError
			if errors.As(err, &validation) {
				return verifyOutput{}, err
			}
			return verifyOutput{}, errVerificationUnavailable
		}
		return verifyOutput{
			Valid:   result.Valid,
			Plan:    string(result.Plan),
			Message: result.Message,
		}, nil
	}
}
