package verifier

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/felixgeelhaar/markpro/internal/licensing/domain"
	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
)

const verifyPath = "/v2/licenses/verify"

var errUnexpectedResponse = errors.New("unexpected response from license server")

// LicenseServerConfig configures the remote license server client.
type LicenseServerConfig struct {
	BaseURL          string
	ProductPermalink string
	Token            string
	Timeout          time.Duration
	BreakerFailures  uint32
	BreakerTimeout   time.Duration
}

// DefaultLicenseServerConfig returns defaults for the hosted license server.
func DefaultLicenseServerConfig() LicenseServerConfig {
	return LicenseServerConfig{
		BaseURL:          "https://api.gumroad.com",
		ProductPermalink: "markdown-pro",
		Timeout:          5 * time.Second,
		BreakerFailures:  5,
		BreakerTimeout:   30 * time.Second,
	}
}

// purchase is the subset of the license server purchase record we map.
type purchase struct {
	Refunded        bool   `json:"refunded"`
	Chargebacked    bool   `json:"chargebacked"`
	Disputed        bool   `json:"disputed"`
	FreeTrialEndsOn string `json:"free_trial_ends_on"`
}

type verifyResponse struct {
	Success  bool      `json:"success"`
	Message  string    `json:"message"`
	Uses     int       `json:"uses"`
	Purchase *purchase `json:"purchase"`
}

// LicenseServerVerifier asks a remote license server about a key,
// identified by product permalink. Calls go through a circuit breaker.
type LicenseServerVerifier struct {
	client    *resty.Client
	permalink string
	breaker   *gobreaker.CircuitBreaker[domain.Verification]
	logger    *slog.Logger
}

// NewLicenseServerVerifier creates a remote verifier.
func NewLicenseServerVerifier(cfg LicenseServerConfig, logger *slog.Logger) *LicenseServerVerifier {
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultLicenseServerConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.ProductPermalink == "" {
		cfg.ProductPermalink = defaults.ProductPermalink
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = defaults.BreakerFailures
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = defaults.BreakerTimeout
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "markpro-license-client")
	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}

	failures := cfg.BreakerFailures
	breaker := gobreaker.NewCircuitBreaker[domain.Verification](gobreaker.Settings{
		Name:        "license-server",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("license server circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return &LicenseServerVerifier{
		client:    client,
		permalink: cfg.ProductPermalink,
		breaker:   breaker,
		logger:    logger,
	}
}

// Verify implements domain.Verifier.
func (v *LicenseServerVerifier) Verify(ctx context.Context, licenseKey string) (domain.Verification, error) {
	if licenseKey == "" {
		return domain.Verification{}, domain.NewKeyRequiredError()
	}

	result, err := v.breaker.Execute(func() (domain.Verification, error) {
		return v.call(ctx, licenseKey)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return domain.Verification{}, &domain.VerificationServiceError{Err: err}
		}
		return domain.Verification{}, err
	}
	return result, nil
}

// State reports the breaker state.
func (v *LicenseServerVerifier) State() gobreaker.State {
	return v.breaker.State()
}

// Ping fails while the breaker is open, when verifications are refused without a call.
func (v *LicenseServerVerifier) Ping(ctx context.Context) error {
	if v.breaker.State() == gobreaker.StateOpen {
		return gobreaker.ErrOpenState
	}
	return nil
}

func (v *LicenseServerVerifier) call(ctx context.Context, licenseKey string) (domain.Verification, error) {
	var body verifyResponse
	resp, err := v.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"product_permalink": v.permalink,
			"license_key":       licenseKey,
		}).
		SetResult(&body).
		SetError(&body).
		Post(verifyPath)
	if err != nil {
		return domain.Verification{}, &domain.VerificationServiceError{Err: err}
	}

	status := resp.StatusCode()
	switch {
	case status == http.StatusNotFound && !body.Success:
		v.logger.DebugContext(ctx, "license server rejected key", "key", domain.MaskKey(licenseKey))
		return domain.NewVerification(false, domain.PlanNone), nil
	case resp.IsError():
		return domain.Verification{}, &domain.VerificationServiceError{
			StatusCode: status,
			Err:        errUnexpectedResponse,
		}
	}

	return mapResponse(body), nil
}

func mapResponse(body verifyResponse) domain.Verification {
	if !body.Success || body.Purchase == nil {
		return domain.NewVerification(false, domain.PlanNone)
	}
	p := body.Purchase
	if p.Refunded || p.Chargebacked || p.Disputed {
		return domain.NewVerification(false, domain.PlanNone)
	}
	if p.FreeTrialEndsOn != "" {
		return domain.NewVerification(true, domain.PlanTrial)
	}
	return domain.NewVerification(true, domain.PlanPro)
}
