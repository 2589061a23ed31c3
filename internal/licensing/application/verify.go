package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/markpro/internal/licensing/domain"
	"github.com/felixgeelhaar/markpro/pkg/observability"
)

// DefaultVerifyTimeout bounds a single verifier call.
const DefaultVerifyTimeout = 5 * time.Second

// VerifyService is the license verification use case behind POST /verify.
// It never reads or writes the license slot.
type VerifyService struct {
	verifier domain.Verifier
	timeout  time.Duration
	metrics  observability.Metrics
	logger   *slog.Logger
}

// NewVerifyService creates a verify use case. A non-positive timeout uses DefaultVerifyTimeout.
func NewVerifyService(verifier domain.Verifier, timeout time.Duration, metrics observability.Metrics, logger *slog.Logger) *VerifyService {
	if timeout <= 0 {
		timeout = DefaultVerifyTimeout
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &VerifyService{
		verifier: verifier,
		timeout:  timeout,
		metrics:  metrics,
		logger:   logger,
	}
}

type verifyResult struct {
	verification domain.Verification
	err          error
}

// Verify judges licenseKey. An empty key yields *domain.ValidationError.
// Every downstream failure, including a timeout, yields
// *domain.VerificationServiceError.
func (s *VerifyService) Verify(ctx context.Context, licenseKey string) (domain.Verification, error) {
	if licenseKey == "" {
		return domain.Verification{}, domain.NewKeyRequiredError()
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan verifyResult, 1)
	go func() {
		v, err := s.verifier.Verify(ctx, licenseKey)
		done <- verifyResult{verification: v, err: err}
	}()

	var res verifyResult
	select {
	case res = <-done:
	case <-ctx.Done():
		res = verifyResult{err: ctx.Err()}
	}
	s.metrics.Timing(observability.MetricVerifyDuration, time.Since(start))

	if res.err != nil {
		s.metrics.Counter(observability.MetricLicenseVerifications, 1, observability.T("result", "error"))
		s.logger.ErrorContext(ctx, "license verification failed",
			"key", domain.MaskKey(licenseKey),
			"error", res.err,
		)
		return domain.Verification{}, asServiceError(res.err)
	}

	result := "invalid"
	if res.verification.Valid {
		result = "valid"
	}
	s.metrics.Counter(observability.MetricLicenseVerifications, 1, observability.T("result", result))
	return res.verification, nil
}

func asServiceError(err error) error {
	var svcErr *domain.VerificationServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return &domain.VerificationServiceError{Err: err}
}
