package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/felixgeelhaar/markpro/internal/licensing/domain"
	"github.com/felixgeelhaar/markpro/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/markpro/pkg/observability"
)

// Service is the entitlement state machine. It owns the in-memory
// LicenseState and the persisted license slot.
type Service struct {
	store     domain.SlotStore
	policy    domain.ActivationPolicy
	tokens    domain.TokenGenerator
	publisher eventbus.Publisher
	metrics   observability.Metrics
	logger    *slog.Logger

	mu    sync.RWMutex
	state domain.LicenseState
}

// Option configures a Service.
type Option func(*Service)

// WithActivationPolicy overrides the local key heuristic.
func WithActivationPolicy(p domain.ActivationPolicy) Option {
	return func(s *Service) { s.policy = p }
}

// WithTokenGenerator overrides the trial key generator.
func WithTokenGenerator(g domain.TokenGenerator) Option {
	return func(s *Service) { s.tokens = g }
}

// WithPublisher sets the entitlement event publisher.
func WithPublisher(p eventbus.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a license service in the Free state.
func NewService(store domain.SlotStore, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		store:   store,
		policy:  domain.DefaultActivationPolicy(),
		tokens:  NewTrialTokenGenerator(),
		metrics: observability.NoopMetrics{},
		logger:  logger,
		state:   domain.NewFreeState(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current returns a snapshot of the license state.
func (s *Service) Current() domain.LicenseState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Restore loads the persisted license slot. Any non-empty stored key grants
// Premium without consulting a verifier. Storage failures are logged and
// leave the state untouched.
func (s *Service) Restore(ctx context.Context) domain.LicenseState {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok, err := s.store.Get(ctx, domain.SlotLicense)
	if err != nil {
		s.logger.WarnContext(ctx, "license restore failed", "error", err)
		s.metrics.Counter(observability.MetricLicenseRestores, 1, observability.T("result", "error"))
		return s.state
	}
	if !ok || key == "" {
		s.metrics.Counter(observability.MetricLicenseRestores, 1, observability.T("result", "free"))
		return s.state
	}

	s.state = domain.NewPremiumState(key, domain.PlanPro)
	s.metrics.Counter(observability.MetricLicenseRestores, 1, observability.T("result", "premium"))
	s.logger.InfoContext(ctx, "license restored", "key", s.state.MaskedKey())
	s.publish(ctx, domain.RoutingKeyLicenseRestored, domain.SourceRestore)

	return s.state
}

// Activate applies the local activation policy to a user-supplied key.
// On rejection the state and storage are left unchanged and an
// *domain.ActivationRejectedError is returned.
func (s *Service) Activate(ctx context.Context, key string) (domain.LicenseState, error) {
	return s.activate(ctx, key, domain.PlanPro, domain.SourceActivate)
}

// StartTrial synthesizes a fresh trial key and activates it.
func (s *Service) StartTrial(ctx context.Context) (domain.LicenseState, error) {
	key, err := s.tokens.NewTrialKey()
	if err != nil {
		return s.Current(), fmt.Errorf("generate trial key: %w", err)
	}
	state, err := s.activate(ctx, key, domain.PlanTrial, domain.SourceTrial)
	if err == nil {
		s.logger.InfoContext(ctx, "trial started", "key", state.MaskedKey())
	}
	return state, err
}

func (s *Service) activate(ctx context.Context, key string, plan domain.Plan, source string) (domain.LicenseState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.policy.Accept(key) {
		s.metrics.Counter(observability.MetricLicenseActivations, 1, observability.T("result", "rejected"))
		s.logger.InfoContext(ctx, "license activation rejected", "key", domain.MaskKey(key), "source", source)
		return s.state, &domain.ActivationRejectedError{MaskedKey: domain.MaskKey(key)}
	}

	if err := s.store.Set(ctx, domain.SlotLicense, key); err != nil {
		s.metrics.Counter(observability.MetricLicenseActivations, 1, observability.T("result", "error"))
		s.logger.ErrorContext(ctx, "failed to persist license", "key", domain.MaskKey(key), "error", err)
		return s.state, fmt.Errorf("persist license: %w", err)
	}

	s.state = domain.NewPremiumState(key, plan)
	s.metrics.Counter(observability.MetricLicenseActivations, 1, observability.T("result", "accepted"))
	s.logger.InfoContext(ctx, "license activated",
		"key", s.state.MaskedKey(),
		"plan", s.state.Plan.String(),
		"source", source,
	)
	s.publish(ctx, domain.RoutingKeyLicenseActivated, source)

	return s.state, nil
}

// Gate checks whether a premium-only operation may run.
// It returns domain.ErrUpgradeRequired when the state is Free.
func (s *Service) Gate(ctx context.Context, operation string) error {
	state := s.Current()
	if !state.IsPremium() {
		s.metrics.Counter(observability.MetricGateChecks, 1, observability.T("result", "denied"))
		s.logger.DebugContext(ctx, "premium gate denied", "operation", operation)
		return fmt.Errorf("%s: %w", operation, domain.ErrUpgradeRequired)
	}
	s.metrics.Counter(observability.MetricGateChecks, 1, observability.T("result", "allowed"))
	return nil
}

// RunPremium runs fn only after a successful Gate check.
func (s *Service) RunPremium(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	if err := s.Gate(ctx, operation); err != nil {
		return err
	}
	return fn(ctx)
}

// publish must be called with s.mu held.
func (s *Service) publish(ctx context.Context, routingKey, source string) {
	event := domain.NewLicenseEvent(routingKey, s.state, source)
	event.CorrelationID = observability.CorrelationIDFromContext(ctx)
	if err := eventbus.PublishJSON(ctx, s.publisher, routingKey, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish license event",
			"routing_key", routingKey,
			"error", err,
		)
	}
}
