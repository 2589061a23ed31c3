package application_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/felixgeelhaar/markpro/internal/licensing/application"
	"github.com/felixgeelhaar/markpro/internal/licensing/domain"
	"github.com/felixgeelhaar/markpro/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockStore is an in-memory slot store that counts writes.
type mockStore struct {
	mu     sync.Mutex
	slots  map[string]string
	sets   int
	getErr error
	setErr error
}

func newMockStore() *mockStore {
	return &mockStore{slots: make(map[string]string)}
}

func (s *mockStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", false, s.getErr
	}
	v, ok := s.slots[key]
	return v, ok, nil
}

func (s *mockStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.sets++
	s.slots[key] = value
	return nil
}

// mockPublisher records published events.
type mockPublisher struct {
	mu     sync.Mutex
	events []domain.LicenseEvent
	err    error
}

func (p *mockPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	var e domain.LicenseEvent
	if err := json.Unmarshal(payload, &e); err != nil {
		return err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *mockPublisher) Close() error { return nil }

type fixedTokens struct{ key string }

func (g fixedTokens) NewTrialKey() (string, error) { return g.key, nil }

type failingTokens struct{}

func (failingTokens) NewTrialKey() (string, error) { return "", errors.New("entropy exhausted") }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestService_InitialStateIsFree(t *testing.T) {
	svc := application.NewService(newMockStore(), testLogger())

	state := svc.Current()
	assert.False(t, state.IsValid)
	assert.Equal(t, domain.PlanNone, state.Plan)
	assert.Equal(t, domain.TierFree, state.Tier())
}

func TestService_Restore(t *testing.T) {
	t.Run("stored key grants premium without verification", func(t *testing.T) {
		store := newMockStore()
		store.slots[domain.SlotLicense] = "ABCDEFGHIJK"
		pub := &mockPublisher{}
		svc := application.NewService(store, testLogger(), application.WithPublisher(pub))

		state := svc.Restore(context.Background())

		assert.True(t, state.IsPremium())
		assert.Equal(t, "ABCDEFGHIJK", state.Key)
		assert.Equal(t, domain.PlanPro, state.Plan)
		require.Len(t, pub.events, 1)
		assert.Equal(t, domain.RoutingKeyLicenseRestored, pub.events[0].Type)
		assert.Equal(t, domain.SourceRestore, pub.events[0].Source)
	})

	t.Run("no stored key stays free", func(t *testing.T) {
		svc := application.NewService(newMockStore(), testLogger())

		state := svc.Restore(context.Background())

		assert.False(t, state.IsPremium())
	})

	t.Run("empty stored key stays free", func(t *testing.T) {
		store := newMockStore()
		store.slots[domain.SlotLicense] = ""
		svc := application.NewService(store, testLogger())

		assert.False(t, svc.Restore(context.Background()).IsPremium())
	})

	t.Run("storage failure is silent", func(t *testing.T) {
		store := newMockStore()
		store.getErr = errors.New("corrupt slot file")
		metrics := observability.NewInMemoryMetrics()
		svc := application.NewService(store, testLogger(), application.WithMetrics(metrics))

		state := svc.Restore(context.Background())

		assert.False(t, state.IsPremium())
		assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricLicenseRestores, observability.T("result", "error")))
	})
}

func TestService_Activate(t *testing.T) {
	t.Run("long key becomes premium and is persisted", func(t *testing.T) {
		store := newMockStore()
		pub := &mockPublisher{}
		metrics := observability.NewInMemoryMetrics()
		svc := application.NewService(store, testLogger(),
			application.WithPublisher(pub),
			application.WithMetrics(metrics),
		)

		state, err := svc.Activate(context.Background(), "MY-LICENSE-KEY")
		require.NoError(t, err)

		assert.True(t, state.IsPremium())
		assert.Equal(t, domain.PlanPro, state.Plan)
		assert.Equal(t, "MY-LICENSE-KEY", store.slots[domain.SlotLicense])
		assert.Equal(t, state, svc.Current())
		assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricLicenseActivations, observability.T("result", "accepted")))

		require.Len(t, pub.events, 1)
		assert.Equal(t, domain.RoutingKeyLicenseActivated, pub.events[0].Type)
		assert.NotContains(t, pub.events[0].MaskedKey, "LICENSE")
	})

	t.Run("keys of ten characters or fewer are rejected without a write", func(t *testing.T) {
		for _, key := range []string{"", "short", "ABCDEFGHIJ", "  ABCDEFG "} {
			store := newMockStore()
			svc := application.NewService(store, testLogger())

			state, err := svc.Activate(context.Background(), key)

			require.Error(t, err, key)
			assert.ErrorIs(t, err, domain.ErrActivationRejected)
			var rejected *domain.ActivationRejectedError
			assert.ErrorAs(t, err, &rejected)
			assert.False(t, state.IsPremium())
			assert.Zero(t, store.sets)
			_, exists := store.slots[domain.SlotLicense]
			assert.False(t, exists)
		}
	})

	t.Run("padded keys count every character and persist verbatim", func(t *testing.T) {
		for _, key := range []string{"  ABCDEFGHIJ  ", " ABCDEFGHIJK ", "           "} {
			store := newMockStore()
			svc := application.NewService(store, testLogger())

			state, err := svc.Activate(context.Background(), key)

			require.NoError(t, err, key)
			assert.True(t, state.IsPremium())
			assert.Equal(t, key, state.Key)
			assert.Equal(t, key, store.slots[domain.SlotLicense])
		}
	})

	t.Run("rejection after premium keeps premium", func(t *testing.T) {
		svc := application.NewService(newMockStore(), testLogger())
		_, err := svc.Activate(context.Background(), "ABCDEFGHIJK")
		require.NoError(t, err)

		state, err := svc.Activate(context.Background(), "nope")

		assert.Error(t, err)
		assert.True(t, state.IsPremium())
		assert.Equal(t, "ABCDEFGHIJK", state.Key)
	})

	t.Run("persist failure leaves state free", func(t *testing.T) {
		store := newMockStore()
		store.setErr = errors.New("disk full")
		svc := application.NewService(store, testLogger())

		state, err := svc.Activate(context.Background(), "ABCDEFGHIJK")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
		assert.False(t, state.IsPremium())
		assert.False(t, svc.Current().IsPremium())
	})

	t.Run("publish failure does not fail activation", func(t *testing.T) {
		pub := &mockPublisher{err: errors.New("broker down")}
		svc := application.NewService(newMockStore(), testLogger(), application.WithPublisher(pub))

		state, err := svc.Activate(context.Background(), "ABCDEFGHIJK")

		require.NoError(t, err)
		assert.True(t, state.IsPremium())
	})

	t.Run("custom policy", func(t *testing.T) {
		svc := application.NewService(newMockStore(), testLogger(),
			application.WithActivationPolicy(domain.LengthPolicy{MinExclusive: 2}))

		state, err := svc.Activate(context.Background(), "abc")

		require.NoError(t, err)
		assert.True(t, state.IsPremium())
	})
}

func TestService_StartTrial(t *testing.T) {
	t.Run("activates a trial key", func(t *testing.T) {
		store := newMockStore()
		pub := &mockPublisher{}
		svc := application.NewService(store, testLogger(), application.WithPublisher(pub))

		state, err := svc.StartTrial(context.Background())
		require.NoError(t, err)

		assert.True(t, state.IsPremium())
		assert.Equal(t, domain.PlanTrial, state.Plan)
		assert.True(t, domain.IsTrialKey(state.Key))
		assert.Equal(t, state.Key, store.slots[domain.SlotLicense])
		require.Len(t, pub.events, 1)
		assert.Equal(t, domain.SourceTrial, pub.events[0].Source)
		assert.Equal(t, "trial", pub.events[0].Plan)
	})

	t.Run("two immediate trials produce distinct tokens", func(t *testing.T) {
		svc := application.NewService(newMockStore(), testLogger())

		first, err := svc.StartTrial(context.Background())
		require.NoError(t, err)
		second, err := svc.StartTrial(context.Background())
		require.NoError(t, err)

		assert.NotEqual(t, first.Key, second.Key)
	})

	t.Run("generated key still goes through the activation policy", func(t *testing.T) {
		store := newMockStore()
		svc := application.NewService(store, testLogger(),
			application.WithTokenGenerator(fixedTokens{key: "TRIAL-1"}))

		state, err := svc.StartTrial(context.Background())

		assert.ErrorIs(t, err, domain.ErrActivationRejected)
		assert.False(t, state.IsPremium())
		assert.Zero(t, store.sets)
	})

	t.Run("generator failure", func(t *testing.T) {
		svc := application.NewService(newMockStore(), testLogger(),
			application.WithTokenGenerator(failingTokens{}))

		_, err := svc.StartTrial(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "entropy exhausted")
	})
}

func TestService_Gate(t *testing.T) {
	t.Run("free state never runs the premium action", func(t *testing.T) {
		metrics := observability.NewInMemoryMetrics()
		svc := application.NewService(newMockStore(), testLogger(), application.WithMetrics(metrics))
		called := false

		err := svc.RunPremium(context.Background(), "export pdf", func(ctx context.Context) error {
			called = true
			return nil
		})

		assert.ErrorIs(t, err, domain.ErrUpgradeRequired)
		assert.False(t, called)
		assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricGateChecks, observability.T("result", "denied")))
	})

	t.Run("premium state runs the action", func(t *testing.T) {
		svc := application.NewService(newMockStore(), testLogger())
		_, err := svc.StartTrial(context.Background())
		require.NoError(t, err)
		called := false

		err = svc.RunPremium(context.Background(), "export pdf", func(ctx context.Context) error {
			called = true
			return nil
		})

		require.NoError(t, err)
		assert.True(t, called)
	})

	t.Run("action error is returned", func(t *testing.T) {
		svc := application.NewService(newMockStore(), testLogger())
		_, err := svc.Activate(context.Background(), "ABCDEFGHIJK")
		require.NoError(t, err)

		err = svc.RunPremium(context.Background(), "export pdf", func(ctx context.Context) error {
			return errors.New("render failed")
		})

		assert.EqualError(t, err, "render failed")
	})
}

func TestService_ConcurrentActivations(t *testing.T) {
	store := newMockStore()
	svc := application.NewService(store, testLogger())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.StartTrial(context.Background())
		}()
	}
	wg.Wait()

	state := svc.Current()
	assert.True(t, state.IsPremium())
	assert.Equal(t, 20, store.sets)
	assert.Equal(t, state.Key, store.slots[domain.SlotLicense])
}

func TestService_EventCarriesCorrelationID(t *testing.T) {
	pub := &mockPublisher{}
	svc := application.NewService(newMockStore(), testLogger(), application.WithPublisher(pub))
	ctx := observability.WithCorrelationID(context.Background(), "corr-42")

	_, err := svc.Activate(ctx, "ABCDEFGHIJKLMNOP")
	require.NoError(t, err)

	require.Len(t, pub.events, 1)
	assert.Equal(t, "corr-42", pub.events[0].CorrelationID)
	assert.NotEmpty(t, pub.events[0].EventID)
	assert.Equal(t, "ABCD****-****-MNOP", pub.events[0].MaskedKey)
}
