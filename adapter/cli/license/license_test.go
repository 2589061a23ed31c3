package license

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/markpro/internal/licensing/application"
	"github.com/felixgeelhaar/markpro/internal/licensing/domain"
	"github.com/felixgeelhaar/markpro/internal/licensing/infrastructure/verifier"
	"github.com/felixgeelhaar/markpro/pkg/observability"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu    sync.Mutex
	slots map[string]string
}

func (s *memStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.slots[key]
	return v, ok, nil
}

func (s *memStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[key] = value
	return nil
}

func setup(t *testing.T) *memStore {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := &memStore{slots: map[string]string{}}
	SetLicenseService(application.NewService(store, logger))
	SetVerifyService(application.NewVerifyService(verifier.NewSubstringVerifier(), time.Second, observability.NoopMetrics{}, logger))
	t.Cleanup(func() {
		SetLicenseService(nil)
		SetVerifyService(nil)
	})
	return store
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	err := cmd.RunE(cmd, args)
	return out.String(), err
}

func TestCommands_NoService(t *testing.T) {
	SetLicenseService(nil)
	SetVerifyService(nil)

	_, err := run(t, statusCmd)
	assert.ErrorContains(t, err, "license service not available")

	_, err = run(t, activateCmd, "MDPRO-1234-5678")
	assert.ErrorContains(t, err, "license service not available")

	_, err = run(t, trialCmd)
	assert.ErrorContains(t, err, "license service not available")

	_, err = run(t, verifyCmd, "MDPRO-1234")
	assert.ErrorContains(t, err, "verify service not available")
}

func TestStatusCmd_Free(t *testing.T) {
	setup(t)

	out, err := run(t, statusCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "License Status: Free")
}

func TestActivateCmd(t *testing.T) {
	store := setup(t)

	out, err := run(t, activateCmd, "ABCDEFGHIJKLMNOP")
	require.NoError(t, err)
	assert.Contains(t, out, "License activated successfully!")
	assert.Contains(t, out, "License: ABCD****-****-MNOP")
	assert.Contains(t, out, "Plan: pro")
	assert.Equal(t, "ABCDEFGHIJKLMNOP", store.slots[domain.SlotLicense])

	out, err = run(t, statusCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Status: Active")
}

func TestActivateCmd_Rejected(t *testing.T) {
	store := setup(t)

	_, err := run(t, activateCmd, "0123456789")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid license key")
	assert.Empty(t, store.slots)
}

func TestTrialCmd(t *testing.T) {
	store := setup(t)

	out, err := run(t, trialCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Trial started!")
	assert.True(t, domain.IsTrialKey(store.slots[domain.SlotLicense]))

	out, err = run(t, statusCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "License Status: Trial")
}

func TestVerifyCmd(t *testing.T) {
	tests := []struct {
		key  string
		want []string
	}{
		{"MDPRO-1234", []string{"License is valid", "Plan: pro"}},
		{"TRIAL-PRO-1", []string{"License is valid", "Plan: trial"}},
		{"nothing-here", []string{"Invalid license key"}},
		{"   ", []string{"Invalid license key"}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			store := setup(t)

			out, err := run(t, verifyCmd, tt.key)
			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
			assert.Empty(t, store.slots)
		})
	}
}

func TestVerifyCmd_EmptyKey(t *testing.T) {
	setup(t)

	_, err := run(t, verifyCmd, "")
	assert.EqualError(t, err, "license key required")
}

func TestUpgradeCmd(t *testing.T) {
	SetUpgradeURL("https://example.com/checkout")
	noBrowser = true
	t.Cleanup(func() { noBrowser = false })

	out, err := run(t, UpgradeCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "https://example.com/checkout")
	assert.Contains(t, out, "markpro license activate")
	assert.Contains(t, UpgradeCmd.Long, "checkout")
}
