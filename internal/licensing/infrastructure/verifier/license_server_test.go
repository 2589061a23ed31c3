package verifier_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/felixgeelhaar/markpro/internal/licensing/domain"
	"github.com/felixgeelhaar/markpro/internal/licensing/infrastructure/verifier"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLicenseServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func writeBody(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func newVerifier(url string) *verifier.LicenseServerVerifier {
	return verifier.NewLicenseServerVerifier(verifier.LicenseServerConfig{
		BaseURL:          url,
		ProductPermalink: "markdown-pro",
		Token:            "secret-token",
		Timeout:          time.Second,
		BreakerFailures:  2,
		BreakerTimeout:   time.Minute,
	}, nil)
}

func TestLicenseServerVerifier_SendsPermalinkAndKey(t *testing.T) {
	srv := newLicenseServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/licenses/verify", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "markdown-pro", r.PostForm.Get("product_permalink"))
		assert.Equal(t, "KEY-1234-5678", r.PostForm.Get("license_key"))

		writeBody(w, http.StatusOK, `{"success":true,"uses":1,"purchase":{"refunded":false}}`)
	})

	res, err := newVerifier(srv.URL).Verify(context.Background(), "KEY-1234-5678")

	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, domain.PlanPro, res.Plan)
	assert.Equal(t, domain.MessageValid, res.Message)
}

func TestLicenseServerVerifier_ResponseMapping(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantValid bool
		wantPlan  domain.Plan
	}{
		{"free trial", 200, `{"success":true,"purchase":{"free_trial_ends_on":"2026-11-01"}}`, true, domain.PlanTrial},
		{"refunded", 200, `{"success":true,"purchase":{"refunded":true}}`, false, domain.PlanNone},
		{"chargebacked", 200, `{"success":true,"purchase":{"chargebacked":true}}`, false, domain.PlanNone},
		{"disputed", 200, `{"success":true,"purchase":{"disputed":true}}`, false, domain.PlanNone},
		{"success false", 200, `{"success":false}`, false, domain.PlanNone},
		{"unknown key", 404, `{"success":false,"message":"That license does not exist for the provided product."}`, false, domain.PlanNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newLicenseServer(t, func(w http.ResponseWriter, r *http.Request) {
				writeBody(w, tt.status, tt.body)
			})

			res, err := newVerifier(srv.URL).Verify(context.Background(), "SOME-LICENSE-KEY")

			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, res.Valid)
			assert.Equal(t, tt.wantPlan, res.Plan)
		})
	}
}

func TestLicenseServerVerifier_ServerErrorIsServiceError(t *testing.T) {
	srv := newLicenseServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusBadGateway, `{"error":"upstream"}`)
	})

	res, err := newVerifier(srv.URL).Verify(context.Background(), "SOME-LICENSE-KEY")

	assert.False(t, res.Valid)
	var svcErr *domain.VerificationServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusBadGateway, svcErr.StatusCode)
	assert.ErrorIs(t, err, domain.ErrVerificationService)
}

func TestLicenseServerVerifier_NetworkErrorIsServiceError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newVerifier(url).Verify(context.Background(), "SOME-LICENSE-KEY")

	assert.ErrorIs(t, err, domain.ErrVerificationService)
}

func TestLicenseServerVerifier_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	srv := newLicenseServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeBody(w, http.StatusInternalServerError, `{}`)
	})
	v := newVerifier(srv.URL)

	for i := 0; i < 2; i++ {
		_, err := v.Verify(context.Background(), "SOME-LICENSE-KEY")
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, v.State())
	assert.ErrorIs(t, v.Ping(context.Background()), gobreaker.ErrOpenState)

	_, err := v.Verify(context.Background(), "SOME-LICENSE-KEY")

	assert.ErrorIs(t, err, domain.ErrVerificationService)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), hits.Load())
}

func TestLicenseServerVerifier_InvalidKeyDoesNotTripBreaker(t *testing.T) {
	srv := newLicenseServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusNotFound, `{"success":false}`)
	})
	v := newVerifier(srv.URL)

	for i := 0; i < 5; i++ {
		res, err := v.Verify(context.Background(), "SOME-LICENSE-KEY")
		require.NoError(t, err)
		assert.False(t, res.Valid)
	}
	assert.Equal(t, gobreaker.StateClosed, v.State())
	assert.NoError(t, v.Ping(context.Background()))
}

func TestLicenseServerVerifier_EmptyKey(t *testing.T) {
	_, err := newVerifier("http://127.0.0.1:1").Verify(context.Background(), "")

	assert.ErrorIs(t, err, domain.ErrLicenseKeyRequired)
}
