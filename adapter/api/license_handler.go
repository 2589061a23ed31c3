package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/felixgeelhaar/markpro/internal/licensing/application"
	"github.com/felixgeelhaar/markpro/internal/licensing/domain"
)

// LicenseHandler serves the verifier endpoint and the entitlement state.
type LicenseHandler struct {
	verify  *application.VerifyService
	license *application.Service
	logger  *slog.Logger
}

// LicenseHandlerConfig holds dependencies for the license handler.
type LicenseHandlerConfig struct {
	Verify  *application.VerifyService
	License *application.Service
	Logger  *slog.Logger
}

// NewLicenseHandler creates a new license handler.
func NewLicenseHandler(cfg LicenseHandlerConfig) *LicenseHandler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &LicenseHandler{
		verify:  cfg.Verify,
		license: cfg.License,
		logger:  cfg.Logger,
	}
}

type licenseKeyRequest struct {
	LicenseKey string `json:"licenseKey"`
}

// VerifyResponse is the body of a successful POST /verify.
type VerifyResponse struct {
	Valid   bool    `json:"valid"`
	Plan    *string `json:"plan"`
	Message string  `json:"message"`
}

// StateResponse describes the entitlement state. The key is masked.
type StateResponse struct {
	Key     string  `json:"key"`
	IsValid bool    `json:"isValid"`
	Plan    *string `json:"plan"`
	Tier    string  `json:"tier"`
}

func planPtr(p domain.Plan) *string {
	if p == domain.PlanNone {
		return nil
	}
	s := string(p)
	return &s
}

func stateResponse(s domain.LicenseState) StateResponse {
	return StateResponse{
		Key:     s.MaskedKey(),
		IsValid: s.IsValid,
		Plan:    planPtr(s.Plan),
		Tier:    string(s.Tier()),
	}
}

// Verify handles POST /verify
func (h *LicenseHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req licenseKeyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, MsgLicenseKeyRequired)
		return
	}

	result, err := h.verify.Verify(r.Context(), req.LicenseKey)
	if err != nil {
		var validation *domain.ValidationError
		if errors.As(err, &validation) {
			writeError(w, http.StatusBadRequest, MsgLicenseKeyRequired)
			return
		}
		h.logger.ErrorContext(r.Context(), "verify request failed", "error", err)
		writeError(w, http.StatusInternalServerError, MsgInternalError)
		return
	}

	writeJSON(w, http.StatusOK, VerifyResponse{
		Valid:   result.Valid,
		Plan:    planPtr(result.Plan),
		Message: result.Message,
	})
}

// Status handles GET /api/v1/license
func (h *LicenseHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, stateResponse(h.license.Current()))
}

// Activate handles POST /api/v1/license/activate
func (h *LicenseHandler) Activate(w http.ResponseWriter, r *http.Request) {
	var req licenseKeyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, MsgInvalidRequest)
		return
	}

	state, err := h.license.Activate(r.Context(), req.LicenseKey)
	if err != nil {
		if errors.Is(err, domain.ErrActivationRejected) {
			writeError(w, http.StatusUnprocessableEntity, MsgInvalidLicenseKey)
			return
		}
		h.logger.ErrorContext(r.Context(), "activation failed", "error", err)
		writeError(w, http.StatusInternalServerError, MsgInternalError)
		return
	}

	writeJSON(w, http.StatusOK, stateResponse(state))
}

// StartTrial handles POST /api/v1/license/trial
func (h *LicenseHandler) StartTrial(w http.ResponseWriter, r *http.Request) {
	state, err := h.license.StartTrial(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "trial start failed", "error", err)
		writeError(w, http.StatusInternalServerError, MsgInternalError)
		return
	}
	writeJSON(w, http.StatusOK, stateResponse(state))
}
