package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/felixgeelhaar/markpro/internal/export/application"
	"github.com/felixgeelhaar/markpro/internal/export/domain"
	licensingDomain "github.com/felixgeelhaar/markpro/internal/licensing/domain"
)

// ExportHandler serves rendering and document export.
type ExportHandler struct {
	export     *application.Service
	upgradeURL string
	logger     *slog.Logger
}

// ExportHandlerConfig holds dependencies for the export handler.
type ExportHandlerConfig struct {
	Export     *application.Service
	UpgradeURL string
	Logger     *slog.Logger
}

// NewExportHandler creates a new export handler.
func NewExportHandler(cfg ExportHandlerConfig) *ExportHandler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &ExportHandler{
		export:     cfg.Export,
		upgradeURL: cfg.UpgradeURL,
		logger:     cfg.Logger,
	}
}

type markdownRequest struct {
	Markdown string `json:"markdown"`
}

// Render handles POST /api/v1/render
func (h *ExportHandler) Render(w http.ResponseWriter, r *http.Request) {
	var req markdownRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, MsgInvalidRequest)
		return
	}

	fragment, err := h.export.Render(r.Context(), req.Markdown)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "render failed", "error", err)
		writeError(w, http.StatusInternalServerError, MsgInternalError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"html": fragment})
}

// Export handles POST /api/v1/export/{format}
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	format, err := domain.ParseFormat(r.PathValue("format"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Unsupported export format")
		return
	}

	var req markdownRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, MsgInvalidRequest)
		return
	}

	artifact, err := h.export.Export(r.Context(), format, req.Markdown)
	if err != nil {
		if errors.Is(err, licensingDomain.ErrUpgradeRequired) {
			writeJSON(w, http.StatusPaymentRequired, ErrorResponse{
				Error:      MsgPremiumRequired,
				UpgradeURL: h.upgradeURL,
			})
			return
		}
		h.logger.ErrorContext(r.Context(), "export failed", "format", string(format), "error", err)
		writeError(w, http.StatusInternalServerError, MsgInternalError)
		return
	}

	w.Header().Set("Content-Type", artifact.MIMEType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Content)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(artifact.Content); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write export", "error", err)
	}
}
