// Package handlers implements the preview API endpoints.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/avdrav1/vibehuntr-preview/internal/core/preview"
)

const headerContentType = "Content-Type"

// PreviewService processes a batch of URLs into per-URL results.
// *preview.Service is the production implementation.
type PreviewService interface {
	GetLinkPreviews(ctx context.Context, urls []string) []*preview.LinkMetadata
}

// PreviewRequest is the body of POST /api/link-preview.
type PreviewRequest struct {
	URLs      []string `json:"urls"`
	SessionID string   `json:"session_id"`
}

// PreviewResponse carries one entry per requested URL, in request order.
type PreviewResponse struct {
	Previews []*preview.LinkMetadata `json:"previews"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type PreviewHandler struct {
	service PreviewService
	logger  *zerolog.Logger
}

func NewPreviewHandler(service PreviewService, logger *zerolog.Logger) *PreviewHandler {
	return &PreviewHandler{service: service, logger: logger}
}

// HandlePreview validates the whole batch before any fetch work starts, then
// returns 200 with per-URL results. Individual fetch failures are carried
// in-band in each result's error field and never change the HTTP status.
func (h *PreviewHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid request body"})

		return
	}

	if msg := validatePreviewRequest(&req); msg != "" {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: msg})

		return
	}

	h.logger.Debug().Str("session_id", req.SessionID).Int("urls", len(req.URLs)).Msg("preview batch")

	previews := h.service.GetLinkPreviews(r.Context(), req.URLs)

	writeJSON(w, http.StatusOK, PreviewResponse{Previews: previews})
}

func validatePreviewRequest(req *PreviewRequest) string {
	if len(req.URLs) == 0 {
		return "urls must contain at least one entry"
	}

	for _, u := range req.URLs {
		if strings.TrimSpace(u) == "" {
			return "urls must not contain blank entries"
		}
	}

	if strings.TrimSpace(req.SessionID) == "" {
		return "session_id is required"
	}

	return ""
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set(headerContentType, "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(body)
}
