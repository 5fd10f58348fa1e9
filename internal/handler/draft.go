package handler

import (
	"log/slog"
	"net/http"

	"oaresponse/internal/domain/models"
	"oaresponse/internal/domain/services"
	"oaresponse/internal/httputil"
)

// DraftHandler handles draft generation and export HTTP requests
type DraftHandler struct {
	draftService  services.DraftService
	exportService services.ExportService
	logger        *slog.Logger
}

// NewDraftHandler creates a new draft handler
func NewDraftHandler(draftService services.DraftService, exportService services.ExportService, logger *slog.Logger) *DraftHandler {
	return &DraftHandler{
		draftService:  draftService,
		exportService: exportService,
		logger:        logger,
	}
}

// draftResponse is the generated content plus its version
type draftResponse struct {
	Version int `json:"version"`
	models.DraftContent
}

// GenerateDraft writes a new response draft for a matter
// POST /api/generate-draft
func (h *DraftHandler) GenerateDraft(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req services.GenerateDraftRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	draft, err := h.draftService.Generate(r.Context(), userID, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, draftResponse{
		Version:      draft.Version,
		DraftContent: draft.DraftContent,
	})
}

// ExportDraft downloads the latest draft of a matter
// POST /api/export-draft
func (h *DraftHandler) ExportDraft(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req services.ExportRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	file, err := h.exportService.Export(r.Context(), userID, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondAttachment(w, file.Filename, file.ContentType, file.Body)
}
