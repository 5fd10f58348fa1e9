package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"oaresponse/internal/domain/models"
	"oaresponse/internal/domain/services"
	"oaresponse/internal/httputil"
)

// MatterHandler handles ingest, extraction and matter HTTP requests
type MatterHandler struct {
	matterService services.MatterService
	draftService  services.DraftService
	logger        *slog.Logger
}

// NewMatterHandler creates a new matter handler
func NewMatterHandler(matterService services.MatterService, draftService services.DraftService, logger *slog.Logger) *MatterHandler {
	return &MatterHandler{
		matterService: matterService,
		draftService:  draftService,
		logger:        logger,
	}
}

// Upload stores a raw PDF body and returns the file_id to ingest
// POST /api/upload?filename=
func (h *MatterHandler) Upload(w http.ResponseWriter, r *http.Request) {
	data, err := httputil.ReadBody(w, r, httputil.MaxUploadBytes)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.RespondError(w, http.StatusRequestEntityTooLarge, "file exceeds upload limit")
			return
		}
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.matterService.Upload(r.Context(), &services.UploadRequest{
		Filename: r.URL.Query().Get("filename"),
		Data:     data,
	})
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	h.logger.Debug("upload stored", "user_id", httputil.GetUserID(r), "file_id", result.FileID)
	httputil.RespondJSON(w, http.StatusCreated, result)
}

// Ingest processes an uploaded office action into a parsed matter
// POST /api/ingest
func (h *MatterHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req services.IngestRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.matterService.Ingest(r.Context(), userID, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// extractionResponse is the extraction record plus the truncation flag
type extractionResponse struct {
	models.ExtractionRecord
	Truncated bool `json:"truncated"`
}

// GetExtraction returns the structured extraction of a matter
// GET /api/get-extraction?matter_id=
func (h *MatterHandler) GetExtraction(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	matterID := r.URL.Query().Get("matter_id")
	if matterID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "matter_id query parameter is required")
		return
	}

	extraction, err := h.matterService.GetExtraction(r.Context(), userID, matterID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, extractionResponse{
		ExtractionRecord: extraction.ExtractionRecord,
		Truncated:        extraction.Truncated,
	})
}

// CleanupOCR re-runs OCR for a matter's office action
// POST /api/cleanup-ocr
func (h *MatterHandler) CleanupOCR(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req services.CleanupOCRRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.matterService.CleanupOCR(r.Context(), userID, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// ListMatters retrieves all matters for the user
// GET /api/matters
func (h *MatterHandler) ListMatters(w http.ResponseWriter, r *http.Request) {
	matters, err := h.matterService.ListMatters(r.Context(), httputil.GetUserID(r))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, matters)
}

// GetMatter retrieves a single matter by ID
// GET /api/matters/{id}
func (h *MatterHandler) GetMatter(w http.ResponseWriter, r *http.Request) {
	matterID, ok := PathParam(w, r, "id", "Matter ID")
	if !ok {
		return
	}

	matter, err := h.matterService.GetMatter(r.Context(), httputil.GetUserID(r), matterID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, matter)
}

// ListDrafts returns every draft version of a matter, latest first
// GET /api/matters/{id}/drafts
func (h *MatterHandler) ListDrafts(w http.ResponseWriter, r *http.Request) {
	matterID, ok := PathParam(w, r, "id", "Matter ID")
	if !ok {
		return
	}

	drafts, err := h.draftService.ListDrafts(r.Context(), httputil.GetUserID(r), matterID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, drafts)
}
