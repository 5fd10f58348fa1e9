package handler

import "net/http"

// Register mounts every route on mux
func Register(mux *http.ServeMux, matters *MatterHandler, drafts *DraftHandler) {
	mux.HandleFunc("GET /health", HealthCheck)

	mux.HandleFunc("POST /api/upload", matters.Upload)
	mux.HandleFunc("POST /api/ingest", matters.Ingest)
	mux.HandleFunc("GET /api/get-extraction", matters.GetExtraction)
	mux.HandleFunc("POST /api/cleanup-ocr", matters.CleanupOCR)

	mux.HandleFunc("GET /api/matters", matters.ListMatters)
	mux.HandleFunc("GET /api/matters/{id}", matters.GetMatter)
	mux.HandleFunc("GET /api/matters/{id}/drafts", matters.ListDrafts)

	mux.HandleFunc("POST /api/generate-draft", drafts.GenerateDraft)
	mux.HandleFunc("POST /api/export-draft", drafts.ExportDraft)
}
