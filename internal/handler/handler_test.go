package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"oaresponse/internal/domain"
	"oaresponse/internal/domain/models"
	"oaresponse/internal/domain/services"
	"oaresponse/internal/httputil"
)

const testMatterID = "0b6f7c55-4a54-4d7f-9f3e-0e8a3f1c2d11"

type fakeMatterService struct {
	err       error
	lastUser  string
	ingestReq *services.IngestRequest
	uploadReq *services.UploadRequest
}

func (f *fakeMatterService) Upload(_ context.Context, req *services.UploadRequest) (*services.UploadResult, error) {
	f.uploadReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &services.UploadResult{FileID: "u-1/" + req.Filename, Bytes: len(req.Data), Pages: 1}, nil
}

func (f *fakeMatterService) Ingest(_ context.Context, userID string, req *services.IngestRequest) (*services.IngestResult, error) {
	f.lastUser, f.ingestReq = userID, req
	if f.err != nil {
		return nil, f.err
	}
	return &services.IngestResult{MatterID: testMatterID, Status: models.MatterStatusParsed, Truncated: true}, nil
}

func (f *fakeMatterService) GetExtraction(_ context.Context, userID, matterID string) (*models.Extraction, error) {
	f.lastUser = userID
	if f.err != nil {
		return nil, f.err
	}
	ext := &models.Extraction{MatterID: matterID}
	ext.Metadata.Examiner = "J. Smith"
	ext.Normalize()
	return ext, nil
}

func (f *fakeMatterService) CleanupOCR(context.Context, string, *services.CleanupOCRRequest) (*services.CleanupOCRResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &services.CleanupOCRResult{Status: "reparsed"}, nil
}

func (f *fakeMatterService) GetMatter(_ context.Context, _, matterID string) (*models.Matter, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Matter{ID: matterID}, nil
}

func (f *fakeMatterService) ListMatters(context.Context, string) ([]models.Matter, error) {
	return []models.Matter{}, f.err
}

type fakeDraftService struct{ err error }

func (f *fakeDraftService) Generate(_ context.Context, _ string, req *services.GenerateDraftRequest) (*models.Draft, error) {
	if f.err != nil {
		return nil, f.err
	}
	d := &models.Draft{MatterID: req.MatterID, Version: 3}
	d.Outline = "outline"
	d.Normalize()
	return d, nil
}

func (f *fakeDraftService) ListDrafts(context.Context, string, string) ([]models.Draft, error) {
	return []models.Draft{}, f.err
}

type fakeExportService struct{ err error }

func (f *fakeExportService) Export(_ context.Context, _ string, req *services.ExportRequest) (*services.ExportedFile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &services.ExportedFile{
		Filename:    "OA_Response_" + req.MatterID + ".txt",
		ContentType: "text/plain",
		Body:        []byte("OFFICE ACTION RESPONSE\n"),
	}, nil
}

func newTestMux(ms *fakeMatterService, ds *fakeDraftService, es *fakeExportService) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mux := http.NewServeMux()
	Register(mux, NewMatterHandler(ms, ds, logger), NewDraftHandler(ds, es, logger))

	// stand-in for the auth middleware
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, httputil.WithUserID(r, "user-1"))
	})
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, reader))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestUpload(t *testing.T) {
	ms := &fakeMatterService{}
	h := newTestMux(ms, &fakeDraftService{}, &fakeExportService{})

	rec := do(t, h, http.MethodPost, "/api/upload?filename=office-action.pdf", "%PDF-1.7 body")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["file_id"] != "u-1/office-action.pdf" || body["bytes"] != float64(len("%PDF-1.7 body")) {
		t.Errorf("unexpected body %v", body)
	}
	if string(ms.uploadReq.Data) != "%PDF-1.7 body" {
		t.Errorf("service got %q", ms.uploadReq.Data)
	}

	rec = do(t, h, http.MethodPost, "/api/upload", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty body: expected 400, got %d", rec.Code)
	}
}

func TestIngest(t *testing.T) {
	ms := &fakeMatterService{}
	h := newTestMux(ms, &fakeDraftService{}, &fakeExportService{})

	rec := do(t, h, http.MethodPost, "/api/ingest", `{"file_id":"abc.pdf","jurisdiction":"USPTO","title":"OA"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["matter_id"] != testMatterID || body["status"] != "parsed" || body["truncated"] != true {
		t.Errorf("unexpected body %v", body)
	}
	if ms.lastUser != "user-1" || ms.ingestReq.FileID != "abc.pdf" {
		t.Errorf("service called with user %q req %+v", ms.lastUser, ms.ingestReq)
	}

	rec = do(t, h, http.MethodPost, "/api/ingest", `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid JSON, got %d", rec.Code)
	}
}

func TestGetExtraction(t *testing.T) {
	h := newTestMux(&fakeMatterService{}, &fakeDraftService{}, &fakeExportService{})

	rec := do(t, h, http.MethodGet, "/api/get-extraction?matter_id="+testMatterID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decode(t, rec)
	for _, key := range []string{"metadata", "rejections", "formalities", "claims", "prior_art", "truncated"} {
		if _, ok := body[key]; !ok {
			t.Errorf("missing key %q in %v", key, body)
		}
	}
	if _, ok := body["matter_id"]; ok {
		t.Errorf("matter_id should not be part of the extraction body")
	}

	rec = do(t, h, http.MethodGet, "/api/get-extraction", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without matter_id, got %d", rec.Code)
	}
}

func TestGenerateDraft(t *testing.T) {
	h := newTestMux(&fakeMatterService{}, &fakeDraftService{}, &fakeExportService{})

	rec := do(t, h, http.MethodPost, "/api/generate-draft", `{"matter_id":"`+testMatterID+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decode(t, rec)
	if body["version"] != float64(3) || body["outline"] != "outline" {
		t.Errorf("unexpected body %v", body)
	}
	if _, ok := body["citations"].([]any); !ok {
		t.Errorf("citations should be an array, got %v", body["citations"])
	}
}

func TestExportDraft(t *testing.T) {
	h := newTestMux(&fakeMatterService{}, &fakeDraftService{}, &fakeExportService{})

	rec := do(t, h, http.MethodPost, "/api/export-draft", `{"matter_id":"`+testMatterID+`","format":"txt"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="OA_Response_`+testMatterID+`.txt"` {
		t.Errorf("unexpected disposition %q", got)
	}
	if rec.Header().Get("Content-Type") != "text/plain" {
		t.Errorf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}
}

func TestRoutes_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"validation", domain.Validationf("file_id is required"), http.StatusBadRequest, "file_id is required"},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"not found", domain.ErrNotFound, http.StatusNotFound, "not found"},
		{"conflict", &domain.ConflictError{Message: "draft version 2 already exists"}, http.StatusConflict, "already exists"},
		{"upstream", &domain.UpstreamError{Service: "document_ai", StatusCode: 403, Message: "permission denied"}, http.StatusInternalServerError, "document_ai error 403: permission denied"},
		{"malformed", &domain.MalformedOutputError{Stage: "draft", Raw: "{", Reason: errors.New("eof")}, http.StatusInternalServerError, "could not be parsed"},
		{"other", errors.New("pool exhausted"), http.StatusInternalServerError, "internal server error"},
	}

	routes := []struct{ method, target, body string }{
		{http.MethodPost, "/api/upload?filename=oa.pdf", "%PDF-1.4"},
		{http.MethodPost, "/api/ingest", `{"file_id":"x"}`},
		{http.MethodGet, "/api/get-extraction?matter_id=" + testMatterID, ""},
		{http.MethodPost, "/api/cleanup-ocr", `{"matter_id":"` + testMatterID + `"}`},
		{http.MethodGet, "/api/matters/" + testMatterID, ""},
		{http.MethodPost, "/api/generate-draft", `{"matter_id":"` + testMatterID + `"}`},
		{http.MethodPost, "/api/export-draft", `{"matter_id":"` + testMatterID + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestMux(&fakeMatterService{err: tt.err}, &fakeDraftService{err: tt.err}, &fakeExportService{err: tt.err})
			for _, route := range routes {
				rec := do(t, h, route.method, route.target, route.body)
				if rec.Code != tt.wantCode {
					t.Fatalf("%s %s: expected %d, got %d", route.method, route.target, tt.wantCode, rec.Code)
				}
				msg, _ := decode(t, rec)["error"].(string)
				if !strings.Contains(msg, tt.wantMsg) {
					t.Errorf("%s %s: expected message containing %q, got %q", route.method, route.target, tt.wantMsg, msg)
				}
			}
		})
	}
}

func TestHealthCheck(t *testing.T) {
	h := newTestMux(&fakeMatterService{}, &fakeDraftService{}, &fakeExportService{})
	rec := do(t, h, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || decode(t, rec)["status"] != "ok" {
		t.Fatalf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}
}
