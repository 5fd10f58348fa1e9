package matter

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oaresponse/internal/config"
	"oaresponse/internal/domain"
	"oaresponse/internal/domain/models"
	"oaresponse/internal/domain/repositories"
	"oaresponse/internal/domain/services"
	"oaresponse/internal/ocr"
	recordstore "oaresponse/internal/repository/badger"
	"oaresponse/internal/service/auth"
	blobstore "oaresponse/internal/storage/badger"
)

const (
	owner  = "user-1"
	fileID = "5f0c1b7e-2f7e-4b8a-9d4b-1a2b3c4d5e6f.pdf"
)

type fakeOCR struct {
	text  string
	err   error
	calls int
}

func (f *fakeOCR) ExtractText(context.Context, []byte) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeExtractor struct {
	err  error
	last *services.ExtractionInput
}

func (f *fakeExtractor) Extract(_ context.Context, in *services.ExtractionInput) (*services.ExtractionResult, error) {
	f.last = in
	if f.err != nil {
		return nil, f.err
	}
	rec := models.ExtractionRecord{
		Metadata:   models.ExtractionMetadata{ApplicationNumber: "16/123,456"},
		Rejections: []models.Rejection{{Code: "102", Claims: []string{"1"}}},
	}
	rec.Normalize()
	return &services.ExtractionResult{Record: rec, Truncated: len(in.Text) > 10, Model: "fake-1"}, nil
}

// failingExtractionRepo fails inside the ingest transaction after the
// matter and document rows were written.
type failingExtractionRepo struct {
	repositories.ExtractionRepository
}

func (failingExtractionRepo) Create(context.Context, *models.Extraction) error {
	return errors.New("disk full")
}

type fixture struct {
	store     *recordstore.Store
	blobs     *blobstore.BlobStore
	ocr       *fakeOCR
	extractor *fakeExtractor
	logger    *slog.Logger
}

func buildPDF(t *testing.T) []byte {
	t.Helper()
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.AddPage()
	pdf.Cell(40, 10, "Non-Final Office Action")
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	return buf.Bytes()
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := blobstore.OpenDB("", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	f := &fixture{
		store:     recordstore.NewStore(db, recordstore.Options{}, logger),
		blobs:     blobstore.NewBlobStore(db, logger),
		ocr:       &fakeOCR{text: "Claims 1-3 are rejected under 35 U.S.C. 102."},
		extractor: &fakeExtractor{},
		logger:    logger,
	}
	require.NoError(t, f.blobs.Upload(context.Background(), fileID, buildPDF(t), "application/pdf"))
	return f
}

func (f *fixture) service(mode string, extractions repositories.ExtractionRepository) services.MatterService {
	if extractions == nil {
		extractions = f.store.Extractions()
	}
	return NewMatterService(
		auth.NewOwnerGate(f.store.Matters()),
		f.store.Matters(),
		f.store.Documents(),
		extractions,
		f.store,
		f.blobs,
		ocr.NewInspector(),
		f.ocr,
		f.extractor,
		mode,
		f.logger,
	)
}

func (f *fixture) matterCount(t *testing.T) int {
	t.Helper()
	matters, err := f.store.Matters().List(context.Background(), owner)
	require.NoError(t, err)
	return len(matters)
}

func TestIngest(t *testing.T) {
	f := newFixture(t)
	svc := f.service(config.IngestModeOCR, nil)
	ctx := context.Background()

	res, err := svc.Ingest(ctx, owner, &services.IngestRequest{FileID: fileID, Jurisdiction: "EPO", Title: "Widget OA"})
	require.NoError(t, err)
	assert.Equal(t, models.MatterStatusParsed, res.Status)
	assert.True(t, res.Truncated)
	assert.Equal(t, f.ocr.text, f.extractor.last.Text)
	assert.Nil(t, f.extractor.last.PDF)

	matter, err := svc.GetMatter(ctx, owner, res.MatterID)
	require.NoError(t, err)
	assert.Equal(t, models.MatterStatusParsed, matter.Status)
	assert.Equal(t, models.JurisdictionEPO, matter.Jurisdiction)
	assert.Equal(t, "Widget OA", matter.Title)

	doc, err := f.store.Documents().GetByType(ctx, res.MatterID, models.DocumentTypeOfficeAction)
	require.NoError(t, err)
	assert.Equal(t, fileID, doc.Path)
	assert.Equal(t, f.ocr.text, doc.Text)
	assert.Equal(t, 1, doc.PageCount)

	ext, err := svc.GetExtraction(ctx, owner, res.MatterID)
	require.NoError(t, err)
	assert.Equal(t, "16/123,456", ext.Metadata.ApplicationNumber)
	assert.True(t, ext.Truncated)

	// another user cannot tell the matter exists
	_, err = svc.GetExtraction(ctx, "user-2", res.MatterID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.GetMatter(ctx, "user-2", res.MatterID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIngest_Defaults(t *testing.T) {
	f := newFixture(t)
	svc := f.service(config.IngestModeOCR, nil)
	ctx := context.Background()

	res, err := svc.Ingest(ctx, owner, &services.IngestRequest{FileID: fileID})
	require.NoError(t, err)

	matter, err := svc.GetMatter(ctx, owner, res.MatterID)
	require.NoError(t, err)
	assert.Equal(t, models.JurisdictionUSPTO, matter.Jurisdiction)
	assert.Equal(t, fileID, matter.Title)
}

func TestIngest_RawMode(t *testing.T) {
	f := newFixture(t)
	svc := f.service(config.IngestModeRaw, nil)

	res, err := svc.Ingest(context.Background(), owner, &services.IngestRequest{FileID: fileID})
	require.NoError(t, err)
	assert.Zero(t, f.ocr.calls)
	assert.True(t, bytes.HasPrefix(f.extractor.last.PDF, []byte("%PDF-")))
	assert.Equal(t, models.MatterStatusParsed, res.Status)
}

func TestIngest_FailuresCommitNothing(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(f *fixture) (*services.IngestRequest, repositories.ExtractionRepository)
		wantErr error
	}{
		{
			name: "missing file id",
			setup: func(f *fixture) (*services.IngestRequest, repositories.ExtractionRepository) {
				return &services.IngestRequest{}, nil
			},
			wantErr: domain.ErrValidation,
		},
		{
			name: "unknown jurisdiction",
			setup: func(f *fixture) (*services.IngestRequest, repositories.ExtractionRepository) {
				return &services.IngestRequest{FileID: fileID, Jurisdiction: "KIPO"}, nil
			},
			wantErr: domain.ErrValidation,
		},
		{
			name: "file not in store",
			setup: func(f *fixture) (*services.IngestRequest, repositories.ExtractionRepository) {
				return &services.IngestRequest{FileID: "missing.pdf"}, nil
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "not a pdf",
			setup: func(f *fixture) (*services.IngestRequest, repositories.ExtractionRepository) {
				require.NoError(t, f.blobs.Upload(context.Background(), "notes.txt", []byte("hello"), "text/plain"))
				return &services.IngestRequest{FileID: "notes.txt"}, nil
			},
			wantErr: domain.ErrValidation,
		},
		{
			name: "ocr failure",
			setup: func(f *fixture) (*services.IngestRequest, repositories.ExtractionRepository) {
				f.ocr.err = &domain.UpstreamError{Service: "document_ai", StatusCode: 403, Message: "permission denied"}
				return &services.IngestRequest{FileID: fileID}, nil
			},
			wantErr: domain.ErrUpstream,
		},
		{
			name: "blank document",
			setup: func(f *fixture) (*services.IngestRequest, repositories.ExtractionRepository) {
				f.ocr.text = "  \n"
				return &services.IngestRequest{FileID: fileID}, nil
			},
			wantErr: domain.ErrValidation,
		},
		{
			name: "malformed extraction",
			setup: func(f *fixture) (*services.IngestRequest, repositories.ExtractionRepository) {
				f.extractor.err = &domain.MalformedOutputError{Stage: "extraction", Raw: "oops", Reason: errors.New("no JSON object")}
				return &services.IngestRequest{FileID: fileID}, nil
			},
			wantErr: domain.ErrMalformedOutput,
		},
		{
			name: "extraction insert fails",
			setup: func(f *fixture) (*services.IngestRequest, repositories.ExtractionRepository) {
				return &services.IngestRequest{FileID: fileID}, failingExtractionRepo{f.store.Extractions()}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req, extractions := tt.setup(f)
			svc := f.service(config.IngestModeOCR, extractions)

			res, err := svc.Ingest(context.Background(), owner, req)
			require.Error(t, err)
			assert.Nil(t, res)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			}
			assert.Zero(t, f.matterCount(t), "no matter may survive a failed ingest")
		})
	}
}

func TestIngest_RequiresCaller(t *testing.T) {
	f := newFixture(t)
	_, err := f.service(config.IngestModeOCR, nil).Ingest(context.Background(), "", &services.IngestRequest{FileID: fileID})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestCleanupOCR(t *testing.T) {
	f := newFixture(t)
	svc := f.service(config.IngestModeOCR, nil)
	ctx := context.Background()

	res, err := svc.Ingest(ctx, owner, &services.IngestRequest{FileID: fileID})
	require.NoError(t, err)

	f.ocr.text = "short"
	out, err := svc.CleanupOCR(ctx, owner, &services.CleanupOCRRequest{MatterID: res.MatterID})
	require.NoError(t, err)
	assert.Equal(t, ReparsedStatus, out.Status)
	assert.False(t, out.Reextracted)

	doc, err := f.store.Documents().GetByType(ctx, res.MatterID, models.DocumentTypeOfficeAction)
	require.NoError(t, err)
	assert.Equal(t, "short", doc.Text)

	// extraction untouched without reextract
	ext, err := svc.GetExtraction(ctx, owner, res.MatterID)
	require.NoError(t, err)
	assert.True(t, ext.Truncated)

	out, err = svc.CleanupOCR(ctx, owner, &services.CleanupOCRRequest{MatterID: res.MatterID, Reextract: true})
	require.NoError(t, err)
	assert.True(t, out.Reextracted)

	ext, err = svc.GetExtraction(ctx, owner, res.MatterID)
	require.NoError(t, err)
	assert.False(t, ext.Truncated)
}

func TestCleanupOCR_Errors(t *testing.T) {
	f := newFixture(t)
	svc := f.service(config.IngestModeOCR, nil)
	ctx := context.Background()

	res, err := svc.Ingest(ctx, owner, &services.IngestRequest{FileID: fileID})
	require.NoError(t, err)

	_, err = svc.CleanupOCR(ctx, "user-2", &services.CleanupOCRRequest{MatterID: res.MatterID})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.CleanupOCR(ctx, owner, &services.CleanupOCRRequest{})
	assert.ErrorIs(t, err, domain.ErrValidation)

	f.ocr.text = "new text"
	f.extractor.err = &domain.UpstreamError{Service: "llm", StatusCode: 500, Message: "boom"}
	_, err = svc.CleanupOCR(ctx, owner, &services.CleanupOCRRequest{MatterID: res.MatterID, Reextract: true})
	assert.ErrorIs(t, err, domain.ErrUpstream)

	// a failed re-extraction keeps the previous text
	doc, err := f.store.Documents().GetByType(ctx, res.MatterID, models.DocumentTypeOfficeAction)
	require.NoError(t, err)
	assert.NotEqual(t, "new text", doc.Text)
}

func TestListMatters(t *testing.T) {
	f := newFixture(t)
	svc := f.service(config.IngestModeOCR, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.Ingest(ctx, owner, &services.IngestRequest{FileID: fileID})
		require.NoError(t, err)
	}

	mine, err := svc.ListMatters(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	assert.False(t, mine[0].CreatedAt.Before(mine[1].CreatedAt))

	theirs, err := svc.ListMatters(ctx, "user-2")
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

func TestUpload_ThenIngest(t *testing.T) {
	f := newFixture(t)
	svc := f.service(config.IngestModeOCR, nil)
	ctx := context.Background()

	up, err := svc.Upload(ctx, &services.UploadRequest{Filename: `C:\scans\Final Rejection.pdf`, Data: buildPDF(t)})
	require.NoError(t, err)
	assert.Equal(t, 1, up.Pages)
	assert.Positive(t, up.Bytes)

	id, name, ok := strings.Cut(up.FileID, "/")
	require.True(t, ok)
	_, err = uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, "Final Rejection.pdf", name)

	stored, err := f.blobs.Download(ctx, up.FileID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(stored, []byte("%PDF-")))

	res, err := svc.Ingest(ctx, owner, &services.IngestRequest{FileID: up.FileID})
	require.NoError(t, err)

	matter, err := svc.GetMatter(ctx, owner, res.MatterID)
	require.NoError(t, err)
	assert.Equal(t, "Final Rejection.pdf", matter.Title)

	again, err := svc.Upload(ctx, &services.UploadRequest{Filename: "Final Rejection.pdf", Data: buildPDF(t)})
	require.NoError(t, err)
	assert.NotEqual(t, up.FileID, again.FileID)
}

func TestUpload_Rejects(t *testing.T) {
	f := newFixture(t)
	svc := f.service(config.IngestModeOCR, nil)

	_, err := svc.Upload(context.Background(), &services.UploadRequest{Filename: "oa.pdf"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Upload(context.Background(), &services.UploadRequest{Filename: "notes.txt", Data: []byte("hello")})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUploadKey(t *testing.T) {
	id := "5f0c1b7e-2f7e-4b8a-9d4b-1a2b3c4d5e6f"
	tests := []struct {
		filename string
		want     string
	}{
		{"oa.pdf", id + "/oa.pdf"},
		{"../../etc/oa.pdf", id + "/oa.pdf"},
		{"", id + "/" + defaultUploadName},
		{"..", id + "/" + defaultUploadName},
		{"a\x00b.pdf", id + "/ab.pdf"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, uploadKey(id, tt.filename), tt.filename)
	}

	long := uploadKey(id, strings.Repeat("é", 2*config.MaxFileIDLength))
	assert.Equal(t, config.MaxFileIDLength, utf8.RuneCountInString(long))
}

func TestIngest_LongFileIDTitleTruncated(t *testing.T) {
	f := newFixture(t)
	svc := f.service(config.IngestModeOCR, nil)
	ctx := context.Background()

	longName := strings.Repeat("ü", config.MaxMatterTitleLength+40) + ".pdf"
	key := "2b1e9c64-0d3a-4f7e-8a55-6c1d2e3f4a5b/" + longName
	require.NoError(t, f.blobs.Upload(ctx, key, buildPDF(t), "application/pdf"))

	res, err := svc.Ingest(ctx, owner, &services.IngestRequest{FileID: key})
	require.NoError(t, err)

	matter, err := svc.GetMatter(ctx, owner, res.MatterID)
	require.NoError(t, err)
	assert.Equal(t, config.MaxMatterTitleLength, utf8.RuneCountInString(matter.Title))
	assert.True(t, strings.HasPrefix(longName, matter.Title))
}
