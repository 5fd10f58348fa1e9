package extraction

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oaresponse/internal/config"
	"oaresponse/internal/domain"
	"oaresponse/internal/domain/services"
	domainllm "oaresponse/internal/domain/services/llm"
)

type fakeProvider struct {
	content string
	err     error
	got     *domainllm.JSONRequest
}

func (f *fakeProvider) GenerateJSON(_ context.Context, req *domainllm.JSONRequest) (*domainllm.JSONResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &domainllm.JSONResponse{Content: f.content, Model: "fake-1"}, nil
}

func (f *fakeProvider) Name() string { return "fake" }
func (f *fakeProvider) SupportsModel(string) bool { return true }
func (f *fakeProvider) ForModel(string) (domainllm.JSONProvider, string, error) {
	return f, "fake-1", nil
}

func newTestEngine(t *testing.T, p *fakeProvider) *Engine {
	t.Helper()
	e, err := NewEngine(p, "fake/fake-1", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return e
}

const goodReply = `{
	"metadata": {"application_number": "16/123,456", "examiner": "J. Smith", "art_unit": "2123", "mail_date": "2024-01-15"},
	"rejections": [{"code": "103", "basis": "Obviousness over Doe", "claims": ["1", "3-5"], "summary": "Doe teaches A and B."}],
	"formalities": [{"topic": "drawings", "detail": "Fig. 2 lacks labels"}],
	"claims": [{"no": 1, "text": "A widget comprising a frame."}],
	"prior_art": [{"kind": "US", "number": "US 9,999,999 B2", "title": "Widget"}]
}`

func TestEngine_Extract(t *testing.T) {
	p := &fakeProvider{content: goodReply}
	e := newTestEngine(t, p)

	res, err := e.Extract(context.Background(), &services.ExtractionInput{Text: "office action text"})
	require.NoError(t, err)

	assert.False(t, res.Truncated)
	assert.Equal(t, "fake-1", res.Model)
	assert.Equal(t, "16/123,456", res.Record.Metadata.ApplicationNumber)
	require.Len(t, res.Record.Rejections, 1)
	assert.Equal(t, []string{"1", "3-5"}, res.Record.Rejections[0].Claims)
	require.Len(t, res.Record.Claims, 1)
	assert.Equal(t, 1, res.Record.Claims[0].Number)

	require.NotNil(t, p.got)
	assert.Equal(t, systemPrompt, p.got.System)
	assert.True(t, strings.HasSuffix(p.got.User, "office action text"))
	require.NotNil(t, p.got.Temperature)
	assert.Zero(t, *p.got.Temperature)
}

func TestEngine_Extract_NormalizesDrift(t *testing.T) {
	p := &fakeProvider{content: "```json\n" + `{
		"metadata": {"application_number": 16123456},
		"rejections": [{"code": 102, "claims": [1, 2], "summary": null}],
		"claims": [{"no": "7", "text": "A method."}],
		"prior_art": null
	}` + "\n```"}
	e := newTestEngine(t, p)

	res, err := e.Extract(context.Background(), &services.ExtractionInput{Text: "x"})
	require.NoError(t, err)

	rec := res.Record
	assert.Equal(t, "16123456", rec.Metadata.ApplicationNumber)
	assert.Equal(t, "", rec.Metadata.Examiner)
	require.Len(t, rec.Rejections, 1)
	assert.Equal(t, "102", rec.Rejections[0].Code)
	assert.Equal(t, []string{"1", "2"}, rec.Rejections[0].Claims)
	assert.Equal(t, 7, rec.Claims[0].Number)
	assert.NotNil(t, rec.Formalities)
	assert.Empty(t, rec.Formalities)
	assert.NotNil(t, rec.PriorArt)
	assert.Empty(t, rec.PriorArt)
}

func TestEngine_Extract_EmptyValuesAllowed(t *testing.T) {
	p := &fakeProvider{content: `{"metadata":{"application_number":"","examiner":"","art_unit":"","mail_date":""},"rejections":[],"formalities":[],"claims":[],"prior_art":[]}`}
	e := newTestEngine(t, p)

	res, err := e.Extract(context.Background(), &services.ExtractionInput{Text: "blank page"})
	require.NoError(t, err)
	assert.Empty(t, res.Record.Rejections)
	assert.Empty(t, res.Record.Claims)
}

func TestEngine_Extract_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty reply", ""},
		{"not json", "I'm sorry, I can't read this document."},
		{"truncated json", `{"metadata": {"examiner": "J. Smith"`},
		{"wrong shape", `{"rejections": "none"}`},
		{"fractional claim number", `{"claims": [{"no": 1.5, "text": "x"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, &fakeProvider{content: tt.content})
			res, err := e.Extract(context.Background(), &services.ExtractionInput{Text: "x"})
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, domain.ErrMalformedOutput))

			var mErr *domain.MalformedOutputError
			require.ErrorAs(t, err, &mErr)
			assert.Equal(t, "extraction", mErr.Stage)
			assert.Equal(t, tt.content, mErr.Raw)
		})
	}
}

func TestEngine_Extract_UpstreamError(t *testing.T) {
	upstream := &domain.UpstreamError{Service: "llm", StatusCode: 429, Message: "rate limited"}
	e := newTestEngine(t, &fakeProvider{err: upstream})

	_, err := e.Extract(context.Background(), &services.ExtractionInput{Text: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstream))
	assert.False(t, errors.Is(err, domain.ErrMalformedOutput))
	assert.Contains(t, err.Error(), "rate limited")
}

func TestEngine_Extract_NoInput(t *testing.T) {
	e := newTestEngine(t, &fakeProvider{content: goodReply})
	_, err := e.Extract(context.Background(), &services.ExtractionInput{})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestEngine_Extract_Truncation(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		p := &fakeProvider{content: goodReply}
		e := newTestEngine(t, p)

		// multi-byte runes so a byte-based cut would split a character
		text := strings.Repeat("é", config.MaxOCRTextChars+10)
		res, err := e.Extract(context.Background(), &services.ExtractionInput{Text: text})
		require.NoError(t, err)
		assert.True(t, res.Truncated)

		body := strings.TrimPrefix(p.got.User, textPromptPrefix)
		assert.Equal(t, config.MaxOCRTextChars, len([]rune(body)))
		assert.Equal(t, strings.Repeat("é", config.MaxOCRTextChars), body)
	})

	t.Run("text at limit", func(t *testing.T) {
		p := &fakeProvider{content: goodReply}
		e := newTestEngine(t, p)

		res, err := e.Extract(context.Background(), &services.ExtractionInput{Text: strings.Repeat("a", config.MaxOCRTextChars)})
		require.NoError(t, err)
		assert.False(t, res.Truncated)
	})

	t.Run("raw pdf", func(t *testing.T) {
		p := &fakeProvider{content: goodReply}
		e := newTestEngine(t, p)

		pdf := make([]byte, config.MaxRawBase64Bytes)
		res, err := e.Extract(context.Background(), &services.ExtractionInput{PDF: pdf})
		require.NoError(t, err)
		assert.True(t, res.Truncated)
		assert.True(t, strings.HasPrefix(p.got.User, pdfPromptPrefix))
		assert.Len(t, strings.TrimPrefix(p.got.User, pdfPromptPrefix), config.MaxRawBase64Bytes)
	})
}
