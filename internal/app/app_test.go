package app

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oaresponse/internal/config"
	"oaresponse/internal/domain"
)

func localConfig(dir string) *config.Config {
	return &config.Config{
		StoreBackend:    config.StoreBackendBadger,
		BlobBackend:     config.BlobBackendBadger,
		BadgerDir:       dir,
		IngestMode:      config.IngestModeRaw,
		DraftVersioning: config.DraftVersioningIncrement,
		ExtractionModel: "openai/gpt-4o-mini",
		DraftModel:      "openai/gpt-4o-mini",
		OpenAIAPIKey:    "sk-test",
		OpenAIBaseURL:   "http://127.0.0.1:0/v1",
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_LocalBackends(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, localConfig(t.TempDir()), testLogger(), Options{})
	require.NoError(t, err)
	defer a.Close()

	matters, err := a.Matters.ListMatters(ctx, "6a1e3c1e-8f0a-4a57-9b4e-0c1f2d3e4f50")
	require.NoError(t, err)
	assert.Empty(t, matters)

	_, err = a.Matters.GetMatter(ctx, "6a1e3c1e-8f0a-4a57-9b4e-0c1f2d3e4f50", "0b6f7c55-4a54-4d7f-9f3e-0e8a3f1c2d11")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNew_FailureReleasesResources(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	cfg := localConfig(dir)
	cfg.DraftModel = "mystery/model"
	_, err := New(ctx, cfg, testLogger(), Options{})
	require.Error(t, err)

	// badger holds a directory lock; a second open only works if the first was closed
	a, err := New(ctx, localConfig(dir), testLogger(), Options{Trusted: true})
	require.NoError(t, err)
	assert.NoError(t, a.Close())
}
