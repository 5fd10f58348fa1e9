package llm

import (
	"fmt"
	"log/slog"

	"oaresponse/internal/config"
)

// SetupProviders creates the provider factory and resolves every configured
// model once so a bad key or model string fails at startup.
func SetupProviders(cfg *config.Config, logger *slog.Logger) (*ProviderFactory, error) {
	factory := NewProviderFactory(cfg, logger)

	for _, m := range []struct{ stage, model string }{
		{"extraction", cfg.ExtractionModel},
		{"draft", cfg.DraftModel},
	} {
		_, name, err := factory.ForModel(m.model)
		if err != nil {
			return nil, fmt.Errorf("%s model %q: %w", m.stage, m.model, err)
		}
		logger.Info("model configured", "stage", m.stage, "model", name)
	}

	return factory, nil
}
