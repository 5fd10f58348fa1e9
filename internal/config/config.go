package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Ingest modes
const (
	IngestModeOCR = "ocr" // Document AI text, then extraction
	IngestModeRaw = "raw" // base64 PDF handed straight to the model
)

// Draft versioning modes
const (
	DraftVersioningIncrement = "increment"
	DraftVersioningFixed     = "fixed"
)

// Record store backends
const (
	StoreBackendPostgres = "postgres"
	StoreBackendBadger   = "badger"
)

// Blob backends
const (
	BlobBackendSupabase = "supabase"
	BlobBackendBadger   = "badger"
)

type Config struct {
	Port            string
	Environment     string
	SupabaseURL     string
	SupabaseKey     string // service-role key, used for Storage downloads
	SupabaseDBURL   string
	SupabaseJWKSURL string // Constructed from SupabaseURL + /auth/v1/.well-known/jwks.json
	CORSOrigins     string
	TablePrefix     string

	// LLM Configuration
	// Model is "provider/model", e.g. "openai/google/gemini-2.5-flash" for an
	// OpenAI-compatible gateway.
	ExtractionModel  string
	DraftModel       string
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	AnthropicAPIKey  string
	OpenRouterAPIKey string
	GeminiAPIKey     string
	LLMTimeout       time.Duration
	LLMRateLimit     float64 // requests per second across all providers

	// Document AI
	DocAIProjectID       string
	DocAILocation        string
	DocAIProcessorID     string
	DocAICredentialsJSON string // service-account key file contents
	DocAITimeout         time.Duration
	DocAIRateLimit       float64

	// StoreBackend selects where matters, documents, extractions and drafts live
	StoreBackend string

	// Blob store
	BlobBackend string
	BlobBucket  string
	BadgerDir   string

	IngestMode      string
	DraftVersioning string

	// AuthCacheTTL is how long a matter ownership grant is remembered
	AuthCacheTTL time.Duration

	// LogDir enables a timestamped log file alongside stdout when set
	LogDir string

	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)
	supabaseURL := strings.TrimRight(getEnv("SUPABASE_URL", ""), "/")

	// Construct JWKS URL from Supabase URL
	jwksURL := ""
	if supabaseURL != "" {
		jwksURL = supabaseURL + "/auth/v1/.well-known/jwks.json"
	}

	return &Config{
		Port:            getEnv("PORT", "8080"),
		Environment:     env,
		SupabaseURL:     supabaseURL,
		SupabaseKey:     getEnv("SUPABASE_SERVICE_ROLE_KEY", getEnv("SUPABASE_KEY", "")),
		SupabaseDBURL:   getEnv("SUPABASE_DB_URL", ""),
		SupabaseJWKSURL: getEnv("SUPABASE_JWKS_URL", jwksURL),
		CORSOrigins:     getEnv("CORS_ORIGINS", "*"),
		TablePrefix:     tablePrefix,

		ExtractionModel:  getEnv("EXTRACTION_MODEL", "openai/google/gemini-2.5-flash"),
		DraftModel:       getEnv("DRAFT_MODEL", getEnv("EXTRACTION_MODEL", "openai/google/gemini-2.5-flash")),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", getEnv("LOVABLE_API_KEY", "")),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", "https://ai.gateway.lovable.dev/v1"),
		AnthropicAPIKey:  getEnv("ANTHROPIC_API_KEY", ""),
		OpenRouterAPIKey: getEnv("OPENROUTER_API_KEY", ""),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		LLMTimeout:       getDuration("LLM_TIMEOUT", 120*time.Second),
		LLMRateLimit:     getFloat("LLM_RATE_LIMIT", 2),

		DocAIProjectID:       getEnv("GCP_PROJECT_ID", ""),
		DocAILocation:        getEnv("GCP_LOCATION", "us"),
		DocAIProcessorID:     getEnv("DOCAI_PROCESSOR_ID", ""),
		DocAICredentialsJSON: getEnv("GCP_SA_KEY_JSON", ""),
		DocAITimeout:         getDuration("DOCAI_TIMEOUT", 90*time.Second),
		DocAIRateLimit:       getFloat("DOCAI_RATE_LIMIT", 2),

		StoreBackend: getEnv("STORE_BACKEND", StoreBackendPostgres),

		BlobBackend: getEnv("BLOB_BACKEND", BlobBackendSupabase),
		BlobBucket:  getEnv("BLOB_BUCKET", "documents"),
		BadgerDir:   getEnv("BADGER_DIR", "./data/badger"),

		IngestMode:      getEnv("INGEST_MODE", IngestModeOCR),
		DraftVersioning: getEnv("DRAFT_VERSIONING", DraftVersioningIncrement),
		AuthCacheTTL:    getDuration("AUTH_CACHE_TTL", time.Minute),

		LogDir: getEnv("LOG_DIR", ""),

		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// Validate reports every missing credential at once so a misconfigured
// deployment fails at startup rather than on the first request.
func (c *Config) Validate() error {
	var missing []string
	require := func(name, value string) {
		if value == "" {
			missing = append(missing, name)
		}
	}

	require("SUPABASE_URL or SUPABASE_JWKS_URL", c.SupabaseJWKSURL)

	switch c.StoreBackend {
	case StoreBackendPostgres:
		require("SUPABASE_DB_URL", c.SupabaseDBURL)
	case StoreBackendBadger:
		require("BADGER_DIR", c.BadgerDir)
	default:
		return fmt.Errorf("invalid STORE_BACKEND %q (want %s or %s)", c.StoreBackend, StoreBackendPostgres, StoreBackendBadger)
	}

	switch c.BlobBackend {
	case BlobBackendSupabase:
		require("SUPABASE_URL", c.SupabaseURL)
		require("SUPABASE_SERVICE_ROLE_KEY", c.SupabaseKey)
	case BlobBackendBadger:
		require("BADGER_DIR", c.BadgerDir)
	default:
		return fmt.Errorf("invalid BLOB_BACKEND %q (want %s or %s)", c.BlobBackend, BlobBackendSupabase, BlobBackendBadger)
	}

	switch c.IngestMode {
	case IngestModeOCR:
		require("GCP_PROJECT_ID", c.DocAIProjectID)
		require("DOCAI_PROCESSOR_ID", c.DocAIProcessorID)
		require("GCP_SA_KEY_JSON", c.DocAICredentialsJSON)
	case IngestModeRaw:
	default:
		return fmt.Errorf("invalid INGEST_MODE %q (want %s or %s)", c.IngestMode, IngestModeOCR, IngestModeRaw)
	}

	switch c.DraftVersioning {
	case DraftVersioningIncrement, DraftVersioningFixed:
	default:
		return fmt.Errorf("invalid DRAFT_VERSIONING %q (want %s or %s)", c.DraftVersioning, DraftVersioningIncrement, DraftVersioningFixed)
	}

	for _, model := range []string{c.ExtractionModel, c.DraftModel} {
		switch providerOf(model) {
		case "openai":
			require("OPENAI_API_KEY", c.OpenAIAPIKey)
		case "anthropic":
			require("ANTHROPIC_API_KEY", c.AnthropicAPIKey)
		case "openrouter":
			require("OPENROUTER_API_KEY", c.OpenRouterAPIKey)
		case "gemini":
			require("GEMINI_API_KEY", c.GeminiAPIKey)
		default:
			return fmt.Errorf("model %q must be prefixed with openai/, anthropic/, openrouter/ or gemini/", model)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(dedupe(missing), ", "))
	}
	return nil
}

func providerOf(model string) string {
	provider, _, _ := strings.Cut(model, "/")
	return provider
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix, ok := os.LookupEnv("TABLE_PREFIX"); ok {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var f float64
		if _, err := fmt.Sscanf(value, "%g", &f); err == nil {
			return f
		}
	}
	return defaultValue
}
