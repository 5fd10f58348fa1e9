package config

const (
	// MaxMatterTitleLength is the maximum length for matter titles.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxMatterTitleLength = 255

	// MaxFileIDLength bounds blob keys accepted from clients.
	MaxFileIDLength = 1024

	// MaxOCRTextChars is how much OCR text is sent to the extraction model.
	// Counted in characters, not bytes.
	MaxOCRTextChars = 120000

	// MaxRawBase64Bytes is how much of the base64-encoded PDF is sent in raw
	// ingest mode.
	MaxRawBase64Bytes = 100000

	// MaxStyleLength and MaxSections bound the drafting knobs.
	MaxStyleLength = 100
	MaxSections    = 20

	// MaxLLMOutputTokens caps every model reply.
	MaxLLMOutputTokens = 8192
)
