package extraction

import (
	"encoding/base64"
	"unicode/utf8"

	"oaresponse/internal/config"
)

const systemPrompt = `You are a legal NLP parser for patent office actions. Extract information from the document and output strict JSON with these fields:
metadata: {application_number: string, examiner: string, art_unit: string, mail_date: string}
rejections: [{code: string, basis: string, claims: string[], summary: string}]
formalities: [{topic: string, detail: string}]
claims: [{no: number, text: string}]
prior_art: [{kind: string, number: string, title: string}]

Use empty strings/arrays if information is not found. Do not invent data.`

const (
	textPromptPrefix = "Please analyze this office action and extract the required information. The text recovered from the document follows:\n\n"
	pdfPromptPrefix  = "Please analyze this office action PDF and extract the required information. The PDF is provided as base64: "
)

// truncateRunes cuts s to at most limit characters without splitting a UTF-8 sequence.
func truncateRunes(s string, limit int) (string, bool) {
	if utf8.RuneCountInString(s) <= limit {
		return s, false
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i], true
		}
		n++
	}
	return s, false
}

// userPrompt builds the user message and reports whether the input was cut.
func userPrompt(text string, pdf []byte) (string, bool) {
	if pdf != nil {
		encoded := base64.StdEncoding.EncodeToString(pdf)
		truncated := len(encoded) > config.MaxRawBase64Bytes
		if truncated {
			encoded = encoded[:config.MaxRawBase64Bytes]
		}
		return pdfPromptPrefix + encoded, truncated
	}

	body, truncated := truncateRunes(text, config.MaxOCRTextChars)
	return textPromptPrefix + body, truncated
}
