package extraction

import (
	llmSvc "oaresponse/internal/service/llm"
)

// normalize repairs the type drift models commonly produce so that a
// nearly-correct reply still validates. Anything it cannot repair is left for
// the schema to reject.
func normalize(doc map[string]any) {
	meta, ok := doc["metadata"].(map[string]any)
	if doc["metadata"] == nil {
		meta, ok = map[string]any{}, true
		doc["metadata"] = meta
	}
	if ok {
		llmSvc.EnsureStrings(meta, "application_number", "examiner", "art_unit", "mail_date")
	}

	for _, item := range llmSvc.EnsureArray(doc, "rejections") {
		rej, ok := item.(map[string]any)
		if !ok {
			continue
		}
		llmSvc.EnsureStrings(rej, "code", "basis", "summary")
		switch claims := rej["claims"].(type) {
		case nil:
			rej["claims"] = []any{}
		case []any:
			for i := range claims {
				claims[i] = llmSvc.CoerceString(claims[i])
			}
		case string, float64:
			// "1-5" or 3 on its own
			rej["claims"] = []any{llmSvc.CoerceString(claims)}
		}
	}

	for _, item := range llmSvc.EnsureArray(doc, "formalities") {
		if f, ok := item.(map[string]any); ok {
			llmSvc.EnsureStrings(f, "topic", "detail")
		}
	}

	for _, item := range llmSvc.EnsureArray(doc, "claims") {
		c, ok := item.(map[string]any)
		if !ok {
			continue
		}
		c["no"] = llmSvc.CoerceInt(c["no"])
		llmSvc.EnsureStrings(c, "text")
	}

	for _, item := range llmSvc.EnsureArray(doc, "prior_art") {
		if p, ok := item.(map[string]any); ok {
			llmSvc.EnsureStrings(p, "kind", "number", "title")
		}
	}
}
