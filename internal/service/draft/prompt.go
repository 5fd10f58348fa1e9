package draft

import (
	"encoding/json"
	"fmt"
	"strings"

	"oaresponse/internal/domain/models"
	"oaresponse/internal/jurisdiction"
	llmSvc "oaresponse/internal/service/llm"
)

// DefaultStyle and DefaultSections apply when a request leaves them empty.
const DefaultStyle = "concise"

var DefaultSections = []string{"cover", "summary", "amendments", "arguments", "conclusion"}

func systemPrompt(profile *jurisdiction.Profile, sections []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You draft patent office action responses compliant with %s (%s) practice.\n", profile.Code, profile.DisplayName)
	b.WriteString("Tone: conservative, professional.\n")
	fmt.Fprintf(&b, "Structure: %s.\n", strings.Join(sections, " -> "))
	fmt.Fprintf(&b, "Cite %s with section numbers where relevant.\n", profile.CitationAuthority)
	if len(profile.PracticeNotes) > 0 {
		b.WriteString("Practice notes:\n")
		for _, note := range profile.PracticeNotes {
			fmt.Fprintf(&b, "- %s\n", note)
		}
	}
	b.WriteString("Do NOT assert facts not in record. Propose claim amendments only if helpful and explain the rationale.\n")
	b.WriteString("Output JSON with keys: outline (markdown string), arguments (array of {target,text}), amendments (array of {claim,proposed,rationale}), citations (array of {source,link}).")
	return b.String()
}

// draftInput is the record the model drafts from
type draftInput struct {
	Rejections []models.Rejection `json:"rejections"`
	Claims     []models.Claim     `json:"claims"`
	PriorArt   []models.PriorArt  `json:"prior_art"`
	Style      string             `json:"style"`
}

// fillEmpty turns nil lists into empty ones so the model sees [] rather than null
func (in *draftInput) fillEmpty() {
	if in.Rejections == nil {
		in.Rejections = []models.Rejection{}
	}
	if in.Claims == nil {
		in.Claims = []models.Claim{}
	}
	if in.PriorArt == nil {
		in.PriorArt = []models.PriorArt{}
	}
}

func userPrompt(in *draftInput) (string, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("encode draft input: %w", err)
	}
	return string(data), nil
}

// normalize coerces common drift in draft replies before schema validation
func normalize(doc map[string]any) {
	switch outline := doc["outline"].(type) {
	case []any:
		// a list of headings instead of one markdown string
		lines := make([]string, 0, len(outline))
		for _, line := range outline {
			if s, ok := llmSvc.CoerceString(line).(string); ok {
				lines = append(lines, s)
			}
		}
		doc["outline"] = strings.Join(lines, "\n")
	default:
		doc["outline"] = llmSvc.CoerceString(outline)
	}

	for _, item := range llmSvc.EnsureArray(doc, "arguments") {
		if a, ok := item.(map[string]any); ok {
			llmSvc.EnsureStrings(a, "target", "text")
		}
	}
	for _, item := range llmSvc.EnsureArray(doc, "amendments") {
		if a, ok := item.(map[string]any); ok {
			llmSvc.EnsureStrings(a, "claim", "proposed", "rationale")
		}
	}
	for _, item := range llmSvc.EnsureArray(doc, "citations") {
		if c, ok := item.(map[string]any); ok {
			llmSvc.EnsureStrings(c, "source", "link")
		}
	}
}
