package draft

import (
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/microcosm-cc/bluemonday"

	"oaresponse/internal/domain/models"
)

// Some models answer with HTML fragments (<p>, <ul>, <strong>) inside the
// outline and argument text. Those are sanitized and turned into Markdown so
// every export format renders them the same way.
var (
	htmlTag   = regexp.MustCompile(`(?i)</?(p|br|ul|ol|li|strong|b|em|i|h[1-6]|blockquote|code|pre|a)\b[^>]*>`)
	ugcPolicy = bluemonday.UGCPolicy()
	toMD      = md.NewConverter("", true, nil)
)

// cleanMarkup rewrites HTML-bearing fields of content in place
func cleanMarkup(content *models.DraftContent) {
	content.Outline = htmlToMarkdown(content.Outline)
	for i := range content.Arguments {
		content.Arguments[i].Text = htmlToMarkdown(content.Arguments[i].Text)
	}
	for i := range content.Amendments {
		content.Amendments[i].Proposed = htmlToMarkdown(content.Amendments[i].Proposed)
		content.Amendments[i].Rationale = htmlToMarkdown(content.Amendments[i].Rationale)
	}
}

// htmlToMarkdown returns s unchanged unless it contains markup tags.
// A conversion failure also leaves s as it was.
func htmlToMarkdown(s string) string {
	if !htmlTag.MatchString(s) {
		return s
	}
	out, err := toMD.ConvertString(ugcPolicy.Sanitize(s))
	if err != nil {
		return s
	}
	return strings.TrimSpace(out)
}
