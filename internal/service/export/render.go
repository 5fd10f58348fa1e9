package export

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"oaresponse/internal/domain/models"
)

// Format is an export file type
type Format string

const (
	FormatText     Format = "txt"
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
	FormatPDF      Format = "pdf"
)

// Formats lists every supported format; the first is the default
var Formats = []Format{FormatText, FormatMarkdown, FormatHTML, FormatPDF}

// ContentType returns the MIME type served for f
func (f Format) ContentType() string {
	switch f {
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/plain"
	}
}

// renderText lays a draft out as plain text. Every section header is written
// even when the draft has nothing under it.
func renderText(d *models.Draft) string {
	var b strings.Builder
	b.WriteString("OFFICE ACTION RESPONSE\n\n")
	b.WriteString("OUTLINE\n" + d.Outline + "\n\n")

	b.WriteString("ARGUMENTS\n")
	for _, a := range d.Arguments {
		fmt.Fprintf(&b, "- %s: %s\n", a.Target, a.Text)
	}

	b.WriteString("\nPROPOSED AMENDMENTS\n")
	for _, m := range d.Amendments {
		fmt.Fprintf(&b, "Claim %s: %s (Reason: %s)\n", m.Claim, m.Proposed, m.Rationale)
	}

	b.WriteString("\nCITATIONS\n")
	for _, c := range d.Citations {
		if c.Link == "" {
			fmt.Fprintf(&b, "- %s\n", c.Source)
			continue
		}
		fmt.Fprintf(&b, "- %s — %s\n", c.Source, c.Link)
	}
	return b.String()
}

// renderMarkdown is the source for the md, html and pdf formats
func renderMarkdown(d *models.Draft) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Office Action Response\n\n_Draft version %d_\n\n", d.Version)

	b.WriteString("## Outline\n\n")
	if outline := strings.TrimSpace(d.Outline); outline != "" {
		b.WriteString(outline + "\n\n")
	}

	b.WriteString("## Arguments\n\n")
	for _, a := range d.Arguments {
		fmt.Fprintf(&b, "- **%s**: %s\n", a.Target, a.Text)
	}
	b.WriteString("\n## Proposed Amendments\n\n")
	for _, m := range d.Amendments {
		fmt.Fprintf(&b, "- **Claim %s**: %s\n  _Reason: %s_\n", m.Claim, m.Proposed, m.Rationale)
	}
	b.WriteString("\n## Citations\n\n")
	for _, c := range d.Citations {
		if c.Link == "" {
			fmt.Fprintf(&b, "- %s\n", c.Source)
			continue
		}
		fmt.Fprintf(&b, "- [%s](%s)\n", c.Source, c.Link)
	}
	return b.String()
}

// markdown is configured once; goldmark instances are safe for concurrent use
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
)

// htmlPolicy scrubs the rendered body; links in citations come from the model
var htmlPolicy = bluemonday.UGCPolicy()

// renderHTML converts the markdown rendering to a standalone page. Raw HTML
// coming from the model is not passed through.
func renderHTML(md, title string) ([]byte, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(md), &body); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&page, "<title>%s</title>\n", html.EscapeString(title))
	page.WriteString("</head>\n<body>\n")
	page.Write(htmlPolicy.SanitizeBytes(body.Bytes()))
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}
