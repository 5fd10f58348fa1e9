package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const (
	pdfFont       = "Arial"
	pdfBodySize   = 10.0
	pdfLineHeight = 5.0
)

// renderPDF lays the markdown rendering out on A4 pages
func renderPDF(md, title string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	pdf.SetFont(pdfFont, "", pdfBodySize)

	source := []byte(md)
	doc := markdown.Parser().Parse(text.NewReader(source))

	r := &pdfRenderer{
		pdf:    pdf,
		source: source,
		// core fonts are cp1252
		tr: pdf.UnicodeTranslatorFromDescriptor(""),
	}
	if err := ast.Walk(doc, r.walk); err != nil {
		return nil, fmt.Errorf("lay out pdf: %w", err)
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("lay out pdf: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

type pdfRenderer struct {
	pdf       *fpdf.Fpdf
	source    []byte
	tr        func(string) string
	bold      bool
	italic    bool
	listLevel int
}

func (r *pdfRenderer) updateFont() {
	style := ""
	if r.bold {
		style += "B"
	}
	if r.italic {
		style += "I"
	}
	r.pdf.SetFont(pdfFont, style, pdfBodySize)
}

func (r *pdfRenderer) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Heading:
		if entering {
			r.pdf.Ln(4)
			size := 11.0
			switch node.Level {
			case 1:
				size = 15
			case 2:
				size = 12
			}
			r.pdf.SetFont(pdfFont, "B", size)
		} else {
			r.pdf.Ln(8)
			r.updateFont()
		}
	case *ast.Paragraph:
		if !entering && r.listLevel == 0 {
			r.pdf.Ln(7)
		}
	case *ast.Text:
		if entering {
			r.pdf.Write(pdfLineHeight, r.tr(string(node.Segment.Value(r.source))))
			if node.SoftLineBreak() || node.HardLineBreak() {
				r.pdf.Ln(pdfLineHeight)
			}
		}
	case *ast.String:
		if entering {
			r.pdf.Write(pdfLineHeight, r.tr(string(node.Value)))
		}
	case *ast.Emphasis:
		if node.Level == 2 {
			r.bold = entering
		} else {
			r.italic = entering
		}
		r.updateFont()
	case *ast.CodeSpan:
		if entering {
			r.pdf.SetFont("Courier", "", pdfBodySize)
			for c := node.FirstChild(); c != nil; c = c.NextSibling() {
				if t, ok := c.(*ast.Text); ok {
					r.pdf.Write(pdfLineHeight, r.tr(string(t.Segment.Value(r.source))))
				}
			}
			r.updateFont()
			return ast.WalkSkipChildren, nil
		}
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		if entering {
			r.pdf.SetFont("Courier", "", 9)
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				r.pdf.MultiCell(0, 4.5, r.tr(string(seg.Value(r.source))), "", "L", false)
			}
			r.updateFont()
			r.pdf.Ln(2)
			return ast.WalkSkipChildren, nil
		}
	case *ast.List:
		if entering {
			r.listLevel++
		} else {
			r.listLevel--
			if r.listLevel == 0 {
				r.pdf.Ln(7)
			}
		}
	case *ast.ListItem:
		if entering {
			if node.PreviousSibling() != nil {
				r.pdf.Ln(pdfLineHeight + 1)
			}
			r.pdf.SetX(15 + float64(r.listLevel-1)*5)
			r.pdf.Write(pdfLineHeight, "- ")
		}
	case *ast.ThematicBreak:
		if entering {
			y := r.pdf.GetY() + 2
			r.pdf.Line(15, y, 195, y)
			r.pdf.Ln(4)
		}
	}
	return ast.WalkContinue, nil
}
