package ocr

import (
	"bytes"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"oaresponse/internal/domain"
	"oaresponse/internal/domain/services"
)

var pdfMagic = []byte("%PDF-")

// Inspector validates PDFs with pdfcpu before they are sent anywhere.
type Inspector struct {
	conf *model.Configuration
}

var _ services.PDFInspector = (*Inspector)(nil)

// NewInspector creates an inspector with relaxed validation, since scanned
// office actions are often slightly off-spec.
func NewInspector() *Inspector {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Inspector{conf: conf}
}

// PageCount returns the number of pages, or a validation error if pdf is not
// a readable PDF.
func (i *Inspector) PageCount(pdf []byte) (int, error) {
	if !bytes.HasPrefix(bytes.TrimLeft(pdf[:min(len(pdf), 1024)], "\x00\t\r\n "), pdfMagic) {
		return 0, domain.Validationf("uploaded file is not a PDF")
	}

	n, err := api.PageCount(bytes.NewReader(pdf), i.conf)
	if err != nil {
		return 0, domain.Validationf("unreadable PDF: %v", err)
	}
	if n == 0 {
		return 0, domain.Validationf("PDF has no pages")
	}
	return n, nil
}
