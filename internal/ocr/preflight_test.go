package ocr

import (
	"bytes"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"oaresponse/internal/domain"
)

func buildPDF(t *testing.T, pages int) []byte {
	t.Helper()
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetFont("Helvetica", "", 12)
	for i := 0; i < pages; i++ {
		pdf.AddPage()
		pdf.Cell(40, 10, "Office Action")
	}
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	return buf.Bytes()
}

func TestInspector_PageCount(t *testing.T) {
	inspector := NewInspector()

	n, err := inspector.PageCount(buildPDF(t, 3))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestInspector_RejectsNonPDF(t *testing.T) {
	inspector := NewInspector()

	for name, data := range map[string][]byte{
		"empty":     {},
		"png":       []byte("\x89PNG\r\n\x1a\n...."),
		"truncated": []byte("%PDF-1.7\n1 0 obj"),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := inspector.PageCount(data)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}
