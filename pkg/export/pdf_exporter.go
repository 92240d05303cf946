package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders datasets into a landscape tabular PDF.
type PDFExporter struct{}

func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

const (
	pdfPageWidth  = 277.0
	pdfLineHeight = 4.0
)

// Render creates a PDF document with an optional title and table body. Wide
// tables shrink the font so every column fits on an A4 landscape page.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if title != "" {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(2)
	}

	fontSize := 7.0
	if len(data.Headers) > 16 {
		fontSize = 4.5
	}
	colWidth := pdfPageWidth / float64(len(data.Headers))

	writeRow := func(cells []string, style string) {
		pdf.SetFont("Arial", style, fontSize)
		lines := 1
		wrapped := make([][]string, len(cells))
		for i, cell := range cells {
			wrapped[i] = pdf.SplitText(cell, colWidth-1)
			if len(wrapped[i]) > lines {
				lines = len(wrapped[i])
			}
		}
		height := float64(lines) * pdfLineHeight
		if pdf.GetY()+height > 200 {
			pdf.AddPage()
			pdf.SetFont("Arial", style, fontSize)
		}
		x, y := pdf.GetXY()
		for i := range cells {
			pdf.Rect(x+float64(i)*colWidth, y, colWidth, height, "D")
			for l, text := range wrapped[i] {
				pdf.SetXY(x+float64(i)*colWidth, y+float64(l)*pdfLineHeight)
				pdf.CellFormat(colWidth, pdfLineHeight, tr(text), "", 0, "L", false, 0, "")
			}
		}
		pdf.SetXY(x, y+height)
	}

	writeRow(data.Headers, "B")
	cells := make([]string, len(data.Headers))
	for i := range data.Rows {
		for col := range data.Headers {
			cells[col] = data.Cell(i, col)
		}
		writeRow(cells, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
