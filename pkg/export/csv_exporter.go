package export

import (
	"bytes"
	"encoding/csv"
	"errors"
)

var errNoHeaders = errors.New("export: dataset has no headers")

// Dataset is one table of export content. Rows may be shorter than Headers;
// missing cells render empty.
type Dataset struct {
	Headers []string
	Rows    [][]string
}

func (d Dataset) Cell(row, col int) string {
	if row < 0 || row >= len(d.Rows) || col < 0 || col >= len(d.Rows[row]) {
		return ""
	}
	return d.Rows[row][col]
}

// padded returns row i widened to the header count.
func (d Dataset) padded(i int) []string {
	out := make([]string, len(d.Headers))
	copy(out, d.Rows[i])
	return out
}

// CSVExporter writes comma separated output readable by the bulk importer.
type CSVExporter struct {
	// CRLF switches line endings for spreadsheet tools that expect them.
	CRLF bool
}

func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, errNoHeaders
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = e.CRLF

	records := make([][]string, 0, len(data.Rows)+1)
	records = append(records, data.Headers)
	for i := range data.Rows {
		records = append(records, data.padded(i))
	}
	// WriteAll flushes and reports the first write error.
	if err := w.WriteAll(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
