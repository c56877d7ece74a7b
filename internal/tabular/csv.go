package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ReadDelimited reads a CSV (comma ',') or TSV (comma '\t') stream.
// Ragged rows are allowed.
func ReadDelimited(r io.Reader, comma rune, header bool) (*Sheet, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read delimited: %w", err)
	}
	return NewSheet("", records, header), nil
}

// WriteDelimited writes the header followed by every row.
func WriteDelimited(w io.Writer, comma rune, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write delimited: %w", err)
	}
	return nil
}
