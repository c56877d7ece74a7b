// Package tabular turns CSV/TSV and XLSX files into plain rows of strings
// and writes them back out. It knows nothing about cases.
package tabular

import (
	"strings"
)

// Sheet is one table. Header is empty for positional (headerless) sheets.
type Sheet struct {
	Name   string
	Header []string
	Rows   []Row

	index map[string]int
}

// Row is one data row. Number is the 1-based row number in the source
// file, so a header occupies row 1 and the first data row is row 2.
type Row struct {
	Number int
	Cells  []string

	sheet *Sheet
}

// NewSheet builds a sheet from raw records. With header set, the first
// record names the columns (trimmed, lower-cased) and is not a data row.
func NewSheet(name string, records [][]string, header bool) *Sheet {
	s := &Sheet{Name: name, index: map[string]int{}}
	start := 0
	if header && len(records) > 0 {
		for i, col := range records[0] {
			col = strings.ToLower(strings.TrimSpace(col))
			s.Header = append(s.Header, col)
			if _, dup := s.index[col]; !dup {
				s.index[col] = i
			}
		}
		start = 1
	}
	for i := start; i < len(records); i++ {
		if isBlank(records[i]) {
			continue
		}
		s.Rows = append(s.Rows, Row{Number: i + 1, Cells: records[i], sheet: s})
	}
	return s
}

// Missing returns the required columns absent from the header.
func (s *Sheet) Missing(required ...string) []string {
	var missing []string
	for _, col := range required {
		if _, ok := s.index[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// Get returns the cell under the named column, or "" if the column or the
// cell does not exist.
func (r Row) Get(col string) string {
	if r.sheet == nil {
		return ""
	}
	i, ok := r.sheet.index[col]
	if !ok {
		return ""
	}
	v, _ := r.At(i)
	return v
}

// At returns the cell at a 0-based position.
func (r Row) At(i int) (string, bool) {
	if i < 0 || i >= len(r.Cells) {
		return "", false
	}
	return r.Cells[i], true
}

// Values maps column name to cell value.
func (r Row) Values() map[string]string {
	out := make(map[string]string, len(r.Cells))
	if r.sheet == nil {
		return out
	}
	for col, i := range r.sheet.index {
		out[col], _ = r.At(i)
	}
	return out
}

func isBlank(record []string) bool {
	for _, c := range record {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
