package tabular

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for file names without a known extension.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrSheetNotFound is returned when a workbook has no worksheet to read.
var ErrSheetNotFound = errors.New("worksheet not found")

// Read picks the decoder from the file name's extension: .csv, .tsv/.tab,
// .xlsx/.xlsm. pick is only consulted for workbooks.
func Read(name string, r io.Reader, pick SheetPicker, header bool) (*Sheet, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return ReadDelimited(r, ',', header)
	case ".tsv", ".tab":
		return ReadDelimited(r, '\t', header)
	case ".xlsx", ".xlsm":
		return ReadXLSX(r, pick, header)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// IsWorkbook reports whether Read would decode name as a workbook.
func IsWorkbook(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}
