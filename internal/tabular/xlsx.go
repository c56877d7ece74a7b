package tabular

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// SheetPicker chooses which worksheet of a workbook to read.
type SheetPicker func(names []string) string

// FirstSheet picks the first worksheet.
func FirstSheet(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

// YearSheet picks the first worksheet whose name looks like a year
// ("2023", "Log 2024"), falling back to the first one.
func YearSheet(names []string) string {
	for _, n := range names {
		if strings.Contains(n, "202") {
			return n
		}
	}
	return FirstSheet(names)
}

// NamedSheet picks the worksheet with the given name, ignoring case.
func NamedSheet(name string) SheetPicker {
	return func(names []string) string {
		for _, n := range names {
			if strings.EqualFold(n, name) {
				return n
			}
		}
		return ""
	}
}

// ReadXLSX reads one worksheet. Cell values are raw, so dates arrive as
// serial numbers that ParseTime understands.
func ReadXLSX(r io.Reader, pick SheetPicker, header bool) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	name := pick(f.GetSheetList())
	if name == "" {
		return nil, ErrSheetNotFound
	}
	records, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read worksheet %q: %w", name, err)
	}
	return NewSheet(name, records, header), nil
}

// Table is one worksheet to write.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// WriteXLSX writes the tables as worksheets of one workbook, in order.
func WriteXLSX(w io.Writer, tables ...Table) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, t := range tables {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), t.Name); err != nil {
				return fmt.Errorf("rename worksheet: %w", err)
			}
		} else if _, err := f.NewSheet(t.Name); err != nil {
			return fmt.Errorf("add worksheet %q: %w", t.Name, err)
		}
		if err := writeRow(f, t.Name, 1, t.Header); err != nil {
			return err
		}
		for j, row := range t.Rows {
			if err := writeRow(f, t.Name, j+2, row); err != nil {
				return err
			}
		}
	}
	f.SetActiveSheet(0)
	return f.Write(w)
}

func writeRow(f *excelize.File, sheet string, n int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d of %q: %w", n, sheet, err)
	}
	return nil
}
