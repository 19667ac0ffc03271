package csvio

import (
	"io"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// EncodeXLSX writes items to a single-sheet workbook with the same columns
// as the CSV export.
func (c Codec[T]) EncodeXLSX(w io.Writer, sheet string, items []T) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheet == "" {
		sheet = defaultSheet
	}
	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return err
		}
	}

	if err := writeRow(f, sheet, 1, c.Headers()); err != nil {
		return err
	}
	for i, item := range items {
		if err := writeRow(f, sheet, i+2, c.Record(item)); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func writeRow(f *excelize.File, sheet string, row int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	values := make([]interface{}, len(cells))
	for i, v := range cells {
		values[i] = v
	}
	return f.SetSheetRow(sheet, cell, &values)
}
