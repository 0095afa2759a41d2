package export

import (
	"io"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Export"

// WriteXLSX writes d as a single-sheet workbook with a bold header row.
func WriteXLSX(w io.Writer, d Dataset) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return err
	}

	headers := d.Headers()
	if err := setRow(f, 1, headers); err != nil {
		return err
	}
	for i, row := range d.Rows {
		if err := setRow(f, i+2, row); err != nil {
			return err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(sheetName, 1, 1, bold); err != nil {
		return err
	}
	last, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheetName, "A", last, 20); err != nil {
		return err
	}

	return f.Write(w)
}

func setRow(f *excelize.File, n int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	return f.SetSheetRow(sheetName, cell, &row)
}
