package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Profiles"

// writeExcel writes a single worksheet: header row of the sorted key
// union, then one row per record in header order.
func (e *Exporter) writeExcel(records []map[string]any) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename worksheet: %w", err)
	}

	header := collectKeys(records)
	for i, column := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("header cell name: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, column); err != nil {
			return fmt.Errorf("write header cell: %w", err)
		}
	}

	for rowIdx, record := range records {
		flat := Flatten(record)
		for colIdx, column := range header {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return fmt.Errorf("data cell name: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, cellValue(flat[column])); err != nil {
				return fmt.Errorf("write data cell: %w", err)
			}
		}
	}

	if err := f.SaveAs(e.path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// cellValue keeps native scalars native in the workbook; everything else
// is rendered the same way as the text formats.
func cellValue(value any) any {
	switch value.(type) {
	case string, bool, float64, int, int64:
		return value
	default:
		return cellString(value)
	}
}
