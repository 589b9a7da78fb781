package catalog

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/HerbHall/lankaportal/pkg/content"
)

// ExportContentType is the MIME type of WriteWorkbook's output.
const ExportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var exportHeader = []any{"ID", "Name (EN)", "Name (SI)", "Category", "Location"}

// WriteWorkbook writes records as a single-sheet xlsx workbook named after
// the collection, one row per record in the given order.
func WriteWorkbook(w io.Writer, name content.CollectionName, records []content.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := string(name)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		label := r.RecordName()
		row := []any{
			r.RecordID(),
			label.Get(content.LangEN),
			label.Get(content.LangSI),
			string(r.RecordCategory()),
			r.RecordLocation(),
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(sheet, "A", "E", 24); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
