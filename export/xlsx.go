package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/Aashish23092/payment-evidence-ocr/dto"
)

const sheetName = "Payments"

// WriteXLSX writes the investigation workbook: a bold header, one row per
// payment and a closing total line.
func WriteXLSX(w io.Writer, payments []dto.Payment) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx style: %w", err)
	}

	for i, h := range excelHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
	}
	last, _ := excelize.CoordinatesToCellName(len(excelHeaders), 1)
	_ = f.SetCellStyle(sheetName, "A1", last, bold)

	row := 2
	for i, p := range payments {
		for col, v := range ToExcelRow(i+1, p).values() {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}
		row++
	}

	if len(payments) > 0 {
		label, _ := excelize.CoordinatesToCellName(4, row)
		value, _ := excelize.CoordinatesToCellName(5, row)
		_ = f.SetCellValue(sheetName, label, "Total")
		_ = f.SetCellValue(sheetName, value, Total(payments).Display())
		_ = f.SetCellStyle(sheetName, label, value, bold)
	}

	_ = f.SetColWidth(sheetName, "A", "A", 7)
	_ = f.SetColWidth(sheetName, "B", "B", 28)
	_ = f.SetColWidth(sheetName, "C", "D", 26)
	_ = f.SetColWidth(sheetName, "E", "G", 16)
	_ = f.SetColWidth(sheetName, "H", "K", 28)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}
