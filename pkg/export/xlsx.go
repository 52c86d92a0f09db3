package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type of the generated workbooks
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const defaultSheet = "Sheet1"

// Sheet is one worksheet: a bold header row followed by data rows
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]interface{}
}

// AddRow appends a row. decimal.Decimal values are written as numbers.
func (s *Sheet) AddRow(values ...interface{}) {
	row := make([]interface{}, len(values))
	for i, v := range values {
		if d, ok := v.(decimal.Decimal); ok {
			row[i] = d.InexactFloat64()
			continue
		}
		row[i] = v
	}
	s.Rows = append(s.Rows, row)
}

// Write renders sheets into one workbook and writes it to w
func Write(w io.Writer, sheets ...*Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("export: no sheets")
	}

	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	for i, sheet := range sheets {
		index, err := f.NewSheet(sheet.Name)
		if err != nil {
			return fmt.Errorf("export: sheet %s: %w", sheet.Name, err)
		}
		if i == 0 {
			f.SetActiveSheet(index)
		}
		if err := writeSheet(f, sheet, header); err != nil {
			return fmt.Errorf("export: sheet %s: %w", sheet.Name, err)
		}
	}

	if sheets[0].Name != defaultSheet {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func writeSheet(f *excelize.File, sheet *Sheet, headerStyle int) error {
	if len(sheet.Headers) > 0 {
		headers := make([]interface{}, len(sheet.Headers))
		for i, h := range sheet.Headers {
			headers[i] = h
		}
		if err := f.SetSheetRow(sheet.Name, "A1", &headers); err != nil {
			return err
		}
		if err := f.SetRowStyle(sheet.Name, 1, 1, headerStyle); err != nil {
			return err
		}
		last, err := excelize.ColumnNumberToName(len(sheet.Headers))
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet.Name, "A", last, 16); err != nil {
			return err
		}
	}

	for i := range sheet.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet.Name, cell, &sheet.Rows[i]); err != nil {
			return err
		}
	}
	return nil
}
