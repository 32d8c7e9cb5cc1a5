package reports

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"worktime/overtime"
)

var exportHeader = []string{"Employee ID", "Employee", "Period From", "Period To", "Work Days", "Overtime Hours"}

func exportRow(r overtime.Report) []string {
	return []string{
		strconv.FormatUint(uint64(r.EmployeeID), 10),
		r.Employee,
		r.Window.From.Format("2006-01-02"),
		r.Window.To.Format("2006-01-02"),
		strconv.Itoa(len(r.Days)),
		strconv.Itoa(r.Total),
	}
}

// ExportFilename names an export of the period starting at window.From.
func ExportFilename(window overtime.Window, ext string) string {
	return fmt.Sprintf("overtime_%s_%s.%s", window.From.Format("2006_01"), uuid.NewString()[:8], ext)
}

// WriteOvertimeCSV writes one row per employee report.
func WriteOvertimeCSV(w io.Writer, reports []overtime.Report) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return err
	}
	for _, r := range reports {
		if err := writer.Write(exportRow(r)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

const sheet = "Overtime"

// WriteOvertimeXLSX writes the same table as WriteOvertimeCSV as a workbook.
func WriteOvertimeXLSX(w io.Writer, reports []overtime.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	for i, header := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}
	for row, r := range reports {
		values := []any{
			r.EmployeeID,
			r.Employee,
			r.Window.From.Format("2006-01-02"),
			r.Window.To.Format("2006-01-02"),
			len(r.Days),
			r.Total,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
