package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/shrimpsizemoose/narvaro/internal/report"
)

const reportSheet = "Report"

// ReportWorkbook renders a summary block plus the per-student breakdown into
// a fresh workbook. Caller owns closing the file.
func ReportWorkbook(title string, summary report.Summary, rows []report.StudentReport) (*excelize.File, error) {
	f := excelize.NewFile()

	idx, err := f.NewSheet(reportSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	f.SetCellValue(reportSheet, "A1", title)
	f.SetCellValue(reportSheet, "A2", "Students")
	f.SetCellValue(reportSheet, "B2", summary.Students)
	f.SetCellValue(reportSheet, "A3", "Attendance rate")
	f.SetCellValue(reportSheet, "B3", fmt.Sprintf("%d%%", summary.AttendanceRate))
	f.SetCellValue(reportSheet, "A4", "Average score")
	f.SetCellValue(reportSheet, "B4", summary.AverageScore)

	headers := []string{"Student ID", "Name", "Year", "Attendance", "Rate %", "Assessments", "Avg % of max", "Raw avg"}
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 6)
		if err != nil {
			return nil, fmt.Errorf("bad header coordinates: %w", err)
		}
		f.SetCellValue(reportSheet, cell, h)
	}

	for i, row := range rows {
		values := []interface{}{
			row.Student.StudentID,
			row.Student.Name,
			row.Student.Year,
			row.AttendanceTotal,
			row.AttendanceRate,
			row.Assessments,
			row.WeightedAverage,
			row.RawAverage,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+7)
			if err != nil {
				return nil, fmt.Errorf("bad cell coordinates: %w", err)
			}
			f.SetCellValue(reportSheet, cell, v)
		}
	}

	f.SetColWidth(reportSheet, "A", "B", 18)

	return f, nil
}
