// Package excel reads student rosters from and writes report workbooks to
// xlsx files.
package excel

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/shrimpsizemoose/narvaro/internal/models"
)

// RowError is a malformed spreadsheet row. Import collects these and keeps
// going; a bad row never fails the whole file.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

func (e RowError) String() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// ParseStudents reads a roster workbook from the first sheet. Expected
// columns: student id, name, year, group name, then optional email and
// phone. The first row is a header and is skipped. Group names are resolved
// against the given groups; an unknown group is a row error.
func ParseStudents(r io.Reader, groups []models.Group) ([]models.Student, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	groupByName := make(map[string]models.Group, len(groups))
	for _, g := range groups {
		groupByName[strings.ToLower(g.Name)] = g
	}

	var students []models.Student
	var rowErrs []RowError

	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		rowNum := i + 1

		if len(row) < 4 {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Reason: "expected at least 4 columns (student id, name, year, group)"})
			continue
		}

		studentID := strings.TrimSpace(row[0])
		name := strings.TrimSpace(row[1])
		if studentID == "" || name == "" {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Reason: "student id and name are required"})
			continue
		}

		year, err := strconv.Atoi(strings.TrimSpace(row[2]))
		if err != nil || year < 1 || year > 6 {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Reason: fmt.Sprintf("bad year %q", row[2])})
			continue
		}

		groupName := strings.TrimSpace(row[3])
		group, ok := groupByName[strings.ToLower(groupName)]
		if !ok {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Reason: fmt.Sprintf("unknown group %q", groupName)})
			continue
		}

		student := models.Student{
			StudentID: studentID,
			Name:      name,
			Year:      year,
			GroupID:   group.ID,
		}
		if len(row) > 4 {
			student.Email = strings.TrimSpace(row[4])
		}
		if len(row) > 5 {
			student.Phone = strings.TrimSpace(row[5])
		}

		students = append(students, student)
	}

	return students, rowErrs, nil
}
