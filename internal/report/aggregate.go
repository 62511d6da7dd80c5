// Package report computes attendance and score aggregates over filtered
// record sets. Two average formulas are in use: the detailed report and the
// Excel export aggregate as percentage-of-total-possible (ratio of sums),
// the dashboard shows a plain mean of raw scores. The pages disagreed in the
// original system and both formulas are kept on purpose.
package report

import (
	"math"

	"github.com/shrimpsizemoose/narvaro/internal/models"
)

// Summary is the headline block shown above a report table.
type Summary struct {
	Students        int `json:"students"`
	AttendanceTotal int `json:"attendance_total"`
	AttendanceRate  int `json:"attendance_rate"`
	Assessments     int `json:"assessments"`
	AverageScore    int `json:"average_score"`
}

// StudentReport is one student's row in the per-student breakdown.
type StudentReport struct {
	Student         models.Student `json:"student"`
	AttendanceTotal int            `json:"attendance_total"`
	AttendanceRate  int            `json:"attendance_rate"`
	Assessments     int            `json:"assessments"`
	WeightedAverage int            `json:"weighted_average"`
	RawAverage      int            `json:"raw_average"`
}

func roundPct(numerator, denominator float64) int {
	if denominator == 0 {
		return 0
	}
	return int(math.Round(100 * numerator / denominator))
}

// AttendanceRate is the percentage of records counting as present (present
// or late). An empty set rates 0.
func AttendanceRate(records []models.AttendanceRecord) int {
	if len(records) == 0 {
		return 0
	}
	present := 0
	for _, r := range records {
		if r.Status.CountsPresent() {
			present++
		}
	}
	return roundPct(float64(present), float64(len(records)))
}

// WeightedAverage aggregates as round(100 * Σscore / Σmax): the percentage
// of total possible points. Splitting one assessment into two with
// proportional score/max leaves the result unchanged, which a mean of
// percentages would not. Excused records and records without a positive max
// are skipped.
func WeightedAverage(assessments []models.AssessmentRecord) int {
	var sum, max float64
	for _, a := range assessments {
		if a.IsExcused || a.MaxScore <= 0 {
			continue
		}
		sum += a.Score
		max += a.MaxScore
	}
	return roundPct(sum, max)
}

// RawAverage is the dashboard formula: round(Σscore / count), a mean of raw
// scores ignoring differing max scores. Excused records are skipped.
func RawAverage(assessments []models.AssessmentRecord) int {
	var sum float64
	count := 0
	for _, a := range assessments {
		if a.IsExcused {
			continue
		}
		sum += a.Score
		count++
	}
	if count == 0 {
		return 0
	}
	return int(math.Round(sum / float64(count)))
}

// AdminVisible keeps only records a trainer has exported to admin. Admin
// reports must run on this subset; trainer views include unexported drafts.
func AdminVisible(assessments []models.AssessmentRecord) []models.AssessmentRecord {
	out := make([]models.AssessmentRecord, 0, len(assessments))
	for _, a := range assessments {
		if a.ExportedToAdmin {
			out = append(out, a)
		}
	}
	return out
}

// Overview computes the summary block for a filtered record set. The
// average uses the dashboard formula; detailed pages recompute per student.
func Overview(students []models.Student, attendance []models.AttendanceRecord, assessments []models.AssessmentRecord) Summary {
	return Summary{
		Students:        len(students),
		AttendanceTotal: len(attendance),
		AttendanceRate:  AttendanceRate(attendance),
		Assessments:     len(assessments),
		AverageScore:    RawAverage(assessments),
	}
}

// PerStudent applies both formulas to each student's own subset, keeping
// the input student order.
func PerStudent(students []models.Student, attendance []models.AttendanceRecord, assessments []models.AssessmentRecord) []StudentReport {
	attByStudent := make(map[string][]models.AttendanceRecord)
	for _, r := range attendance {
		attByStudent[r.StudentID] = append(attByStudent[r.StudentID], r)
	}
	assByStudent := make(map[string][]models.AssessmentRecord)
	for _, a := range assessments {
		assByStudent[a.StudentID] = append(assByStudent[a.StudentID], a)
	}

	out := make([]StudentReport, 0, len(students))
	for _, s := range students {
		att := attByStudent[s.ID]
		ass := assByStudent[s.ID]
		out = append(out, StudentReport{
			Student:         s,
			AttendanceTotal: len(att),
			AttendanceRate:  AttendanceRate(att),
			Assessments:     len(ass),
			WeightedAverage: WeightedAverage(ass),
			RawAverage:      RawAverage(ass),
		})
	}
	return out
}
