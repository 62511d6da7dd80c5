// Package entry reconciles a combined attendance/assessment entry form into
// persisted records.
package entry

import (
	"fmt"
	"slices"

	"github.com/shrimpsizemoose/narvaro/internal/models"
)

// StatusUnset marks a row the trainer has not touched. No attendance is
// written for such rows.
const StatusUnset models.AttendanceStatus = ""

// Row is the entry state for one student: the picked attendance status and
// the raw score text. The score field stays a string until save so an empty
// box and a zero are distinguishable.
type Row struct {
	Status    models.AttendanceStatus `json:"status"`
	ScoreText string                  `json:"score"`
}

// Session is one entry form: a date plus the assessment context shared by
// every row. Rows are keyed by student id.
type Session struct {
	Date           string                `json:"date"`
	AssessmentName string                `json:"assessment_name"`
	AssessmentType models.AssessmentType `json:"assessment_type"`
	MaxScore       float64               `json:"max_score"`
	Week           int                   `json:"week"`
	Unit           string                `json:"unit"`
	Year           int                   `json:"year"`
	GroupID        string                `json:"group_id"`
	TrainerID      string                `json:"trainer_id"`
	Rows           map[string]Row        `json:"rows"`
}

// SetStatus records an attendance pick for a student. Moving to absent or
// excused clears any score text already typed; the score box is disabled in
// those states and stale text must not survive into save.
func (s *Session) SetStatus(studentID string, status models.AttendanceStatus) {
	if s.Rows == nil {
		s.Rows = make(map[string]Row)
	}
	row := s.Rows[studentID]
	row.Status = status
	if status == models.StatusAbsent || status == models.StatusExcused {
		row.ScoreText = ""
	}
	s.Rows[studentID] = row
}

// SetScore records score text unconditionally. Guarding against entry while
// absent/excused is the form's job; save validates again regardless.
func (s *Session) SetScore(studentID, text string) {
	if s.Rows == nil {
		s.Rows = make(map[string]Row)
	}
	row := s.Rows[studentID]
	row.ScoreText = text
	s.Rows[studentID] = row
}

// Row returns the current state for a student, zero-valued if untouched.
func (s *Session) Row(studentID string) Row {
	return s.Rows[studentID]
}

// unitYears are the years whose curriculum is split into units; entering a
// week for them requires a unit pick.
var unitYears = []int{2, 3}

// Validate checks the form-level preconditions before any row is written.
func (s *Session) Validate() error {
	if s.Date == "" {
		return fmt.Errorf("date is required")
	}
	if s.AssessmentName == "" {
		return fmt.Errorf("assessment name is required")
	}
	if s.MaxScore <= 0 {
		return fmt.Errorf("max score must be positive")
	}
	if s.Week < 1 || s.Week > 10 {
		return fmt.Errorf("week must be between 1 and 10")
	}
	if s.Unit == "" && slices.Contains(unitYears, s.Year) {
		return fmt.Errorf("unit is required for year %d", s.Year)
	}
	return nil
}
