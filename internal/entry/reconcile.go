package entry

import (
	"fmt"
	"strconv"

	"github.com/shrimpsizemoose/narvaro/internal/models"
)

// ValidationError blocks the save that raised it and names the student so
// the trainer can fix the offending row.
type ValidationError struct {
	Student string
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Student, e.Reason)
}

// Store is the slice of the persistence gateway the reconciler needs.
type Store interface {
	UpsertAttendance(rec *models.AttendanceRecord) error
	CreateAssessment(rec *models.AssessmentRecord) error
	FindExportedAssessment(groupID string, week int, unit string) (*models.AssessmentRecord, error)
}

type Reconciler struct {
	store Store
}

func NewReconciler(store Store) *Reconciler {
	return &Reconciler{store: store}
}

// SaveResult counts what a save wrote before completing or aborting.
type SaveResult struct {
	AttendanceSaved  int `json:"attendance_saved"`
	AssessmentsSaved int `json:"assessments_saved"`
}

// HasExportedDuplicate reports whether an already-exported assessment
// occupies the session's (group, week, unit) slot. Duplicate weeks are
// allowed but the operator must confirm past the warning.
func (r *Reconciler) HasExportedDuplicate(s *Session) (bool, error) {
	existing, err := r.store.FindExportedAssessment(s.GroupID, s.Week, s.Unit)
	if err != nil {
		return false, err
	}
	return existing != nil, nil
}

// Save walks the filtered student list in order, writing attendance and
// assessment records per row. The first failing row aborts the remaining
// iterations; rows already written stay written. The returned SaveResult is
// valid even on error.
func (r *Reconciler) Save(s *Session, students []models.Student) (*SaveResult, error) {
	result := &SaveResult{}

	if err := s.Validate(); err != nil {
		return result, err
	}

	for _, student := range students {
		row := s.Row(student.ID)

		// Row-level validation runs before any write so a failing row
		// contributes nothing at all, not even its attendance mark.
		var score float64
		hasScore := row.Status != models.StatusExcused && row.ScoreText != ""
		if hasScore {
			if row.Status == StatusUnset {
				return result, &ValidationError{Student: student.Name, Reason: "score entered without attendance"}
			}
			if row.Status == models.StatusAbsent {
				return result, &ValidationError{Student: student.Name, Reason: "absent students cannot receive a score"}
			}
			parsed, err := strconv.ParseFloat(row.ScoreText, 64)
			if err != nil {
				return result, &ValidationError{Student: student.Name, Reason: fmt.Sprintf("invalid score %q", row.ScoreText)}
			}
			if parsed < 0 || parsed > s.MaxScore {
				return result, &ValidationError{
					Student: student.Name,
					Reason:  fmt.Sprintf("score %v out of range 0..%v", parsed, s.MaxScore),
				}
			}
			score = parsed
		}

		if row.Status != StatusUnset {
			rec := &models.AttendanceRecord{
				StudentID: student.ID,
				Date:      s.Date,
				Status:    row.Status,
				GroupID:   student.GroupID,
				Year:      student.Year,
				TrainerID: s.TrainerID,
			}
			if err := rec.Validate(); err != nil {
				return result, &ValidationError{Student: student.Name, Reason: err.Error()}
			}
			if err := r.store.UpsertAttendance(rec); err != nil {
				return result, fmt.Errorf("failed to save attendance for %s: %w", student.Name, err)
			}
			result.AttendanceSaved++
		}

		switch {
		case row.Status == models.StatusExcused:
			// Excused always yields a zero-score marker record, whatever
			// was typed in the score box.
			rec := r.assessmentFor(s, &student, 0)
			rec.IsExcused = true
			if err := r.store.CreateAssessment(rec); err != nil {
				return result, fmt.Errorf("failed to save assessment for %s: %w", student.Name, err)
			}
			result.AssessmentsSaved++

		case hasScore:
			if err := r.store.CreateAssessment(r.assessmentFor(s, &student, score)); err != nil {
				return result, fmt.Errorf("failed to save assessment for %s: %w", student.Name, err)
			}
			result.AssessmentsSaved++
		}
	}

	return result, nil
}

func (r *Reconciler) assessmentFor(s *Session, student *models.Student, score float64) *models.AssessmentRecord {
	return &models.AssessmentRecord{
		StudentID: student.ID,
		Name:      s.AssessmentName,
		Type:      s.AssessmentType,
		Score:     score,
		MaxScore:  s.MaxScore,
		Date:      s.Date,
		Year:      student.Year,
		GroupID:   student.GroupID,
		Unit:      s.Unit,
		Week:      s.Week,
		TrainerID: s.TrainerID,
	}
}
