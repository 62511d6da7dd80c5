package entry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/narvaro/internal/models"
)

// fakeStore keeps records in memory with the same upsert-by-lookup rule as
// the SQL stores.
type fakeStore struct {
	attendance  []*models.AttendanceRecord
	assessments []*models.AssessmentRecord
	exported    *models.AssessmentRecord
}

func (f *fakeStore) UpsertAttendance(rec *models.AttendanceRecord) error {
	for _, existing := range f.attendance {
		if existing.StudentID == rec.StudentID && existing.Date == rec.Date {
			*existing = *rec
			return nil
		}
	}
	cp := *rec
	f.attendance = append(f.attendance, &cp)
	return nil
}

func (f *fakeStore) CreateAssessment(rec *models.AssessmentRecord) error {
	cp := *rec
	f.assessments = append(f.assessments, &cp)
	return nil
}

func (f *fakeStore) FindExportedAssessment(groupID string, week int, unit string) (*models.AssessmentRecord, error) {
	return f.exported, nil
}

func roster() []models.Student {
	return []models.Student{
		{ID: "s1", Name: "Alice", Year: 2, GroupID: "g1"},
		{ID: "s2", Name: "Bob", Year: 2, GroupID: "g1"},
		{ID: "s3", Name: "Chloe", Year: 2, GroupID: "g1"},
	}
}

func TestSave_AttendanceAndScores(t *testing.T) {
	store := &fakeStore{}
	r := NewReconciler(store)

	s := validSession()
	s.SetStatus("s1", models.StatusPresent)
	s.SetScore("s1", "8")
	s.SetStatus("s2", models.StatusAbsent)
	s.SetStatus("s3", models.StatusLate)
	s.SetScore("s3", "6.5")

	result, err := r.Save(s, roster())
	require.NoError(t, err)
	assert.Equal(t, 3, result.AttendanceSaved)
	assert.Equal(t, 2, result.AssessmentsSaved)

	require.Len(t, store.assessments, 2)
	assert.Equal(t, "s1", store.assessments[0].StudentID)
	assert.Equal(t, 8.0, store.assessments[0].Score)
	assert.Equal(t, "s3", store.assessments[1].StudentID)
	assert.Equal(t, 6.5, store.assessments[1].Score)
	assert.Equal(t, "Week 3 quiz", store.assessments[0].Name)
	assert.Equal(t, 3, store.assessments[0].Week)
}

func TestSave_UntouchedRowWritesNothing(t *testing.T) {
	store := &fakeStore{}
	r := NewReconciler(store)

	result, err := r.Save(validSession(), roster())
	require.NoError(t, err)
	assert.Zero(t, result.AttendanceSaved)
	assert.Zero(t, result.AssessmentsSaved)
	assert.Empty(t, store.attendance)
	assert.Empty(t, store.assessments)
}

func TestSave_ExcusedAlwaysWritesZeroScoreMarker(t *testing.T) {
	store := &fakeStore{}
	r := NewReconciler(store)

	s := validSession()
	// score typed before the excused pick; SetStatus wipes it, and even a
	// scoreText smuggled in directly must not override the excused rule
	s.SetScore("s1", "9")
	s.SetStatus("s1", models.StatusExcused)
	s.Rows["s1"] = Row{Status: models.StatusExcused, ScoreText: "9"}

	result, err := r.Save(s, roster()[:1])
	require.NoError(t, err)
	assert.Equal(t, 1, result.AssessmentsSaved)

	require.Len(t, store.assessments, 1)
	assert.True(t, store.assessments[0].IsExcused)
	assert.Zero(t, store.assessments[0].Score)
}

func TestSave_AbsentWithScoreFailsAndWritesNothingForThatStudent(t *testing.T) {
	store := &fakeStore{}
	r := NewReconciler(store)

	s := validSession()
	s.Rows = map[string]Row{
		"s1": {Status: models.StatusAbsent, ScoreText: "5"},
	}

	_, err := r.Save(s, roster()[:1])
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Alice", vErr.Student)

	// the failing row contributes nothing, not even its attendance mark
	assert.Empty(t, store.attendance)
	assert.Empty(t, store.assessments)
}

func TestSave_ScoreWithoutAttendanceFails(t *testing.T) {
	store := &fakeStore{}
	r := NewReconciler(store)

	s := validSession()
	s.Rows = map[string]Row{
		"s2": {ScoreText: "5"},
	}

	_, err := r.Save(s, roster())
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Bob", vErr.Student)
	assert.Contains(t, vErr.Reason, "without attendance")
}

func TestSave_ScoreOutOfRange(t *testing.T) {
	store := &fakeStore{}
	r := NewReconciler(store)

	for _, bad := range []string{"11", "-1", "ten"} {
		s := validSession()
		s.SetStatus("s1", models.StatusPresent)
		s.SetScore("s1", bad)

		_, err := r.Save(s, roster()[:1])
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr, "score %q must fail", bad)
	}
}

func TestSave_AbortsOnFirstFailureKeepsEarlierWrites(t *testing.T) {
	store := &fakeStore{}
	r := NewReconciler(store)

	s := validSession()
	s.SetStatus("s1", models.StatusPresent)
	s.SetScore("s1", "8")
	s.Rows["s2"] = Row{Status: models.StatusAbsent, ScoreText: "3"}
	s.SetStatus("s3", models.StatusPresent)
	s.SetScore("s3", "9")

	result, err := r.Save(s, roster())
	require.Error(t, err)

	// Alice was written before Bob failed; Chloe never ran. No rollback.
	assert.Equal(t, 1, result.AttendanceSaved)
	assert.Equal(t, 1, result.AssessmentsSaved)
	require.Len(t, store.assessments, 1)
	assert.Equal(t, "s1", store.assessments[0].StudentID)
	require.Len(t, store.attendance, 1)
	assert.Equal(t, "s1", store.attendance[0].StudentID)
}

func TestSave_UpsertKeepsOneRecordPerStudentAndDate(t *testing.T) {
	store := &fakeStore{}
	r := NewReconciler(store)

	s := validSession()
	s.SetStatus("s1", models.StatusAbsent)
	_, err := r.Save(s, roster()[:1])
	require.NoError(t, err)

	// second save for the same day corrects the status in place
	s2 := validSession()
	s2.SetStatus("s1", models.StatusPresent)
	_, err = r.Save(s2, roster()[:1])
	require.NoError(t, err)

	require.Len(t, store.attendance, 1)
	assert.Equal(t, models.StatusPresent, store.attendance[0].Status)
}

func TestHasExportedDuplicate(t *testing.T) {
	r := NewReconciler(&fakeStore{})
	dup, err := r.HasExportedDuplicate(validSession())
	require.NoError(t, err)
	assert.False(t, dup)

	r = NewReconciler(&fakeStore{exported: &models.AssessmentRecord{ID: "old"}})
	dup, err = r.HasExportedDuplicate(validSession())
	require.NoError(t, err)
	assert.True(t, dup)
}

func TestSave_InvalidPreconditionsWriteNothing(t *testing.T) {
	store := &fakeStore{}
	r := NewReconciler(store)

	s := validSession()
	s.AssessmentName = ""
	s.SetStatus("s1", models.StatusPresent)

	_, err := r.Save(s, roster())
	require.Error(t, err)
	assert.Empty(t, store.attendance)
}
