package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shrimpsizemoose/narvaro/internal/models"
)

func att(statuses ...models.AttendanceStatus) []models.AttendanceRecord {
	out := make([]models.AttendanceRecord, len(statuses))
	for i, s := range statuses {
		out[i] = models.AttendanceRecord{StudentID: "s1", Status: s}
	}
	return out
}

func TestAttendanceRate(t *testing.T) {
	testCases := []struct {
		name     string
		records  []models.AttendanceRecord
		expected int
	}{
		{
			name:     "empty set rates zero",
			records:  nil,
			expected: 0,
		},
		{
			name:     "late counts as present",
			records:  att(models.StatusPresent, models.StatusPresent, models.StatusAbsent, models.StatusLate),
			expected: 75,
		},
		{
			name:     "all absent",
			records:  att(models.StatusAbsent, models.StatusAbsent),
			expected: 0,
		},
		{
			name:     "excused does not count as present",
			records:  att(models.StatusPresent, models.StatusExcused),
			expected: 50,
		},
		{
			name:     "rounding two thirds",
			records:  att(models.StatusPresent, models.StatusPresent, models.StatusAbsent),
			expected: 67,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rate := AttendanceRate(tc.records)
			assert.Equal(t, tc.expected, rate)
			assert.GreaterOrEqual(t, rate, 0)
			assert.LessOrEqual(t, rate, 100)
		})
	}
}

func TestWeightedAverage(t *testing.T) {
	t.Run("ratio of sums, not mean of percentages", func(t *testing.T) {
		assessments := []models.AssessmentRecord{
			{Score: 8, MaxScore: 10},
			{Score: 18, MaxScore: 20},
		}
		// 26/30, not (80%+90%)/2
		assert.Equal(t, 87, WeightedAverage(assessments))
	})

	t.Run("invariant under proportional split", func(t *testing.T) {
		whole := []models.AssessmentRecord{
			{Score: 18, MaxScore: 20},
		}
		split := []models.AssessmentRecord{
			{Score: 9, MaxScore: 10},
			{Score: 9, MaxScore: 10},
		}
		assert.Equal(t, WeightedAverage(whole), WeightedAverage(split))
	})

	t.Run("excused records are skipped", func(t *testing.T) {
		assessments := []models.AssessmentRecord{
			{Score: 8, MaxScore: 10},
			{Score: 0, MaxScore: 10, IsExcused: true},
		}
		assert.Equal(t, 80, WeightedAverage(assessments))
	})

	t.Run("empty set", func(t *testing.T) {
		assert.Equal(t, 0, WeightedAverage(nil))
	})
}

func TestRawAverage(t *testing.T) {
	assessments := []models.AssessmentRecord{
		{Score: 8, MaxScore: 10},
		{Score: 18, MaxScore: 20},
	}
	// dashboard formula: mean of raw scores, max ignored
	assert.Equal(t, 13, RawAverage(assessments))

	assert.Equal(t, 0, RawAverage(nil))
	assert.Equal(t, 0, RawAverage([]models.AssessmentRecord{
		{Score: 0, MaxScore: 10, IsExcused: true},
	}))
}

func TestAdminVisible(t *testing.T) {
	assessments := []models.AssessmentRecord{
		{ID: "a", Score: 5, MaxScore: 10, ExportedToAdmin: true},
		{ID: "b", Score: 10, MaxScore: 10},
		{ID: "c", Score: 7, MaxScore: 10, ExportedToAdmin: true},
	}

	visible := AdminVisible(assessments)
	assert.Len(t, visible, 2)
	assert.Equal(t, "a", visible[0].ID)
	assert.Equal(t, "c", visible[1].ID)

	// the unexported draft must not leak into admin totals
	assert.Equal(t, 60, WeightedAverage(visible))
}

func TestPerStudent(t *testing.T) {
	students := []models.Student{
		{ID: "s1", Name: "Alice", Year: 2},
		{ID: "s2", Name: "Bob", Year: 2},
		{ID: "s3", Name: "Chloe", Year: 2},
	}
	attendance := []models.AttendanceRecord{
		{StudentID: "s1", Status: models.StatusPresent},
		{StudentID: "s1", Status: models.StatusAbsent},
		{StudentID: "s2", Status: models.StatusLate},
	}
	assessments := []models.AssessmentRecord{
		{StudentID: "s1", Score: 8, MaxScore: 10},
		{StudentID: "s2", Score: 5, MaxScore: 20},
	}

	rows := PerStudent(students, attendance, assessments)
	assert.Len(t, rows, 3)

	assert.Equal(t, "Alice", rows[0].Student.Name)
	assert.Equal(t, 50, rows[0].AttendanceRate)
	assert.Equal(t, 80, rows[0].WeightedAverage)
	assert.Equal(t, 8, rows[0].RawAverage)

	assert.Equal(t, 100, rows[1].AttendanceRate)
	assert.Equal(t, 25, rows[1].WeightedAverage)

	// student with no records at all still gets a zeroed row
	assert.Equal(t, 0, rows[2].AttendanceTotal)
	assert.Equal(t, 0, rows[2].AttendanceRate)
	assert.Equal(t, 0, rows[2].WeightedAverage)
}
