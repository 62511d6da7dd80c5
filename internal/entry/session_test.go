package entry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shrimpsizemoose/narvaro/internal/models"
)

func validSession() *Session {
	return &Session{
		Date:           "2025-09-01",
		AssessmentName: "Week 3 quiz",
		AssessmentType: models.TypeQuiz,
		MaxScore:       10,
		Week:           3,
		Unit:           "MSK",
		Year:           2,
		GroupID:        "g1",
		TrainerID:      "trainer1",
	}
}

func TestSession_SetStatusClearsScore(t *testing.T) {
	testCases := []struct {
		name      string
		status    models.AttendanceStatus
		wantScore string
	}{
		{"absent clears typed score", models.StatusAbsent, ""},
		{"excused clears typed score", models.StatusExcused, ""},
		{"present keeps typed score", models.StatusPresent, "7"},
		{"late keeps typed score", models.StatusLate, "7"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := validSession()
			s.SetScore("s1", "7")
			s.SetStatus("s1", tc.status)

			row := s.Row("s1")
			assert.Equal(t, tc.status, row.Status)
			assert.Equal(t, tc.wantScore, row.ScoreText)
		})
	}
}

func TestSession_SetScoreIsUnconditional(t *testing.T) {
	// the form disables the box for absent rows; the state function itself
	// does not block the write
	s := validSession()
	s.SetStatus("s1", models.StatusAbsent)
	s.SetScore("s1", "5")

	assert.Equal(t, "5", s.Row("s1").ScoreText)
}

func TestSession_RowUntouched(t *testing.T) {
	s := validSession()
	row := s.Row("nobody")
	assert.Equal(t, StatusUnset, row.Status)
	assert.Empty(t, row.ScoreText)
}

func TestSession_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Session)
		wantErr string
	}{
		{"valid", func(s *Session) {}, ""},
		{"missing date", func(s *Session) { s.Date = "" }, "date is required"},
		{"missing name", func(s *Session) { s.AssessmentName = "" }, "assessment name is required"},
		{"zero max score", func(s *Session) { s.MaxScore = 0 }, "max score must be positive"},
		{"week too low", func(s *Session) { s.Week = 0 }, "week must be between 1 and 10"},
		{"week too high", func(s *Session) { s.Week = 11 }, "week must be between 1 and 10"},
		{"year 2 needs unit", func(s *Session) { s.Unit = "" }, "unit is required for year 2"},
		{"year 3 needs unit", func(s *Session) { s.Unit = ""; s.Year = 3 }, "unit is required for year 3"},
		{"year 1 does not need unit", func(s *Session) { s.Unit = ""; s.Year = 1 }, ""},
		{"year 4 does not need unit", func(s *Session) { s.Unit = ""; s.Year = 4 }, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := validSession()
			tc.mutate(s)

			err := s.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tc.wantErr)
			}
		})
	}
}
