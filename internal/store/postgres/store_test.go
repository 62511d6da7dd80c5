package postgres

import (
	"context"
	"flag"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/shrimpsizemoose/narvaro/internal/models"
)

// setupTestDB starts a throwaway Postgres container and applies the schema
func setupTestDB(t *testing.T) (*PostgresStore, func()) {
	ctx := context.Background()

	postgres, err := postgres.Run(
		ctx,
		"postgres:16-alpine",
		testcontainers.WithEnv(map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
		}),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	require.NoError(t, err)

	dsn, err := postgres.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := NewPostgresStore(dsn, "../../../migrations")
	require.NoError(t, err, "Failed to create store")

	cleanup := func() {
		s.Close()
		postgres.Terminate(ctx)
	}

	return s, cleanup
}

type testData struct {
	store   *PostgresStore
	group   models.Group
	student models.Student
}

func setupTestData(t *testing.T) (*testData, func()) {
	s, cleanup := setupTestDB(t)

	group := models.Group{Name: "Alfa", Year: 2, CurrentUnit: "MSK"}
	require.NoError(t, s.CreateGroup(&group), "Failed to insert test group")

	student := models.Student{
		StudentID: "ST-001",
		Name:      "Alice Andersson",
		Year:      2,
		GroupID:   group.ID,
	}
	require.NoError(t, s.CreateStudent(&student), "Failed to insert test student")

	return &testData{
		store:   s,
		group:   group,
		student: student,
	}, cleanup
}

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		log.Println("Skipping Postgres integration tests. Use -short=false to run them.")
		os.Exit(0)
	}
	log.Println("Starting Postgres store tests...")
	code := m.Run()
	log.Println("Finished Postgres store tests")
	os.Exit(code)
}

func TestStudentLifecycle(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	t.Run("get", func(t *testing.T) {
		got, err := td.store.GetStudent(td.student.ID)
		require.NoError(t, err, "Failed to get student")
		require.NotNil(t, got)
		assert.Equal(t, td.student.StudentID, got.StudentID)
		assert.Equal(t, td.student.Name, got.Name)
		assert.Equal(t, td.student.GroupID, got.GroupID)
	})

	t.Run("update", func(t *testing.T) {
		td.student.Email = "alice@example.com"
		require.NoError(t, td.store.UpdateStudent(&td.student))

		got, err := td.store.GetStudent(td.student.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", got.Email)
	})

	t.Run("bulk add skips duplicates", func(t *testing.T) {
		result, err := td.store.BulkAddStudents([]models.Student{
			{StudentID: "ST-001", Name: "Alice again", Year: 2, GroupID: td.group.ID},
			{StudentID: "ST-002", Name: "Bob Berg", Year: 2, GroupID: td.group.ID},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Added)
		assert.Equal(t, 1, result.Skipped)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, td.store.DeleteStudent(td.student.ID))

		got, err := td.store.GetStudent(td.student.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestAttendanceUpsertByLookup(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	rec := models.AttendanceRecord{
		StudentID: td.student.ID,
		Date:      "2025-09-01",
		Status:    models.StatusAbsent,
		GroupID:   td.group.ID,
		Year:      2,
		TrainerID: "trainer1",
	}
	require.NoError(t, td.store.UpsertAttendance(&rec))

	correction := rec
	correction.Status = models.StatusPresent
	require.NoError(t, td.store.UpsertAttendance(&correction))

	all, err := td.store.ListAttendance()
	require.NoError(t, err)
	require.Len(t, all, 1, "double save for one day must update, not insert")
	assert.Equal(t, models.StatusPresent, all[0].Status)
	assert.Equal(t, rec.ID, all[0].ID)
}

func TestWeekExportFlow(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	rec := models.AssessmentRecord{
		StudentID: td.student.ID,
		Name:      "Week 3 quiz",
		Type:      models.TypeQuiz,
		Score:     8,
		MaxScore:  10,
		Date:      "2025-09-01",
		Year:      2,
		GroupID:   td.group.ID,
		Unit:      "MSK",
		Week:      3,
		TrainerID: "trainer1",
	}
	require.NoError(t, td.store.CreateAssessment(&rec))

	found, err := td.store.FindExportedAssessment(td.group.ID, 3, "MSK")
	require.NoError(t, err)
	assert.Nil(t, found, "fresh record must stay draft")

	n, err := td.store.MarkWeekExported(td.group.ID, 3, "MSK")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	found, err = td.store.FindExportedAssessment(td.group.ID, 3, "MSK")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.ExportedToAdmin)
}

func TestUserListsRoundtrip(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	user := models.User{
		Username:       "karin",
		Name:           "Karin",
		Role:           models.RoleTrainer,
		AssignedGroups: models.StringList{td.group.ID},
		AssignedYears:  models.IntList{2, 3},
	}
	require.NoError(t, td.store.CreateUser(&user))

	got, err := td.store.GetUser("karin")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.StringList{td.group.ID}, got.AssignedGroups)
	assert.Equal(t, models.IntList{2, 3}, got.AssignedYears)
}

func TestClearYearDataKeepsRoster(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	require.NoError(t, td.store.UpsertAttendance(&models.AttendanceRecord{
		StudentID: td.student.ID, Date: "2025-09-01", Status: models.StatusPresent,
	}))
	require.NoError(t, td.store.CreateAssessment(&models.AssessmentRecord{
		StudentID: td.student.ID, Name: "quiz", Type: models.TypeQuiz,
		Score: 5, MaxScore: 10, Date: "2025-09-01", GroupID: td.group.ID, Week: 1,
	}))

	require.NoError(t, td.store.ClearYearData())

	att, err := td.store.ListAttendance()
	require.NoError(t, err)
	assert.Empty(t, att)

	students, err := td.store.ListStudents()
	require.NoError(t, err)
	assert.Len(t, students, 1)
}
