package store

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/shrimpsizemoose/narvaro/internal/models"
)

// RecordStore is the persistence gateway for all collections. Writes are
// whole-record replacements; partial updates are merged by the caller before
// the write.
type RecordStore interface {
	Close() error
	ApplyMigrations(dir string) error

	CreateStudent(s *models.Student) error
	UpdateStudent(s *models.Student) error
	DeleteStudent(id string) error
	GetStudent(id string) (*models.Student, error)
	ListStudents() ([]models.Student, error)
	BulkAddStudents(students []models.Student) (*BulkResult, error)

	CreateGroup(g *models.Group) error
	UpdateGroup(g *models.Group) error
	DeleteGroup(id string) error
	GetGroup(id string) (*models.Group, error)
	ListGroups() ([]models.Group, error)

	GetAttendance(studentID, date string) (*models.AttendanceRecord, error)
	UpsertAttendance(rec *models.AttendanceRecord) error
	ListAttendance() ([]models.AttendanceRecord, error)
	ListAttendanceByDate(date string) ([]models.AttendanceRecord, error)

	CreateAssessment(rec *models.AssessmentRecord) error
	ListAssessments() ([]models.AssessmentRecord, error)
	FindExportedAssessment(groupID string, week int, unit string) (*models.AssessmentRecord, error)
	MarkWeekExported(groupID string, week int, unit string) (int64, error)

	CreateUser(u *models.User) error
	GetUser(username string) (*models.User, error)
	ListUsers() ([]models.User, error)

	ClearYearData() error
}

// BaseStore provides common functionality for different DB implementations
type BaseStore struct {
	DB        *sqlx.DB
	Converter func(string) string
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// ApplyMigrations applies SQL migrations from a directory, translating dialect if needed
func (s *BaseStore) ApplyMigrations(dir string, translateSQL func(string) string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		content, err := os.ReadFile(fmt.Sprintf("%s/%s", dir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file.Name(), err)
		}

		sql := string(content)
		if translateSQL != nil {
			sql = translateSQL(sql)
		}

		if _, err := s.DB.Exec(sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file.Name(), err)
		}
	}

	return nil
}

func (s *BaseStore) CreateStudent(student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	_, err := s.DB.NamedExec(`
		INSERT INTO students (id, student_id, name, year, group_id, unit, email, phone)
		VALUES (:id, :student_id, :name, :year, :group_id, :unit, :email, :phone)
	`, student)
	if err != nil {
		return fmt.Errorf("failed to create student: %w", err)
	}
	return nil
}

func (s *BaseStore) UpdateStudent(student *models.Student) error {
	_, err := s.DB.NamedExec(`
		UPDATE students SET
			student_id = :student_id,
			name = :name,
			year = :year,
			group_id = :group_id,
			unit = :unit,
			email = :email,
			phone = :phone
		WHERE id = :id
	`, student)
	if err != nil {
		return fmt.Errorf("failed to update student: %w", err)
	}
	return nil
}

func (s *BaseStore) DeleteStudent(id string) error {
	query := s.Converter(`DELETE FROM students WHERE id = ?`)
	if _, err := s.DB.Exec(query, id); err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
	}
	return nil
}

func (s *BaseStore) GetStudent(id string) (*models.Student, error) {
	var student models.Student
	query := s.Converter(`
		SELECT id, student_id, name, year, group_id, unit, email, phone
		FROM students
		WHERE id = ?
	`)
	err := s.DB.Get(&student, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return &student, nil
}

func (s *BaseStore) ListStudents() ([]models.Student, error) {
	var students []models.Student
	err := s.DB.Select(&students, `
		SELECT id, student_id, name, year, group_id, unit, email, phone
		FROM students
		ORDER BY year, group_id, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

// BulkAddStudents inserts students one by one, skipping rows whose external
// student_id is already present. Invalid rows are collected, not fatal.
func (s *BaseStore) BulkAddStudents(students []models.Student) (*BulkResult, error) {
	result := &BulkResult{}

	existsQuery := s.Converter(`SELECT COUNT(*) FROM students WHERE student_id = ?`)

	for _, student := range students {
		if err := student.Validate(); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", student.StudentID, err))
			continue
		}

		var count int
		if err := s.DB.Get(&count, existsQuery, student.StudentID); err != nil {
			return result, fmt.Errorf("failed to check for duplicate %s: %w", student.StudentID, err)
		}
		if count > 0 {
			result.Skipped++
			continue
		}

		if err := s.CreateStudent(&student); err != nil {
			return result, err
		}
		result.Added++
	}

	return result, nil
}

func (s *BaseStore) CreateGroup(group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	_, err := s.DB.NamedExec(`
		INSERT INTO groups (id, name, year, current_unit)
		VALUES (:id, :name, :year, :current_unit)
	`, group)
	if err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}
	return nil
}

func (s *BaseStore) UpdateGroup(group *models.Group) error {
	_, err := s.DB.NamedExec(`
		UPDATE groups SET
			name = :name,
			year = :year,
			current_unit = :current_unit
		WHERE id = :id
	`, group)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	return nil
}

func (s *BaseStore) DeleteGroup(id string) error {
	query := s.Converter(`DELETE FROM groups WHERE id = ?`)
	if _, err := s.DB.Exec(query, id); err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return nil
}

func (s *BaseStore) GetGroup(id string) (*models.Group, error) {
	var group models.Group
	query := s.Converter(`
		SELECT id, name, year, current_unit
		FROM groups
		WHERE id = ?
	`)
	err := s.DB.Get(&group, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return &group, nil
}

func (s *BaseStore) ListGroups() ([]models.Group, error) {
	var groups []models.Group
	err := s.DB.Select(&groups, `
		SELECT id, name, year, current_unit
		FROM groups
		ORDER BY year, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

func (s *BaseStore) GetAttendance(studentID, date string) (*models.AttendanceRecord, error) {
	var rec models.AttendanceRecord
	query := s.Converter(`
		SELECT id, student_id, date, status, group_id, year, trainer_id, synced
		FROM attendance
		WHERE student_id = ?
		AND date = ?
		LIMIT 1
	`)
	err := s.DB.Get(&rec, query, studentID, date)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}
	return &rec, nil
}

// UpsertAttendance keeps at most one record per (student, date) by lookup:
// if a record for that day exists its status is replaced, otherwise a new
// one is inserted. The table deliberately has no uniqueness constraint, so
// this is not safe against concurrent writers for the same student and day.
func (s *BaseStore) UpsertAttendance(rec *models.AttendanceRecord) error {
	existing, err := s.GetAttendance(rec.StudentID, rec.Date)
	if err != nil {
		return err
	}

	if existing != nil {
		rec.ID = existing.ID
		_, err := s.DB.NamedExec(`
			UPDATE attendance SET
				status = :status,
				group_id = :group_id,
				year = :year,
				trainer_id = :trainer_id,
				synced = :synced
			WHERE id = :id
		`, rec)
		if err != nil {
			return fmt.Errorf("failed to update attendance: %w", err)
		}
		return nil
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err = s.DB.NamedExec(`
		INSERT INTO attendance (id, student_id, date, status, group_id, year, trainer_id, synced)
		VALUES (:id, :student_id, :date, :status, :group_id, :year, :trainer_id, :synced)
	`, rec)
	if err != nil {
		return fmt.Errorf("failed to create attendance: %w", err)
	}
	return nil
}

func (s *BaseStore) ListAttendance() ([]models.AttendanceRecord, error) {
	var recs []models.AttendanceRecord
	err := s.DB.Select(&recs, `
		SELECT id, student_id, date, status, group_id, year, trainer_id, synced
		FROM attendance
		ORDER BY date, student_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	return recs, nil
}

func (s *BaseStore) ListAttendanceByDate(date string) ([]models.AttendanceRecord, error) {
	var recs []models.AttendanceRecord
	query := s.Converter(`
		SELECT id, student_id, date, status, group_id, year, trainer_id, synced
		FROM attendance
		WHERE date = ?
		ORDER BY student_id
	`)
	err := s.DB.Select(&recs, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance for date %s: %w", date, err)
	}
	return recs, nil
}

func (s *BaseStore) CreateAssessment(rec *models.AssessmentRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := s.DB.NamedExec(`
		INSERT INTO assessments (
			id, student_id, name, type, score, max_score, date, year,
			group_id, unit, week, trainer_id, is_excused, exported_to_admin
		) VALUES (
			:id, :student_id, :name, :type, :score, :max_score, :date, :year,
			:group_id, :unit, :week, :trainer_id, :is_excused, :exported_to_admin
		)
	`, rec)
	if err != nil {
		return fmt.Errorf("failed to create assessment: %w", err)
	}
	return nil
}

func (s *BaseStore) ListAssessments() ([]models.AssessmentRecord, error) {
	var recs []models.AssessmentRecord
	err := s.DB.Select(&recs, `
		SELECT id, student_id, name, type, score, max_score, date, year,
		       group_id, unit, week, trainer_id, is_excused, exported_to_admin
		FROM assessments
		ORDER BY date, week, student_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	return recs, nil
}

// FindExportedAssessment returns one already-exported record for the
// (group, week, unit) slot, used to warn before entering a duplicate week.
func (s *BaseStore) FindExportedAssessment(groupID string, week int, unit string) (*models.AssessmentRecord, error) {
	var rec models.AssessmentRecord
	query := s.Converter(`
		SELECT id, student_id, name, type, score, max_score, date, year,
		       group_id, unit, week, trainer_id, is_excused, exported_to_admin
		FROM assessments
		WHERE group_id = ?
		AND week = ?
		AND unit = ?
		AND exported_to_admin = TRUE
		LIMIT 1
	`)
	err := s.DB.Get(&rec, query, groupID, week, unit)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find exported assessment: %w", err)
	}
	return &rec, nil
}

func (s *BaseStore) MarkWeekExported(groupID string, week int, unit string) (int64, error) {
	query := s.Converter(`
		UPDATE assessments
		SET exported_to_admin = TRUE
		WHERE group_id = ?
		AND week = ?
		AND unit = ?
	`)
	res, err := s.DB.Exec(query, groupID, week, unit)
	if err != nil {
		return 0, fmt.Errorf("failed to mark week exported: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count exported rows: %w", err)
	}
	return n, nil
}

func (s *BaseStore) CreateUser(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	_, err := s.DB.NamedExec(`
		INSERT INTO users (id, username, name, role, assigned_groups, assigned_years)
		VALUES (:id, :username, :name, :role, :assigned_groups, :assigned_years)
	`, user)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *BaseStore) GetUser(username string) (*models.User, error) {
	var user models.User
	query := s.Converter(`
		SELECT id, username, name, role, assigned_groups, assigned_years
		FROM users
		WHERE username = ?
	`)
	err := s.DB.Get(&user, query, username)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (s *BaseStore) ListUsers() ([]models.User, error) {
	var users []models.User
	err := s.DB.Select(&users, `
		SELECT id, username, name, role, assigned_groups, assigned_years
		FROM users
		ORDER BY role, username
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// ClearYearData wipes the year-scoped collections for the academic-year
// reset. Students, groups and users survive into the next year.
func (s *BaseStore) ClearYearData() error {
	if _, err := s.DB.Exec(`DELETE FROM attendance`); err != nil {
		return fmt.Errorf("failed to clear attendance: %w", err)
	}
	if _, err := s.DB.Exec(`DELETE FROM assessments`); err != nil {
		return fmt.Errorf("failed to clear assessments: %w", err)
	}
	return nil
}
