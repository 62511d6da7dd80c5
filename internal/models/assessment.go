package models

import (
	"github.com/go-playground/validator/v10"
)

type AssessmentType string

const (
	TypeExam         AssessmentType = "exam"
	TypeQuiz         AssessmentType = "quiz"
	TypeAssignment   AssessmentType = "assignment"
	TypeProject      AssessmentType = "project"
	TypePresentation AssessmentType = "presentation"
)

// AssessmentRecord is one student's score on one assessment. Excused records
// carry score 0 and are skipped by average computations; that convention
// lives in the report package, not here. ExportedToAdmin gates visibility in
// admin-level aggregates: trainers see everything they entered, admins only
// see exported records.
type AssessmentRecord struct {
	ID              string         `db:"id" json:"id"`
	StudentID       string         `db:"student_id" json:"student_id" validate:"required"`
	Name            string         `db:"name" json:"name" validate:"required"`
	Type            AssessmentType `db:"type" json:"type" validate:"required,oneof=exam quiz assignment project presentation"`
	Score           float64        `db:"score" json:"score" validate:"min=0,ltefield=MaxScore"`
	MaxScore        float64        `db:"max_score" json:"max_score" validate:"required,gt=0"`
	Date            string         `db:"date" json:"date" validate:"required,datetime=2006-01-02"`
	Year            int            `db:"year" json:"year"`
	GroupID         string         `db:"group_id" json:"group_id"`
	Unit            string         `db:"unit" json:"unit"`
	Week            int            `db:"week" json:"week" validate:"required,min=1,max=10"`
	TrainerID       string         `db:"trainer_id" json:"trainer_id"`
	IsExcused       bool           `db:"is_excused" json:"is_excused"`
	ExportedToAdmin bool           `db:"exported_to_admin" json:"exported_to_admin"`
}

func (a *AssessmentRecord) Validate() error {
	validate := validator.New()
	return validate.Struct(a)
}
