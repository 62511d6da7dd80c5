package models

import (
	"github.com/go-playground/validator/v10"
)

type Student struct {
	ID        string `db:"id" json:"id"`
	StudentID string `db:"student_id" json:"student_id" validate:"required"`
	Name      string `db:"name" json:"name" validate:"required"`
	Year      int    `db:"year" json:"year" validate:"required,min=1,max=6"`
	GroupID   string `db:"group_id" json:"group_id" validate:"required"`
	Unit      string `db:"unit" json:"unit"`
	Email     string `db:"email" json:"email" validate:"omitempty,email"`
	Phone     string `db:"phone" json:"phone"`
}

func (s *Student) Validate() error {
	validate := validator.New()
	return validate.Struct(s)
}
