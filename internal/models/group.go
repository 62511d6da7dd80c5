package models

import (
	"github.com/go-playground/validator/v10"
)

// Group is a training group. CurrentUnit tracks which curriculum unit the
// group is on this term; student-level unit filtering goes through it.
type Group struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name" validate:"required"`
	Year        int    `db:"year" json:"year" validate:"required,min=1,max=6"`
	CurrentUnit string `db:"current_unit" json:"current_unit"`
}

func (g *Group) Validate() error {
	validate := validator.New()
	return validate.Struct(g)
}
